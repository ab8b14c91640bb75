package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Wire type tags.
const (
	wireDomain   = "domain"
	wireOperator = "operator"
	wireTerm     = "term"

	wireString    = "string"
	wireNumber    = "number"
	wireDate      = "date"
	wireBoolean   = "boolean"
	wireUndefined = "undefined"
	wireNull      = "null"
	wireDecimal   = "decimal"
	wireList      = "list"
)

type wireNode struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type wireTermBody struct {
	Left     string   `json:"left"`
	Operator string   `json:"operator"`
	Right    wireNode `json:"right"`
}

// MarshalJSON encodes d in the wire format:
//
//	{"type":"domain","value":[{"type":"operator","value":"|"},
//	  {"type":"term","value":{"left":"Name","operator":"=",
//	    "right":{"type":"string","value":"henka"}}}, ...]}
func (d Domain) MarshalJSON() ([]byte, error) {
	tokens := make([]wireNode, len(d))
	for i, tok := range d {
		node, err := encodeToken(tok)
		if err != nil {
			return nil, fmt.Errorf("domain token %d: %w", i, err)
		}
		tokens[i] = node
	}
	value, err := json.Marshal(tokens)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireNode{Type: wireDomain, Value: value})
}

// UnmarshalJSON decodes the wire format. Nested domain tokens are spliced
// into the enclosing domain.
func (d *Domain) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseJSON decodes a domain from its wire format.
func ParseJSON(data []byte) (Domain, error) {
	var root wireNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, NewError(ErrCodeInvalidLeaf, nil, "decode domain: %v", err)
	}
	if root.Type != wireDomain {
		return nil, NewError(ErrCodeInvalidLeaf, nil, "root node must be of type %q, got %q", wireDomain, root.Type)
	}
	var out Domain
	if err := decodeDomainBody(root.Value, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeDomainBody(raw json.RawMessage, out *Domain) error {
	var nodes []wireNode
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return NewError(ErrCodeInvalidLeaf, nil, "domain value must be an array: %v", err)
	}
	for i, node := range nodes {
		switch node.Type {
		case wireOperator:
			var s string
			if err := json.Unmarshal(node.Value, &s); err != nil {
				return NewError(ErrCodeInvalidLeaf, nil, "token %d: operator value must be a string", i)
			}
			op := Operator(s)
			if !op.Valid() {
				return NewError(ErrCodeInvalidLeaf, nil, "token %d: unknown domain operator %q", i, s)
			}
			*out = append(*out, op)
		case wireTerm:
			var body wireTermBody
			if err := json.Unmarshal(node.Value, &body); err != nil {
				return NewError(ErrCodeInvalidLeaf, nil, "token %d: malformed term: %v", i, err)
			}
			right, err := decodeValue(body.Right)
			if err != nil {
				return NewError(ErrCodeInvalidLeaf, nil, "token %d: term %q: %v", i, body.Left, err)
			}
			t := Term{Left: body.Left, Op: TermOperator(strings.ToLower(body.Operator)), Right: right}
			if err := t.Validate(); err != nil {
				return err
			}
			*out = append(*out, t)
		case wireDomain:
			if err := decodeDomainBody(node.Value, out); err != nil {
				return err
			}
		default:
			return NewError(ErrCodeInvalidLeaf, nil, "token %d: unknown token type %q", i, node.Type)
		}
	}
	return nil
}

func encodeToken(tok Token) (wireNode, error) {
	switch t := tok.(type) {
	case Operator:
		raw, err := json.Marshal(string(t))
		return wireNode{Type: wireOperator, Value: raw}, err
	case Term:
		right, err := encodeValue(t.Right)
		if err != nil {
			return wireNode{}, err
		}
		raw, err := json.Marshal(wireTermBody{Left: t.Left, Operator: string(t.Op), Right: right})
		return wireNode{Type: wireTerm, Value: raw}, err
	}
	return wireNode{}, fmt.Errorf("unsupported token %T", tok)
}

func encodeValue(v Value) (wireNode, error) {
	var (
		typ string
		raw []byte
		err error
	)
	switch x := v.(type) {
	case nil, Null:
		return wireNode{Type: wireUndefined}, nil
	case Bool:
		typ = wireBoolean
		raw, err = json.Marshal(bool(x))
	case Int:
		typ, raw = wireNumber, []byte(strconv.FormatInt(int64(x), 10))
	case Float:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return wireNode{}, fmt.Errorf("number %v has no JSON form", f)
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		typ, raw = wireNumber, []byte(s)
	case Decimal:
		typ = wireDecimal
		raw, err = json.Marshal(x.String())
	case String:
		typ = wireString
		raw, err = json.Marshal(string(x))
	case Time:
		typ = wireDate
		raw, err = json.Marshal(x.UTC().Format(time.RFC3339Nano))
	case Date:
		typ = wireDate
		raw, err = json.Marshal(x.String())
	case List:
		items := make([]wireNode, len(x))
		for i, e := range x {
			if items[i], err = encodeValue(e); err != nil {
				return wireNode{}, fmt.Errorf("list index %d: %w", i, err)
			}
		}
		typ = wireList
		raw, err = json.Marshal(items)
	default:
		return wireNode{}, fmt.Errorf("value %T has no wire form", v)
	}
	if err != nil {
		return wireNode{}, err
	}
	return wireNode{Type: typ, Value: raw}, nil
}

func decodeValue(node wireNode) (Value, error) {
	raw := bytes.TrimSpace(node.Value)
	if node.Type != wireUndefined && node.Type != wireNull && (len(raw) == 0 || string(raw) == "null") {
		return Null{}, nil
	}
	switch node.Type {
	case wireUndefined, wireNull, "":
		return Null{}, nil
	case wireString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return String(s), nil
	case wireBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case wireNumber:
		s := string(raw)
		if !strings.ContainsAny(s, ".eE") {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Int(n), nil
			}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %s", s)
		}
		return Float(f), nil
	case wireDecimal:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			s = string(raw)
		}
		return NewDecimal(s)
	case wireDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if len(s) == len(time.DateOnly) {
			return ParseDate(s)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return Time{t.UTC()}, nil
	case wireList:
		var items []wireNode
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		list := make(List, len(items))
		for i, item := range items {
			v, err := decodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			if _, nested := v.(List); nested {
				return nil, fmt.Errorf("list index %d: nested list", i)
			}
			list[i] = v
		}
		return list, nil
	}
	return nil, fmt.Errorf("unknown value type %q", node.Type)
}
