// Package catalog provides the column metadata the compiler resolves
// domain terms against.
//
// A Catalog is a named set of Models. Catalogs are read from YAML or CUE
// files, or introspected from a live SQLite / libSQL database. Models are
// immutable once added to a Catalog.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ScalarType tags the type of a column.
type ScalarType string

const (
	TypeString   ScalarType = "string"
	TypeInt      ScalarType = "int"
	TypeFloat    ScalarType = "float"
	TypeDecimal  ScalarType = "decimal"
	TypeBool     ScalarType = "bool"
	TypeDateTime ScalarType = "datetime"
	TypeDate     ScalarType = "date"
	TypeUUID     ScalarType = "uuid"
	TypeBytes    ScalarType = "bytes"
)

// ScalarTypes lists every valid type tag.
var ScalarTypes = []ScalarType{
	TypeString, TypeInt, TypeFloat, TypeDecimal, TypeBool,
	TypeDateTime, TypeDate, TypeUUID, TypeBytes,
}

var typeAliases = map[string]ScalarType{
	"text":      TypeString,
	"integer":   TypeInt,
	"bigint":    TypeInt,
	"number":    TypeFloat,
	"double":    TypeFloat,
	"numeric":   TypeDecimal,
	"boolean":   TypeBool,
	"timestamp": TypeDateTime,
	"blob":      TypeBytes,
}

// ParseScalarType resolves a type tag or one of its common aliases.
func ParseScalarType(s string) (ScalarType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	t := ScalarType(s)
	if t.Valid() {
		return t, nil
	}
	if alias, ok := typeAliases[s]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("unknown column type %q", s)
}

// Valid reports whether t is a known type tag.
func (t ScalarType) Valid() bool {
	for _, known := range ScalarTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsTemporal reports whether t holds dates or times.
func (t ScalarType) IsTemporal() bool {
	return t == TypeDateTime || t == TypeDate
}

// Column describes one column of a model.
type Column struct {
	Name       string     `yaml:"name" json:"name"`
	Type       ScalarType `yaml:"type" json:"type"`
	Nullable   bool       `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	PrimaryKey bool       `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
}

// Model is a table (or view) and its columns.
type Model struct {
	// Name is the key the model is looked up by.
	Name string

	// Table is the table name used as the default alias.
	Table string

	// TableSource optionally replaces Table in FROM, e.g. a view
	// expression "(SELECT ...)".
	TableSource string

	columns map[string]Column
	order   []string
}

// ErrModelNotFound is returned by Catalog.Model for unknown names.
var ErrModelNotFound = errors.New("model not found")

// NewModel builds a model. An empty table defaults to name.
func NewModel(name, table string, columns ...Column) (*Model, error) {
	if name == "" {
		return nil, errors.New("model name is empty")
	}
	if table == "" {
		table = name
	}
	m := &Model{
		Name:    name,
		Table:   table,
		columns: make(map[string]Column, len(columns)),
	}
	for _, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("model %s: column name is empty", name)
		}
		if !c.Type.Valid() {
			return nil, fmt.Errorf("model %s: column %s: unknown type %q", name, c.Name, c.Type)
		}
		if _, dup := m.columns[c.Name]; dup {
			return nil, fmt.Errorf("model %s: duplicate column %s", name, c.Name)
		}
		m.columns[c.Name] = c
		m.order = append(m.order, c.Name)
	}
	return m, nil
}

// MustModel is like NewModel but panics on error.
func MustModel(name, table string, columns ...Column) *Model {
	m, err := NewModel(name, table, columns...)
	if err != nil {
		panic(err)
	}
	return m
}

// WithSource returns a copy of m reading from source instead of its table.
func (m *Model) WithSource(source string) *Model {
	cp := *m
	cp.TableSource = source
	return &cp
}

// Column looks up a column by exact name.
func (m *Model) Column(name string) (Column, bool) {
	c, ok := m.columns[name]
	return c, ok
}

// Columns returns the columns in declaration order.
func (m *Model) Columns() []Column {
	out := make([]Column, len(m.order))
	for i, name := range m.order {
		out[i] = m.columns[name]
	}
	return out
}

// Source returns what FROM should reference for this model.
func (m *Model) Source() string {
	if m.TableSource != "" {
		return m.TableSource
	}
	return m.Table
}

// Provider resolves models by name.
type Provider interface {
	Model(name string) (*Model, error)
}

// Catalog is an ordered set of models.
type Catalog struct {
	models map[string]*Model
	order  []string
}

// New builds a catalog from models.
func New(models ...*Model) (*Catalog, error) {
	c := &Catalog{models: make(map[string]*Model, len(models))}
	for _, m := range models {
		if err := c.Add(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers m. Names must be unique.
func (c *Catalog) Add(m *Model) error {
	if c.models == nil {
		c.models = make(map[string]*Model)
	}
	if _, dup := c.models[m.Name]; dup {
		return fmt.Errorf("duplicate model %s", m.Name)
	}
	c.models[m.Name] = m
	c.order = append(c.order, m.Name)
	return nil
}

// Model implements Provider.
func (c *Catalog) Model(name string) (*Model, error) {
	m, ok := c.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return m, nil
}

// Models returns every model in registration order.
func (c *Catalog) Models() []*Model {
	out := make([]*Model, len(c.order))
	for i, name := range c.order {
		out[i] = c.models[name]
	}
	return out
}
