package catalog

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
)

// catalogSchema closes the accepted CUE shape. Unknown fields and unknown
// type tags fail validation with a source position.
const catalogSchema = `
#ScalarType: "string" | "int" | "float" | "decimal" | "bool" | "datetime" | "date" | "uuid" | "bytes"

#Column: {
	type:        #ScalarType
	nullable:    bool | *true
	primary_key: bool | *false
}

#Model: {
	table?:  string
	source?: string
	columns: [string]: #Column
}

#Catalog: {
	models: [string]: #Model
}
`

// LoadError reports a catalog file problem with its CUE position.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadCUE compiles a CUE catalog:
//
//	models: users: {
//		table: "users"
//		columns: {
//			ID:   {type: "int", primary_key: true, nullable: false}
//			Name: {type: "string"}
//		}
//	}
//
// Columns are nullable unless stated otherwise. Model and column order
// follows the file.
func LoadCUE(filename string, data []byte) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(catalogSchema, cue.Filename("catalog_schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile %s: %w", filename, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate %s: %w", filename, err)
	}

	return compileCatalog(unified)
}

func compileCatalog(v cue.Value) (*Catalog, error) {
	c := &Catalog{}

	modelsVal := v.LookupPath(cue.ParsePath("models"))
	if !modelsVal.Exists() {
		return c, nil
	}
	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, &LoadError{Field: "models", Message: err.Error(), Pos: modelsVal.Pos()}
	}
	for iter.Next() {
		m, err := compileModel(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		if err := c.Add(m); err != nil {
			return nil, &LoadError{Field: "models." + iter.Label(), Message: err.Error(), Pos: iter.Value().Pos()}
		}
	}
	return c, nil
}

func compileModel(name string, v cue.Value) (*Model, error) {
	table := optionalString(v, "table")
	source := optionalString(v, "source")

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	iter, err := colsVal.Fields()
	if err != nil {
		return nil, &LoadError{Field: "models." + name + ".columns", Message: err.Error(), Pos: colsVal.Pos()}
	}

	var cols []Column
	for iter.Next() {
		colName := iter.Label()
		colVal := iter.Value()

		typeStr, err := colVal.LookupPath(cue.ParsePath("type")).String()
		if err != nil {
			return nil, &LoadError{Field: "models." + name + ".columns." + colName + ".type", Message: err.Error(), Pos: colVal.Pos()}
		}
		nullable, err := colVal.LookupPath(cue.ParsePath("nullable")).Bool()
		if err != nil {
			return nil, &LoadError{Field: "models." + name + ".columns." + colName + ".nullable", Message: err.Error(), Pos: colVal.Pos()}
		}
		pk, err := colVal.LookupPath(cue.ParsePath("primary_key")).Bool()
		if err != nil {
			return nil, &LoadError{Field: "models." + name + ".columns." + colName + ".primary_key", Message: err.Error(), Pos: colVal.Pos()}
		}

		cols = append(cols, Column{
			Name:       colName,
			Type:       ScalarType(typeStr),
			Nullable:   nullable,
			PrimaryKey: pk,
		})
	}

	m, err := NewModel(name, table, cols...)
	if err != nil {
		return nil, &LoadError{Field: "models." + name, Message: err.Error(), Pos: v.Pos()}
	}
	m.TableSource = source
	return m, nil
}

func optionalString(v cue.Value, field string) string {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return ""
	}
	s, err := f.String()
	if err != nil {
		return ""
	}
	return s
}
