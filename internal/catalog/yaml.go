package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileCatalog is the on-disk YAML shape of a Catalog.
type fileCatalog struct {
	Models []fileModel `yaml:"models"`
}

type fileModel struct {
	Name    string       `yaml:"name"`
	Table   string       `yaml:"table,omitempty"`
	Source  string       `yaml:"source,omitempty"`
	Columns []fileColumn `yaml:"columns"`
}

type fileColumn struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Nullable   bool   `yaml:"nullable,omitempty"`
	PrimaryKey bool   `yaml:"primary_key,omitempty"`
}

// LoadYAML reads a catalog:
//
//	models:
//	  - name: users
//	    columns:
//	      - {name: ID, type: int, primary_key: true}
//	      - {name: Name, type: string, nullable: true}
func LoadYAML(r io.Reader) (*Catalog, error) {
	var fc fileCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return fc.build()
}

// SaveYAML writes c in the format LoadYAML reads.
func SaveYAML(w io.Writer, c *Catalog) error {
	var fc fileCatalog
	for _, m := range c.Models() {
		fm := fileModel{Name: m.Name, Source: m.TableSource}
		if m.Table != m.Name {
			fm.Table = m.Table
		}
		for _, col := range m.Columns() {
			fm.Columns = append(fm.Columns, fileColumn{
				Name:       col.Name,
				Type:       string(col.Type),
				Nullable:   col.Nullable,
				PrimaryKey: col.PrimaryKey,
			})
		}
		fc.Models = append(fc.Models, fm)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

func (fc fileCatalog) build() (*Catalog, error) {
	c := &Catalog{}
	for i, fm := range fc.Models {
		cols := make([]Column, 0, len(fm.Columns))
		for _, fcol := range fm.Columns {
			typ, err := ParseScalarType(fcol.Type)
			if err != nil {
				return nil, fmt.Errorf("model %d (%s): column %s: %w", i, fm.Name, fcol.Name, err)
			}
			cols = append(cols, Column{
				Name:       fcol.Name,
				Type:       typ,
				Nullable:   fcol.Nullable,
				PrimaryKey: fcol.PrimaryKey,
			})
		}
		m, err := NewModel(fm.Name, fm.Table, cols...)
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", i, err)
		}
		m.TableSource = fm.Source
		if err := c.Add(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFile reads a catalog file, choosing the format by extension
// (.yaml, .yml or .cue).
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(strings.NewReader(string(data)))
	case ".cue":
		return LoadCUE(filepath.Base(path), data)
	default:
		return nil, fmt.Errorf("catalog %s: unsupported extension %q", path, filepath.Ext(path))
	}
}
