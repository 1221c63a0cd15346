package store

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/dataio/internal/core"
)

// catalogFile is the on-disk shape of a YAML field catalog:
//
//	record_types:
//	  note:
//	    - name: id
//	      read_only: true
//	    - name: name
//	    - name: number
//	      order: 5
//
// A field without order takes its list position.
type catalogFile struct {
	RecordTypes map[string][]catalogField `yaml:"record_types"`
}

type catalogField struct {
	Name     string `yaml:"name"`
	Order    *int   `yaml:"order,omitempty"`
	ReadOnly bool   `yaml:"read_only,omitempty"`
}

// FileCatalog is a read-only field catalog loaded from YAML.
type FileCatalog struct {
	types map[string][]core.FieldSpec
}

// LoadCatalogFile reads and validates a YAML catalog.
func LoadCatalogFile(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses YAML catalog data.
func ParseCatalog(data []byte) (*FileCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %w", core.ErrConfiguration, err)
	}

	c := &FileCatalog{types: make(map[string][]core.FieldSpec, len(file.RecordTypes))}
	for recordType, entries := range file.RecordTypes {
		seen := make(map[string]bool, len(entries))
		fields := make([]core.FieldSpec, 0, len(entries))
		for i, e := range entries {
			if e.Name == "" {
				return nil, fmt.Errorf("%w: catalog %s: field %d has no name", core.ErrConfiguration, recordType, i)
			}
			if seen[e.Name] {
				return nil, fmt.Errorf("%w: catalog %s: duplicate field %q", core.ErrConfiguration, recordType, e.Name)
			}
			seen[e.Name] = true

			order := i
			if e.Order != nil {
				order = *e.Order
			}
			fields = append(fields, core.FieldSpec{Name: e.Name, Order: order, ReadOnly: e.ReadOnly})
		}
		c.types[recordType] = fields
	}
	return c, nil
}

// FieldsFor returns the fields of recordType in column order. A type the
// file does not define has no fields.
func (c *FileCatalog) FieldsFor(ctx context.Context, recordType string) ([]core.FieldSpec, error) {
	return core.SortFields(c.types[recordType]), nil
}

// RecordTypes lists the record types the file defines.
func (c *FileCatalog) RecordTypes() []string {
	return slices.Sorted(maps.Keys(c.types))
}
