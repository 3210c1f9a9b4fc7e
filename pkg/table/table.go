// Package table defines the tabular data product contract consumed by the
// access-point discovery pipeline, together with an in-memory implementation
// that can be parsed from a JSON document. Parsing of native survey formats
// (VOTable and friends) is out of scope; callers adapt their tables to the
// Product interface.
package table

import (
	"github.com/skyarchive/voaccess/pkg/datalink"
)

// Product is the read-only view of a tabular data product: named fields,
// per-row indexed access, semantic (UCD) tags per field and, optionally,
// ad-hoc service descriptions attached to the product.
type Product interface {
	// Fieldnames returns the column names in declaration order.
	Fieldnames() []string

	// NumRows returns the number of rows in the product.
	NumRows() int

	// Value returns the value of the named field for the given row. The
	// second return is false when the field does not exist or the value is
	// null for that row.
	Value(row int, field string) (string, bool)

	// FieldByUCD resolves a column name from a semantic UCD tag.
	FieldByUCD(ucd string) (string, bool)

	// Service looks up an ad-hoc service description by identifier.
	Service(id string) (*datalink.Service, bool)
}

// Field is one column declaration of an in-memory product.
type Field struct {
	Name string `json:"name"`
	UCD  string `json:"ucd,omitempty"`
}

// Mem is an in-memory Product. Row values are kept as strings; a missing key
// in a row map represents a null value.
type Mem struct {
	fields   []Field
	rows     []map[string]string
	services []datalink.Service
}

// NewMem builds an in-memory product from field declarations and row maps.
func NewMem(fields []Field, rows []map[string]string, services ...datalink.Service) *Mem {
	return &Mem{fields: fields, rows: rows, services: services}
}

// Fieldnames returns the column names in declaration order.
func (m *Mem) Fieldnames() []string {
	names := make([]string, 0, len(m.fields))
	for _, f := range m.fields {
		names = append(names, f.Name)
	}
	return names
}

// NumRows returns the number of rows.
func (m *Mem) NumRows() int {
	return len(m.rows)
}

// Value returns the value of the named field for the given row.
func (m *Mem) Value(row int, field string) (string, bool) {
	if row < 0 || row >= len(m.rows) {
		return "", false
	}
	if !m.hasField(field) {
		return "", false
	}
	v, ok := m.rows[row][field]
	return v, ok
}

// FieldByUCD resolves a column name from a semantic UCD tag. The first
// declared field carrying the tag wins.
func (m *Mem) FieldByUCD(ucd string) (string, bool) {
	for _, f := range m.fields {
		if f.UCD != "" && f.UCD == ucd {
			return f.Name, true
		}
	}
	return "", false
}

// Service looks up an ad-hoc service description by identifier.
func (m *Mem) Service(id string) (*datalink.Service, bool) {
	for i := range m.services {
		if m.services[i].ID == id {
			return &m.services[i], true
		}
	}
	return nil, false
}

func (m *Mem) hasField(name string) bool {
	for _, f := range m.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
