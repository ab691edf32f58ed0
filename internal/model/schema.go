package model

import "strings"

// DataType is the target type tag of a destination column.
type DataType string

const (
	TypeInteger  DataType = "INTEGER"
	TypeFloat    DataType = "FLOAT"
	TypeDate     DataType = "DATE"
	TypeDateTime DataType = "DATETIME"
	TypeTime     DataType = "TIME"
	TypeBool     DataType = "BOOL"
	TypeString   DataType = "STRING"
)

// ParseDataType normalizes a type tag. Unknown tags are kept as written and
// are treated as STRING by coercion and table creation.
func ParseDataType(s string) DataType {
	t := DataType(strings.ToUpper(strings.TrimSpace(s)))
	if t == "" {
		return TypeString
	}
	return t
}

// Known reports whether the tag is one of the supported target types.
func (t DataType) Known() bool {
	switch t {
	case TypeInteger, TypeFloat, TypeDate, TypeDateTime, TypeTime, TypeBool, TypeString:
		return true
	}
	return false
}

// ColumnMapping maps a sheet header label to a destination column.
type ColumnMapping struct {
	Source string
	Target string
	Type   DataType
}

// SchemaDescriptor is the ordered column mapping of a configuration.
type SchemaDescriptor struct {
	Name     string
	Mappings []ColumnMapping
}

func (d *SchemaDescriptor) Sources() []string {
	out := make([]string, len(d.Mappings))
	for i, m := range d.Mappings {
		out[i] = m.Source
	}
	return out
}

func (d *SchemaDescriptor) Targets() []string {
	out := make([]string, len(d.Mappings))
	for i, m := range d.Mappings {
		out[i] = m.Target
	}
	return out
}

// Columns returns the destination columns in descriptor order.
func (d *SchemaDescriptor) Columns() []Column {
	out := make([]Column, len(d.Mappings))
	for i, m := range d.Mappings {
		out[i] = Column{Name: m.Target, Type: m.Type}
	}
	return out
}
