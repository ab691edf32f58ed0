package model

// RawTable holds the string cells fetched from the sheet. Rows are positional
// with respect to Header.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Column is a destination column.
type Column struct {
	Name string
	Type DataType
}

// Field is a named value inside a Row.
type Field struct {
	Name  string
	Value Value
}

// Row is an ordered list of fields, in table column order.
type Row []Field

// Get returns the value of the named field.
func (r Row) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// TypedTable is the output of the transformation pipeline.
type TypedTable struct {
	Columns []Column
	Rows    []Row
}

func (t *TypedTable) NumRows() int { return len(t.Rows) }
func (t *TypedTable) NumColumns() int { return len(t.Columns) }

func (t *TypedTable) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
