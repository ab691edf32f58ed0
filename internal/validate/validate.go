// Package validate holds the structural checks run before any cell is renamed
// or coerced.
package validate

import (
	"fmt"

	"github.com/rudderlabs/sheetsync/internal/model"
)

// Descriptor rejects descriptors without mappings or with duplicate target names.
func Descriptor(d *model.SchemaDescriptor) error {
	if d == nil || len(d.Mappings) == 0 {
		return fmt.Errorf("%w: schema has no column mappings", model.ErrSchemaValidation)
	}
	seen := make(map[string]struct{}, len(d.Mappings))
	for _, m := range d.Mappings {
		if m.Target == "" {
			return fmt.Errorf("%w: empty target column for %q", model.ErrSchemaValidation, m.Source)
		}
		if _, ok := seen[m.Target]; ok {
			return &model.DuplicateColumnError{Column: m.Target}
		}
		seen[m.Target] = struct{}{}
	}
	return nil
}

// Header requires the sheet header to equal the descriptor source columns:
// same length, same labels, same order.
func Header(header []string, d *model.SchemaDescriptor) error {
	expected := d.Sources()
	mismatch := func(reason string) error {
		return &model.SchemaMismatchError{
			Header:   append([]string(nil), header...),
			Expected: expected,
			Reason:   reason,
		}
	}

	if len(header) != len(expected) {
		return mismatch(fmt.Sprintf("sheet has %d columns, schema expects %d", len(header), len(expected)))
	}
	for i := range header {
		if header[i] != expected[i] {
			return mismatch(fmt.Sprintf("column %d is %q, schema expects %q", i+1, header[i], expected[i]))
		}
	}
	return nil
}

// Rows requires every data row to fit within the header. Shorter rows are
// allowed since the sheet omits trailing empty cells.
func Rows(raw *model.RawTable) error {
	for i, row := range raw.Rows {
		if len(row) > len(raw.Header) {
			return &model.SchemaMismatchError{
				Header:   append([]string(nil), raw.Header...),
				Expected: append([]string(nil), raw.Header...),
				Reason:   fmt.Sprintf("data row %d has %d cells, header has %d", i+1, len(row), len(raw.Header)),
			}
		}
	}
	return nil
}
