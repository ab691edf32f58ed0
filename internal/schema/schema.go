// Package schema loads schema descriptors: CSV files with one row per
// destination column, stored under the storage root.
package schema

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/rudderlabs/sheetsync/internal/model"
	"github.com/rudderlabs/sheetsync/internal/validate"
)

const (
	SourceColumnLabel = "기존 컬럼명"
	TargetColumnLabel = "영어 컬럼명"
	TypeColumnLabel   = "데이터 타입"

	fileExtension = ".csv"
	utf8BOM       = "\ufeff"
)

type role int

const (
	roleSource role = iota
	roleTarget
	roleType
)

var labels = map[string]role{
	SourceColumnLabel: roleSource,
	"source_column":   roleSource,
	TargetColumnLabel: roleTarget,
	"target_column":   roleTarget,
	TypeColumnLabel:   roleType,
	"data_type":       roleType,
}

var canonicalLabels = map[role]string{
	roleSource: SourceColumnLabel,
	roleTarget: TargetColumnLabel,
	roleType:   TypeColumnLabel,
}

// Loader reads descriptors from a filesystem rooted at the storage root.
type Loader struct {
	fs afero.Fs
}

func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

func validName(name string) bool {
	return name != "" && path.Base(name) == name && !strings.Contains(name, `\`)
}

// Load opens and parses the named descriptor. Absence yields ErrSchemaFileNotFound.
func (l *Loader) Load(name string) (*model.SchemaDescriptor, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", model.ErrSchemaFileNotFound, name)
	}

	f, err := l.fs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrSchemaFileNotFound, name)
		}
		return nil, fmt.Errorf("opening schema file %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	return Parse(name, f)
}

// Save parses the descriptor and stores it under name, replacing any file with
// the same name. Only .csv names are accepted.
func (l *Loader) Save(name string, r io.Reader) (*model.SchemaDescriptor, error) {
	if !validName(name) || !strings.HasSuffix(name, fileExtension) {
		return nil, fmt.Errorf("%w: invalid file name %q", model.ErrSchemaValidation, name)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	d, err := Parse(name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := validate.Descriptor(d); err != nil {
		return nil, fmt.Errorf("schema file %s: %w", name, err)
	}
	if err := afero.WriteFile(l.fs, name, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing schema file %s: %w", name, err)
	}
	return d, nil
}

// Delete removes the named descriptor.
func (l *Loader) Delete(name string) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", model.ErrSchemaFileNotFound, name)
	}
	if err := l.fs.Remove(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", model.ErrSchemaFileNotFound, name)
		}
		return fmt.Errorf("removing schema file %s: %w", name, err)
	}
	return nil
}

// List returns the names of the descriptor files, sorted.
func (l *Loader) List() ([]string, error) {
	entries, err := afero.ReadDir(l.fs, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing schema files: %w", err)
	}
	names := lo.FilterMap(entries, func(e fs.FileInfo, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && strings.HasSuffix(e.Name(), fileExtension)
	})
	sort.Strings(names)
	return names, nil
}

// Parse reads a descriptor. The header must carry the source, target and type
// labels in any order; other columns are ignored.
func Parse(name string, r io.Reader) (*model.SchemaDescriptor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", model.ErrSchemaValidation, name)
		}
		return nil, fmt.Errorf("%w: reading header of %s: %v", model.ErrSchemaValidation, name, err)
	}

	index := make(map[role]int, len(canonicalLabels))
	for i, label := range header {
		if i == 0 {
			label = strings.TrimPrefix(label, utf8BOM)
		}
		if ro, ok := labels[strings.TrimSpace(label)]; ok {
			if _, seen := index[ro]; !seen {
				index[ro] = i
			}
		}
	}
	if missing := missingLabels(index); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s is missing columns %v", model.ErrSchemaValidation, name, missing)
	}

	descriptor := &model.SchemaDescriptor{Name: name}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", model.ErrSchemaValidation, name, err)
		}
		if blank(record) {
			continue
		}

		mapping := model.ColumnMapping{
			Source: strings.TrimSpace(cell(record, index[roleSource])),
			Target: strings.TrimSpace(cell(record, index[roleTarget])),
			Type:   model.ParseDataType(cell(record, index[roleType])),
		}
		if mapping.Source == "" {
			return nil, fmt.Errorf("%w: %s line %d: %s is empty", model.ErrSchemaValidation, name, line, SourceColumnLabel)
		}
		if mapping.Target == "" {
			return nil, fmt.Errorf("%w: %s line %d: %s is empty", model.ErrSchemaValidation, name, line, TargetColumnLabel)
		}
		descriptor.Mappings = append(descriptor.Mappings, mapping)
	}

	if len(descriptor.Mappings) == 0 {
		return nil, fmt.Errorf("%w: %s has no column mappings", model.ErrSchemaValidation, name)
	}
	return descriptor, nil
}

func missingLabels(index map[role]int) []string {
	var missing []string
	for _, ro := range []role{roleSource, roleTarget, roleType} {
		if _, ok := index[ro]; !ok {
			missing = append(missing, canonicalLabels[ro])
		}
	}
	return missing
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func blank(record []string) bool {
	return lo.EveryBy(record, func(s string) bool {
		return strings.TrimSpace(s) == ""
	})
}
