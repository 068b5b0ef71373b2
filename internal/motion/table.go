package motion

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmriprep-tools/motiontsv/internal/shared"
)

// Table is a parsed motion-parameter table: an ordered header and rows of
// opaque string cells. Cells are never interpreted numerically, so values
// round-trip byte for byte.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable parses the motion table at path.
//
// The upstream format is asymmetric: the header line is tab-separated while
// body fields are separated by runs of spaces or tabs. The asymmetry is how
// the upstream pipeline actually writes these files and must be preserved;
// do not switch the body to a single-tab split.
func ReadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", shared.ErrProcessing, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrEmptyTable, path)
	}

	headerLine, rest, _ := strings.Cut(string(data), "\n")
	header := strings.Split(strings.TrimSpace(headerLine), "\t")

	var rows [][]string
	for _, line := range strings.Split(rest, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line)
		if len(fields) != len(header) {
			return nil, fmt.Errorf("%w: %s: row has %d fields, header has %d columns",
				shared.ErrProcessing, path, len(fields), len(header))
		}
		rows = append(rows, fields)
	}
	if len(rows) == 0 {
		// Header-only input is reported the same way as a zero-byte file.
		return nil, fmt.Errorf("%w: %s has no data rows", shared.ErrEmptyTable, path)
	}

	return &Table{Header: header, Rows: rows}, nil
}

// splitFields splits a body line on runs of spaces and tabs. Carriage
// returns are treated as separators so CRLF files parse the same as LF.
func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r'
	})
}

// headerIndex maps each header name to its first column position.
// Duplicate names resolve to the leftmost occurrence.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// SchemaError reports canonical columns absent from an input header. It
// carries the full available-name set so callers can log what the file
// actually contained.
type SchemaError struct {
	Missing   []string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns %v, available columns %v", e.Missing, e.Available)
}

func (e *SchemaError) Unwrap() error { return shared.ErrSchemaMismatch }

// Project reduces t to the canonical twelve columns, renamed and reordered
// per the fixed mapping. Row count and cell contents are preserved. Returns
// a [SchemaError] when any required column is absent; t is not modified.
func (t *Table) Project() (*Table, error) {
	idx := headerIndex(t.Header)

	var missing []string
	for _, m := range mapping {
		if _, ok := idx[m.Source]; !ok {
			missing = append(missing, m.Source)
		}
	}
	if len(missing) > 0 {
		available := make([]string, len(t.Header))
		copy(available, t.Header)
		return nil, &SchemaError{Missing: missing, Available: available}
	}

	out := &Table{Header: TargetColumns(), Rows: make([][]string, len(t.Rows))}
	for i, row := range t.Rows {
		cells := make([]string, len(mapping))
		for j, m := range mapping {
			cells[j] = row[idx[m.Source]]
		}
		out.Rows[i] = cells
	}
	return out, nil
}

// WriteTSV serializes t as strict tab-separated values with a trailing
// newline on every line. The table is written to a temporary file in the
// destination directory and renamed into place, so a failed write never
// leaves a partial output at path.
func (t *Table) WriteTSV(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", shared.ErrProcessing, err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(strings.Join(t.Header, "\t") + "\n"); err != nil {
		return fmt.Errorf("%w: writing header: %v", shared.ErrProcessing, err)
	}
	for _, row := range t.Rows {
		if _, err := w.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return fmt.Errorf("%w: writing row: %v", shared.ErrProcessing, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flushing output: %v", shared.ErrProcessing, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: syncing output: %v", shared.ErrProcessing, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing output: %v", shared.ErrProcessing, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: promoting output: %v", shared.ErrProcessing, err)
	}
	cleanup = false
	return nil
}
