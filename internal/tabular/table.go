// Package tabular reads delimited text sources into header-indexed tables.
package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Table is a parsed delimited source. Header cells are already normalized
// with NormalizeColumnName.
type Table struct {
	Source string
	Header []string
	Rows   [][]string

	col map[string]int
}

// NormalizeColumnName trims, lowercases and replaces spaces with underscores.
func NormalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// Read opens path and parses it with the named text encoding.
func Read(path, encoding string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := Decoder(encoding)
	if err != nil {
		return nil, err
	}
	return Parse(path, dec(bufio.NewReader(f)))
}

// Parse reads CSV with a header row from r. source names the input in errors.
func Parse(source string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MalformedSourceError{Source: source, Err: errors.New("no header row")}
	}
	if err != nil {
		return nil, &MalformedSourceError{Source: source, Err: err}
	}

	t := &Table{Source: source, col: map[string]int{}}
	for i, h := range header {
		// Decoder strips a UTF-8 BOM; this covers readers handed to Parse directly.
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := NormalizeColumnName(h)
		t.Header = append(t.Header, name)
		if _, dup := t.col[name]; !dup {
			t.col[name] = i
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedSourceError{Source: source, Err: err}
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of a column, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.col[name]; ok {
		return i
	}
	return -1
}

// Project renames columns and keeps only the required ones, in required order.
// renames maps normalized source names to canonical names; a canonical name
// already present in the header is used as is.
func (t *Table) Project(renames map[string]string, required []string) (*Table, error) {
	canon := map[string]int{}
	for i, h := range t.Header {
		name := h
		if to, ok := renames[h]; ok {
			name = to
		}
		if _, seen := canon[name]; !seen {
			canon[name] = i
		}
	}

	var missing []string
	idx := make([]int, len(required))
	for i, name := range required {
		pos, ok := canon[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[i] = pos
	}
	if len(missing) > 0 {
		found := append([]string(nil), t.Header...)
		sort.Strings(found)
		return nil, &MalformedSourceError{Source: t.Source, Missing: missing, Found: found}
	}

	out := &Table{
		Source: t.Source,
		Header: append([]string(nil), required...),
		Rows:   make([][]string, 0, len(t.Rows)),
		col:    map[string]int{},
	}
	for i, name := range required {
		out.col[name] = i
	}
	for _, rec := range t.Rows {
		row := make([]string, len(idx))
		for i, pos := range idx {
			if pos < len(rec) {
				row[i] = strings.TrimSpace(rec[pos])
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// MalformedSourceError reports a source that is not usable tabular data or
// lacks required columns after renaming.
type MalformedSourceError struct {
	Source  string
	Missing []string
	Found   []string
	Err     error
}

func (e *MalformedSourceError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("malformed source %s: missing columns [%s] (found [%s])",
			e.Source, strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
	}
	return fmt.Sprintf("malformed source %s: %v", e.Source, e.Err)
}

func (e *MalformedSourceError) Unwrap() error { return e.Err }
