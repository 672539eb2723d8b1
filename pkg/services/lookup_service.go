package services

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// CodeMapping maps a trimmed category label to its integer regression code.
// Keys keep the order in which they were first added.
type CodeMapping struct {
	Name  string
	keys  []string
	codes map[string]int
}

// NewCodeMapping creates an empty mapping
func NewCodeMapping(name string) *CodeMapping {
	return &CodeMapping{Name: name, codes: make(map[string]int)}
}

// Set adds or overwrites key. An existing key keeps its position and the
// new code wins; the previous code is returned with replaced=true.
func (m *CodeMapping) Set(key string, code int) (prev int, replaced bool) {
	key = strings.TrimSpace(key)
	if old, ok := m.codes[key]; ok {
		m.codes[key] = code
		return old, true
	}
	m.keys = append(m.keys, key)
	m.codes[key] = code
	return 0, false
}

// Lookup returns the code for key after trimming it
func (m *CodeMapping) Lookup(key string) (int, bool) {
	code, ok := m.codes[strings.TrimSpace(key)]
	return code, ok
}

// Len returns the number of distinct keys
func (m *CodeMapping) Len() int { return len(m.keys) }

// Keys returns at most n keys in insertion order; n <= 0 means all
func (m *CodeMapping) Keys(n int) []string {
	if n <= 0 || n > len(m.keys) {
		n = len(m.keys)
	}
	out := make([]string, n)
	copy(out, m.keys[:n])
	return out
}

// DuplicateLabel describes a label that appeared more than once in a mapping file
type DuplicateLabel struct {
	Label    string
	Previous int
	Code     int
}

// LoadCodeMapping reads a two-column mapping file (label, code).
// Rows with an empty label are skipped. Repeated labels are reported back;
// the last occurrence wins.
func LoadCodeMapping(path, labelColumn, codeColumn string) (*CodeMapping, []DuplicateLabel, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read mapping %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("mapping %s: no header row", path)
	}

	header := cleanHeader(rows[0])
	labelIdx := columnIndex(header, labelColumn)
	codeIdx := columnIndex(header, codeColumn)
	if labelIdx == -1 || codeIdx == -1 {
		return nil, nil, fmt.Errorf("mapping %s: columns %q and %q are required", path, labelColumn, codeColumn)
	}

	m := NewCodeMapping(labelColumn)
	var dups []DuplicateLabel
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, nil, fmt.Errorf("mapping %s line %d: %d fields, header has %d", path, i+2, len(row), len(header))
		}
		if len(row) <= labelIdx || len(row) <= codeIdx {
			continue
		}
		label := strings.TrimSpace(row[labelIdx])
		if label == "" {
			continue
		}
		code, err := parseCode(row[codeIdx])
		if err != nil {
			return nil, nil, fmt.Errorf("mapping %s line %d: %w", path, i+2, err)
		}
		if prev, replaced := m.Set(label, code); replaced && prev != code {
			dups = append(dups, DuplicateLabel{Label: label, Previous: prev, Code: code})
		}
	}
	return m, dups, nil
}

// WriteCSV writes the mapping with a header row, in key order
func (m *CodeMapping) WriteCSV(path, labelColumn, codeColumn string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{labelColumn, codeColumn}); err != nil {
		return err
	}
	for _, k := range m.keys {
		if err := w.Write([]string{k, strconv.Itoa(m.codes[k])}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// parseCode accepts "3" as well as "3.0", which is how float-typed columns round-trip
func parseCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative code %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid code %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative code %q", s)
	}
	return int(f), nil
}
