package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fixnow-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// Dataset is the in-memory service request table loaded at startup.
// It is never modified after LoadDataset returns.
type Dataset struct {
	columns  []string
	records  []models.ServiceRequestRecord
	zipIdx   int
	issueIdx int
}

// LoadDataset reads a CSV (or .xlsx, first sheet) file with a header row.
// The zip_code and issue_type_reduced columns are required; zip codes are
// trimmed once here so lookups don't have to.
func LoadDataset(path string) (*Dataset, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return NewDataset(rows)
}

// NewDataset builds a Dataset from raw rows, rows[0] being the header
func NewDataset(rows [][]string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.New("dataset: no header row")
	}

	header := cleanHeader(rows[0])
	d := &Dataset{
		columns:  header,
		zipIdx:   columnIndex(header, models.ColumnZipCode),
		issueIdx: columnIndex(header, models.ColumnIssueType),
	}
	if d.zipIdx == -1 {
		return nil, fmt.Errorf("dataset: column %q not found", models.ColumnZipCode)
	}
	if d.issueIdx == -1 {
		return nil, fmt.Errorf("dataset: column %q not found", models.ColumnIssueType)
	}

	d.records = make([]models.ServiceRequestRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("dataset line %d: %d fields, header has %d", i+2, len(row), len(header))
		}
		values := make([]string, len(header))
		copy(values, row)
		values[d.zipIdx] = strings.TrimSpace(values[d.zipIdx])
		d.records = append(d.records, models.ServiceRequestRecord{Columns: header, Values: values})
	}
	return d, nil
}

// Len returns the number of rows
func (d *Dataset) Len() int { return len(d.records) }

// Columns returns the header in file order
func (d *Dataset) Columns() []string { return d.columns }

// Records returns all rows in file order. Callers must not modify them.
func (d *Dataset) Records() []models.ServiceRequestRecord { return d.records }

// HasColumn reports whether the header contains name
func (d *Dataset) HasColumn(name string) bool { return columnIndex(d.columns, name) != -1 }

// TopIssues counts rows per issue type label as written in the file and
// returns the n most frequent, highest count first. Ties keep first-seen
// order. Missing labels are not counted.
func (d *Dataset) TopIssues(n int) models.TopIssues {
	index := make(map[string]int)
	var counts []models.IssueCount
	for _, rec := range d.records {
		label := rec.Values[d.issueIdx]
		if isMissing(label) {
			continue
		}
		if i, ok := index[label]; ok {
			counts[i].Count++
			continue
		}
		index[label] = len(counts)
		counts = append(counts, models.IssueCount{IssueType: label, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > n {
		counts = counts[:n]
	}
	if counts == nil {
		return models.TopIssues{}
	}
	return models.TopIssues(counts)
}

// FindByZipPrefix returns at most limit rows whose zip code starts with prefix,
// in dataset order, and the total number of matching rows.
func (d *Dataset) FindByZipPrefix(prefix string, limit int) ([]models.ServiceRequestRecord, int) {
	prefix = strings.TrimSpace(prefix)
	out := make([]models.ServiceRequestRecord, 0)
	total := 0
	for _, rec := range d.records {
		if !strings.HasPrefix(rec.Values[d.zipIdx], prefix) {
			continue
		}
		total++
		if len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, total
}

// readTable loads all rows of a CSV or XLSX file
func readTable(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return f.GetRows(f.GetSheetName(0))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// cleanHeader strips a UTF-8 BOM and surrounding whitespace but keeps the case,
// since column names are echoed back in record objects. Repeated names get a
// ".1", ".2", ... suffix so every record object has unique keys.
func cleanHeader(hdr []string) []string {
	out := make([]string, len(hdr))
	used := make(map[string]bool, len(hdr))
	for i, v := range hdr {
		name := strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
		if used[name] {
			base := name
			for n := 1; used[name]; n++ {
				name = fmt.Sprintf("%s.%d", base, n)
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func columnIndex(hdr []string, name string) int {
	for i, v := range hdr {
		if strings.EqualFold(v, name) {
			return i
		}
	}
	return -1
}

// isMissing reports an empty cell or a literal "nan", the same cells records serialize as null
func isMissing(v string) bool {
	return v == "" || strings.EqualFold(v, "nan")
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
