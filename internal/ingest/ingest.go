// Package ingest parses uploaded CSV and Excel enrolment exports into
// datasets and applies the ingestion-time enrichment the downstream
// analytics expect.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"uidpulse/internal/dataset"
)

// AllowedExtensions lists the upload formats the service accepts.
var AllowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// Allowed reports whether the filename carries an accepted extension.
func Allowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	return AllowedExtensions[strings.ToLower(filename[idx:])]
}

// ParseCSV reads a CSV export into a dataset. The first row is the header;
// a UTF-8 BOM is stripped when present.
func ParseCSV(r io.Reader) (*dataset.Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv content: %w", err)
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file has no header row")
	}
	return fromRows(records)
}

// ParseExcel reads the first sheet of an xlsx workbook into a dataset.
func ParseExcel(r io.Reader) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}
	return fromRows(rows)
}

// Parse picks the parser from the filename extension.
func Parse(filename string, r io.Reader) (*dataset.Dataset, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return ParseExcel(r)
	}
	return ParseCSV(r)
}

// fromRows builds a dataset from a header row plus data rows, standardizing
// column names and skipping fully empty rows.
func fromRows(rows [][]string) (*dataset.Dataset, error) {
	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = StandardizeColumn(col)
	}

	d := dataset.New(header)
	for _, raw := range rows[1:] {
		rec := make(dataset.Record, len(header))
		empty := true
		for i, col := range header {
			value := ""
			if i < len(raw) {
				value = strings.TrimSpace(raw[i])
			}
			if value != "" {
				empty = false
			}
			rec[col] = value
		}
		if empty {
			continue
		}
		d.Append(rec)
	}
	return d, nil
}

// StandardizeColumn lowercases a raw column name and replaces spaces with
// underscores, matching the record store's schema spelling.
func StandardizeColumn(col string) string {
	col = strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))
	return strings.ReplaceAll(strings.ToLower(col), " ", "_")
}

// Enrich applies the ingestion-time measure mapping in place on a freshly
// parsed dataset: the update total gains the demographic age-bracket sums
// and the enrolment total gains the biometric ones. When the aggregate
// column is absent it is derived from the bracket sums alone; when present
// the bracket sums are added to it.
func Enrich(d *dataset.Dataset) {
	addBracketSums(d, "total_updates", "demo_age")
	addBracketSums(d, "total_enrolments", "bio_age")
}

func addBracketSums(d *dataset.Dataset, totalCol, bracketPrefix string) {
	var brackets []string
	hasTotal := false
	for _, col := range d.Columns {
		if strings.Contains(col, bracketPrefix) {
			brackets = append(brackets, col)
		}
		if col == totalCol {
			hasTotal = true
		}
	}
	if len(brackets) == 0 {
		return
	}
	if !hasTotal {
		d.Columns = append(d.Columns, totalCol)
	}

	for _, row := range d.Rows {
		sum := 0.0
		for _, col := range brackets {
			if v, ok := row.Float(col); ok {
				sum += v
			}
		}
		if hasTotal {
			if existing, ok := row.Float(totalCol); ok {
				sum += existing
			}
		}
		row[totalCol] = strconv.FormatFloat(sum, 'f', -1, 64)
	}
}
