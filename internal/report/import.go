package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"scoreboard/internal/dataset"

	"github.com/xuri/excelize/v2"
)

type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportReport struct {
	TotalRows   int              `json:"total_rows"`
	SuccessRows int              `json:"success_rows"`
	FailedRows  int              `json:"failed_rows"`
	Errors      []ImportRowError `json:"errors"`
}

// ImportWorkbook turns the first sheet of a workbook into a JSON array of
// records, one per data row, keyed by the header row. Rows without a student
// id are reported and left out.
func ImportWorkbook(r io.Reader) ([]byte, *ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("excel sheet is empty")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, errors.New("no data rows found")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	report := &ImportReport{Errors: make([]ImportRowError, 0)}
	records := make([]map[string]any, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rec := make(dataset.Record)
		for col, raw := range rows[i] {
			if col >= len(header) || header[col] == "" {
				continue
			}
			v := strings.TrimSpace(raw)
			if v == "" {
				continue
			}
			rec[header[col]] = importValue(header[col], v)
		}
		if len(rec) == 0 {
			continue
		}

		report.TotalRows++
		if rec.Identity() == "" {
			report.FailedRows++
			report.Errors = append(report.Errors, ImportRowError{Row: i + 1, Error: "student id is missing"})
			continue
		}
		records = append(records, rec)
		report.SuccessRows++
	}

	b, err := json.Marshal(records)
	if err != nil {
		return nil, nil, fmt.Errorf("encode records: %w", err)
	}
	return b, report, nil
}

// importValue keeps identity columns and zero-padded codes as text and turns
// every other numeric cell into a JSON number.
func importValue(column, v string) any {
	for _, k := range dataset.IdentityKeys {
		if column == k {
			return v
		}
	}
	if len(v) > 1 && v[0] == '0' && v[1] != '.' {
		return v
	}
	if c := v[0]; (c < '0' || c > '9') && c != '-' {
		return v
	}
	if !json.Valid([]byte(v)) {
		return v
	}
	return json.Number(v)
}
