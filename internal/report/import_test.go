package report

import (
	"bytes"
	"testing"

	"scoreboard/internal/dataset"
	"scoreboard/internal/score"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestImportWorkbook(t *testing.T) {
	buf := workbook(t, [][]any{
		{"학번", "이름", "회차", "국어", "국어_pct", "반"},
		{"007", "Kim", 1, 88, 91.5, "03"},
		{"", "NoId", 1, 70},
		{},
		{"008", "Lee", "2회", "-", 40},
	})

	b, report, err := ImportWorkbook(buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.TotalRows != 3 || report.SuccessRows != 2 || report.FailedRows != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Errors) != 1 || report.Errors[0].Row != 3 {
		t.Fatalf("expected row 3 to fail, got %+v", report.Errors)
	}

	recs := dataset.Coerce(b)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if id := recs[0].Identity(); id != "007" {
		t.Fatalf("expected zero-padded id kept as text, got %q", id)
	}
	if got := recs[0].Text("반"); got != "03" {
		t.Fatalf("expected zero-padded code kept as text, got %q", got)
	}

	v := score.Extract(recs[0], score.Korean)
	if v.Raw == nil || *v.Raw != 88 || v.Percentile == nil || *v.Percentile != 91.5 {
		t.Fatalf("unexpected korean values: %+v", v)
	}
	if r := score.Round(recs[1]); r == nil || *r != 2 {
		t.Fatalf("expected round 2 from text cell, got %v", r)
	}
	if v := score.Extract(recs[1], score.Korean); v.Raw != nil {
		t.Fatalf("dash should be absent, got %v", *v.Raw)
	}
}

func TestImportWorkbookRejectsEmptySheet(t *testing.T) {
	buf := workbook(t, [][]any{{"학번", "이름"}})
	if _, _, err := ImportWorkbook(buf); err == nil {
		t.Fatalf("expected error for header-only sheet")
	}
}

func TestImportWorkbookRoundTripsExport(t *testing.T) {
	records := dataset.Coerce([]byte(`[
		{"학번":"s1","회차":1,"날짜":"2024-03-01","국어":80,"수학_pct":66,"탐1_grade":2},
		{"학번":"s1","회차":2,"date":"2024-05-01","국어_raw":90,"국어_pct":95,"국어_cut":88},
		{"학번":"s1","date":"2024-07-01","영어":71}
	]`))
	before := score.BuildHistory("s1", records)

	b, err := HistoryWorkbook(dataset.Student{ID: "s1", Name: "Kim"}, before)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, report, err := ImportWorkbook(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.SuccessRows != 3 || report.FailedRows != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	after := score.BuildHistory("s1", dataset.Coerce(data))

	type row struct {
		Label  string
		Values map[score.Subject]score.Values
	}
	snapshot := func(h *score.History) []row {
		out := make([]row, 0, h.Len())
		for _, e := range h.All() {
			r := row{Label: e.Label, Values: map[score.Subject]score.Values{}}
			for _, sub := range score.AllSubjects {
				r.Values[sub] = e.Values(sub)
			}
			out = append(out, r)
		}
		return out
	}
	if diff := cmp.Diff(snapshot(before), snapshot(after)); diff != "" {
		t.Fatalf("history changed across export and import (-before +after):\n%s", diff)
	}
}

func TestImportWorkbookRejectsEmptyExport(t *testing.T) {
	b, err := HistoryWorkbook(dataset.Student{ID: "s1", Name: "Kim"}, score.BuildHistory("s1", nil))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, _, err := ImportWorkbook(bytes.NewReader(b)); err == nil {
		t.Fatalf("export without rows should not import")
	}
}
