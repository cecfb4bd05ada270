package report

import (
	"bytes"
	"context"
	"fmt"

	"scoreboard/internal/dataset"
	"scoreboard/internal/score"

	"github.com/xuri/excelize/v2"
)

type historyLoader interface {
	StudentHistory(ctx context.Context, id, token string) (dataset.Student, *score.History, error)
}

type Service struct {
	scores historyLoader
}

func NewService(scores historyLoader) *Service {
	return &Service{scores: scores}
}

// StudentWorkbook exports a student's rounds, most recent first, with raw,
// percentile, cut and grade columns per subject.
func (s *Service) StudentWorkbook(ctx context.Context, studentID string) ([]byte, dataset.Student, error) {
	student, h, err := s.scores.StudentHistory(ctx, studentID, "")
	if err != nil {
		return nil, dataset.Student{}, err
	}
	b, err := HistoryWorkbook(student, h)
	if err != nil {
		return nil, dataset.Student{}, err
	}
	return b, student, nil
}

// exportKinds are the value columns written per subject. Each column is
// headed by the subject's primary field name so the sheet reads back through
// ImportWorkbook.
var exportKinds = []score.ValueKind{score.KindRaw, score.KindPercentile, score.KindCut, score.KindGrade}

func HistoryWorkbook(student dataset.Student, h *score.History) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	headers := []string{"학번", "이름", "회차", "날짜"}
	for _, sub := range score.AllSubjects {
		for _, kind := range exportKinds {
			headers = append(headers, score.CandidateFields(sub, kind)[0])
		}
	}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, name)
	}

	for i, e := range h.AllDesc() {
		row := i + 2
		values := []any{student.ID, student.Name, optionalNumber(e.Round), e.Date}
		for _, sub := range score.AllSubjects {
			v := e.Values(sub)
			values = append(values, cellValue(v.Raw), cellValue(v.Percentile), cellValue(v.Cut), cellValue(v.Grade))
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "D", 14)
	endCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "E", endCol, 10)
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("%s (%s)", student.Name, student.ID),
		Subject: "score history",
	})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue leaves absent numbers as "-" rather than writing a zero.
func cellValue(p *float64) any {
	if p == nil {
		return "-"
	}
	return *p
}

// optionalNumber leaves a missing round blank so it reads back as absent.
func optionalNumber(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}
