package score

import (
	"context"
	"errors"
	"fmt"

	"scoreboard/internal/dataset"
)

var ErrDatasetUnavailable = errors.New("dataset unavailable")

const defaultRecentWindow = 3

type Files struct {
	Scores   string
	Students string
}

type Service struct {
	src          dataset.Source
	files        Files
	recentWindow int
}

// Cell is one subject column of a history row.
type Cell struct {
	Subject Subject `json:"subject"`
	Name    string  `json:"name"`
	Values
}

type RowView struct {
	Label  string   `json:"label"`
	Anchor string   `json:"anchor"`
	Round  *float64 `json:"round"`
	Date   string   `json:"date,omitempty"`
	Cells  []Cell   `json:"cells"`
}

type SubjectInfo struct {
	Subject Subject `json:"subject"`
	Name    string  `json:"name"`
}

// StudentView is everything the score page renders for one student.
type StudentView struct {
	Student  dataset.Student     `json:"student"`
	Latest   RowView             `json:"latest"`
	Subjects []SubjectInfo       `json:"subjects"`
	Recent   []RowView           `json:"recent"`
	All      []RowView           `json:"all"`
	Series   map[Subject][]Point `json:"series"`
}

func NewService(src dataset.Source, files Files, recentWindow int) *Service {
	if files.Scores == "" {
		files.Scores = "scores.json"
	}
	if files.Students == "" {
		files.Students = "students.json"
	}
	if recentWindow <= 0 {
		recentWindow = defaultRecentWindow
	}
	return &Service{src: src, files: files, recentWindow: recentWindow}
}

func (s *Service) Roster(ctx context.Context) (*dataset.Roster, error) {
	recs, err := dataset.LoadRecords(ctx, s.src, s.files.Students)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return dataset.NewRoster(recs), nil
}

func (s *Service) ListStudents(ctx context.Context) ([]dataset.Student, error) {
	roster, err := s.Roster(ctx)
	if err != nil {
		return nil, err
	}
	return roster.Students(), nil
}

// StudentHistory resolves a student by id or token and loads their rounds.
// It returns dataset.ErrStudentNotFound when the roster has no such student
// and ErrNoScoreData when the student has no score records.
func (s *Service) StudentHistory(ctx context.Context, id, token string) (dataset.Student, *History, error) {
	roster, err := s.Roster(ctx)
	if err != nil {
		return dataset.Student{}, nil, err
	}
	student, err := roster.Find(id, token)
	if err != nil {
		return dataset.Student{}, nil, err
	}

	recs, err := dataset.LoadRecords(ctx, s.src, s.files.Scores)
	if err != nil {
		return dataset.Student{}, nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	h := BuildHistory(student.ID, recs)
	if h.Empty() {
		return student, h, ErrNoScoreData
	}
	return student, h, nil
}

func (s *Service) ViewByID(ctx context.Context, id string) (*StudentView, error) {
	return s.view(ctx, id, "")
}

func (s *Service) ViewByToken(ctx context.Context, token string) (*StudentView, error) {
	return s.view(ctx, "", token)
}

func (s *Service) SeriesByID(ctx context.Context, id string, subject Subject) ([]Point, error) {
	return s.series(ctx, id, "", subject)
}

func (s *Service) SeriesByToken(ctx context.Context, token string, subject Subject) ([]Point, error) {
	return s.series(ctx, "", token, subject)
}

func (s *Service) view(ctx context.Context, id, token string) (*StudentView, error) {
	student, h, err := s.StudentHistory(ctx, id, token)
	if err != nil {
		return nil, err
	}
	return BuildView(student, h, s.recentWindow)
}

func (s *Service) series(ctx context.Context, id, token string, subject Subject) ([]Point, error) {
	if _, ok := subjectLabels[subject]; !ok {
		return nil, ErrUnknownSubject
	}
	_, h, err := s.StudentHistory(ctx, id, token)
	if err != nil {
		return nil, err
	}
	return h.Series(subject), nil
}

// BuildView derives the page model from a non-empty history.
func BuildView(student dataset.Student, h *History, recentWindow int) (*StudentView, error) {
	latest, err := h.Latest()
	if err != nil {
		return nil, err
	}

	subjects := h.Subjects()
	view := &StudentView{
		Student:  student,
		Latest:   rowView(latest),
		Subjects: make([]SubjectInfo, 0, len(subjects)),
		Recent:   rowViews(h.Recent(recentWindow)),
		All:      rowViews(h.AllDesc()),
		Series:   make(map[Subject][]Point, len(subjects)),
	}
	for _, sub := range subjects {
		view.Subjects = append(view.Subjects, SubjectInfo{Subject: sub, Name: sub.Label()})
		view.Series[sub] = h.Series(sub)
	}
	return view, nil
}

func rowViews(entries []Entry) []RowView {
	out := make([]RowView, 0, len(entries))
	for _, e := range entries {
		out = append(out, rowView(e))
	}
	return out
}

func rowView(e Entry) RowView {
	cells := make([]Cell, 0, len(AllSubjects))
	for _, sub := range AllSubjects {
		cells = append(cells, Cell{Subject: sub, Name: sub.Label(), Values: e.Values(sub)})
	}
	return RowView{
		Label:  e.Label,
		Anchor: e.Anchor,
		Round:  e.Round,
		Date:   e.Date,
		Cells:  cells,
	}
}
