package score

import (
	"errors"
	"sort"
	"strings"

	"scoreboard/internal/dataset"
)

var ErrNoScoreData = errors.New("no score data for this student")

// Entry is one exam round of a student's history.
type Entry struct {
	Record dataset.Record
	Round  *float64
	Date   string
	Label  string
	Anchor string
}

func newEntry(rec dataset.Record) Entry {
	round := Round(rec)
	date := Date(rec)
	return Entry{
		Record: rec,
		Round:  round,
		Date:   date,
		Label:  roundLabel(round, date),
		Anchor: rowAnchor(round, date),
	}
}

func (e Entry) Values(s Subject) Values {
	return Extract(e.Record, s)
}

// Point is one round of a per-subject series.
type Point struct {
	Label string   `json:"label"`
	Round *float64 `json:"round"`
	Date  string   `json:"date,omitempty"`
	Values
	// CutGap is raw minus cut when both are known.
	CutGap *float64 `json:"cut_gap"`
}

// History is a student's score records in ascending round order.
type History struct {
	StudentID string
	entries   []Entry
}

// BuildHistory keeps the records that belong to studentID and orders them by
// round, falling back to date. Records that cannot be ordered against each
// other keep their input order.
func BuildHistory(studentID string, records []dataset.Record) *History {
	studentID = strings.TrimSpace(studentID)
	entries := make([]Entry, 0)
	for _, rec := range records {
		if MatchesStudent(rec, studentID) {
			entries = append(entries, newEntry(rec))
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return compareEntries(entries[i], entries[j]) < 0
	})
	return &History{StudentID: studentID, entries: entries}
}

func compareEntries(a, b Entry) int {
	if a.Round != nil && b.Round != nil && *a.Round != *b.Round {
		if *a.Round < *b.Round {
			return -1
		}
		return 1
	}
	if a.Date != "" && b.Date != "" {
		return strings.Compare(a.Date, b.Date)
	}
	return 0
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Empty() bool {
	return len(h.entries) == 0
}

// Latest returns the most recent round or ErrNoScoreData.
func (h *History) Latest() (Entry, error) {
	if len(h.entries) == 0 {
		return Entry{}, ErrNoScoreData
	}
	return h.entries[len(h.entries)-1], nil
}

// Recent returns up to n rounds, most recent first.
func (h *History) Recent(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

// All returns every round in ascending order.
func (h *History) All() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// AllDesc returns every round, most recent first.
func (h *History) AllDesc() []Entry {
	return h.Recent(len(h.entries))
}

// Series returns one point per round for the subject, oldest first.
func (h *History) Series(s Subject) []Point {
	out := make([]Point, 0, len(h.entries))
	for _, e := range h.entries {
		v := e.Values(s)
		p := Point{
			Label:  e.Label,
			Round:  e.Round,
			Date:   e.Date,
			Values: v,
		}
		if v.Raw != nil && v.Cut != nil {
			gap := *v.Raw - *v.Cut
			p.CutGap = &gap
		}
		out = append(out, p)
	}
	return out
}

// Subjects lists the subjects with at least one raw score or percentile in
// any round, in display order.
func (h *History) Subjects() []Subject {
	out := make([]Subject, 0, len(AllSubjects))
	for _, s := range AllSubjects {
		for _, e := range h.entries {
			if e.Values(s).HasScore() {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
