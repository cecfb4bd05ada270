package score

import (
	"strings"

	"scoreboard/internal/dataset"
)

// Values holds one subject's numbers from one record. A nil field means the
// record carries no usable value for it.
type Values struct {
	Raw        *float64 `json:"raw"`
	Percentile *float64 `json:"percentile"`
	Cut        *float64 `json:"cut"`
	Grade      *float64 `json:"grade"`
}

// HasScore reports whether a raw score or a percentile is present.
func (v Values) HasScore() bool {
	return v.Raw != nil || v.Percentile != nil
}

// Extract reads one subject's values from a raw record.
func Extract(rec dataset.Record, s Subject) Values {
	return Values{
		Raw:        lookupNumber(rec, candidateFields[s][KindRaw]),
		Percentile: lookupNumber(rec, candidateFields[s][KindPercentile]),
		Cut:        lookupNumber(rec, candidateFields[s][KindCut]),
		Grade:      lookupNumber(rec, candidateFields[s][KindGrade]),
	}
}

// lookupNumber returns the first candidate that is present and numeric. A
// present but non-numeric field does not stop the search.
func lookupNumber(rec dataset.Record, keys []string) *float64 {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok {
			continue
		}
		if p := numberPtr(v); p != nil {
			return p
		}
	}
	return nil
}

// Round returns the exam round number of a record, or nil.
func Round(rec dataset.Record) *float64 {
	return lookupNumber(rec, roundKeys)
}

// Date returns the round date as written in the record, or "".
func Date(rec dataset.Record) string {
	return rec.Text(dateKeys...)
}

// MatchesStudent compares the record identity with id after trimming both.
func MatchesStudent(rec dataset.Record, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	return rec.Identity() == id
}

// RoundLabel is the human readable name of a record's round.
func RoundLabel(rec dataset.Record) string {
	return roundLabel(Round(rec), Date(rec))
}

func roundLabel(round *float64, date string) string {
	switch {
	case round != nil && date != "":
		return "#" + FormatNumber(*round) + " (" + date + ")"
	case round != nil:
		return "#" + FormatNumber(*round)
	case date != "":
		return date
	default:
		return "-"
	}
}

// rowAnchor identifies a history row for jump-to navigation.
func rowAnchor(round *float64, date string) string {
	r := ""
	if round != nil {
		r = FormatNumber(*round)
	}
	return "r_" + r + "_" + date
}
