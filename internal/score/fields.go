package score

import (
	"errors"
	"strings"
)

var ErrUnknownSubject = errors.New("unknown subject")

type Subject string

const (
	Korean    Subject = "korean"
	Math      Subject = "math"
	English   Subject = "english"
	Elective1 Subject = "elective1"
	Elective2 Subject = "elective2"
)

// AllSubjects is the display order of the score table.
var AllSubjects = []Subject{Korean, Math, English, Elective1, Elective2}

var subjectLabels = map[Subject]string{
	Korean:    "국어",
	Math:      "수학",
	English:   "영어",
	Elective1: "탐1",
	Elective2: "탐2",
}

func (s Subject) Label() string {
	if l, ok := subjectLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseSubject accepts either the canonical key or the Korean label.
func ParseSubject(v string) (Subject, error) {
	v = strings.TrimSpace(v)
	for _, s := range AllSubjects {
		if strings.EqualFold(v, string(s)) || v == s.Label() {
			return s, nil
		}
	}
	return "", ErrUnknownSubject
}

type ValueKind int

const (
	KindRaw ValueKind = iota
	KindPercentile
	KindCut
	KindGrade
)

// candidateFields maps each subject and value kind to the field names that
// may carry it, in priority order. The elective slots also accept the name
// of the commonly chosen elective (생윤 for 탐1, 사문 for 탐2).
var candidateFields = map[Subject]map[ValueKind][]string{
	Korean: {
		KindRaw:        {"국어_raw", "국어", "국"},
		KindPercentile: {"국어_pct", "국어p", "국어P"},
		KindCut:        {"국어_cut", "국어컷", "국어_1컷"},
		KindGrade:      {"국어_grade", "국어등급", "국어g"},
	},
	Math: {
		KindRaw:        {"수학_raw", "수학", "수"},
		KindPercentile: {"수학_pct", "수학p", "수학P"},
		KindCut:        {"수학_cut", "수학컷", "수학_1컷"},
		KindGrade:      {"수학_grade", "수학등급", "수학g"},
	},
	English: {
		KindRaw:        {"영어_raw", "영어", "영"},
		KindPercentile: {"영어_pct", "영어p", "영어P"},
		KindCut:        {"영어_cut", "영어컷", "영어_1컷"},
		KindGrade:      {"영어_grade", "영어등급", "영어g"},
	},
	Elective1: {
		KindRaw:        {"탐1_raw", "탐1", "탐구1", "탐_1", "탐구_1", "생윤"},
		KindPercentile: {"탐1_pct", "탐1p", "탐구1p", "탐구1P", "생윤_pct", "생윤p", "생윤P"},
		KindCut:        {"탐1_cut", "탐1컷", "탐구1컷", "생윤_cut", "생윤컷"},
		KindGrade:      {"탐1_grade", "탐1등급", "탐구1등급", "생윤_grade", "생윤등급"},
	},
	Elective2: {
		KindRaw:        {"탐2_raw", "탐2", "탐구2", "탐_2", "탐구_2", "사문"},
		KindPercentile: {"탐2_pct", "탐2p", "탐구2p", "탐구2P", "사문_pct", "사문p", "사문P"},
		KindCut:        {"탐2_cut", "탐2컷", "탐구2컷", "사문_cut", "사문컷"},
		KindGrade:      {"탐2_grade", "탐2등급", "탐구2등급", "사문_grade", "사문등급"},
	},
}

var (
	roundKeys = []string{"round", "Round", "회차", "차수"}
	dateKeys  = []string{"date", "Date", "날짜", "일자"}
)

// CandidateFields returns the lookup order for one subject and value kind.
func CandidateFields(s Subject, kind ValueKind) []string {
	keys := candidateFields[s][kind]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}
