package univ

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"scoreboard/internal/dataset"

	"github.com/sahilm/fuzzy"
)

var ErrDirectoryUnavailable = errors.New("university directory unavailable")

const MaxResults = 50

var (
	universityKeys  = []string{"대학", "university", "univ"}
	departmentKeys  = []string{"학과", "department", "major"}
	coreKeys        = []string{"핵심과목", "coreSubjects"}
	recommendedKeys = []string{"권장과목", "recommendedSubjects"}
	changeKeys      = []string{"전형변화2028", "전형변화", "admissionChanges"}
)

// Program is one university department with its subject requirements.
type Program struct {
	University          string `json:"university"`
	Department          string `json:"department"`
	CoreSubjects        string `json:"core_subjects"`
	RecommendedSubjects string `json:"recommended_subjects"`
	AdmissionChanges    string `json:"admission_changes"`
}

func programFromRecord(rec dataset.Record) Program {
	return Program{
		University:          rec.Text(universityKeys...),
		Department:          rec.Text(departmentKeys...),
		CoreSubjects:        rec.Text(coreKeys...),
		RecommendedSubjects: rec.Text(recommendedKeys...),
		AdmissionChanges:    rec.Text(changeKeys...),
	}
}

type Service struct {
	src  dataset.Source
	file string
}

func NewService(src dataset.Source, file string) *Service {
	if strings.TrimSpace(file) == "" {
		file = "univ_info.json"
	}
	return &Service{src: src, file: file}
}

func (s *Service) Programs(ctx context.Context) ([]Program, error) {
	recs, err := dataset.LoadRecords(ctx, s.src, s.file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	out := make([]Program, 0, len(recs))
	for _, rec := range recs {
		out = append(out, programFromRecord(rec))
	}
	return out, nil
}

func (s *Service) Search(ctx context.Context, q string, limit int) ([]Program, error) {
	programs, err := s.Programs(ctx)
	if err != nil {
		return nil, err
	}
	return Search(programs, q, limit), nil
}

// programSource exposes university and department names to the matcher.
type programSource []Program

func (p programSource) String(i int) string {
	return p[i].University + " " + p[i].Department
}

func (p programSource) Len() int {
	return len(p)
}

// Search fuzzy matches q against "university department" and returns the
// best matches first. An empty query lists the directory in file order.
func Search(programs []Program, q string, limit int) []Program {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	q = strings.TrimSpace(q)
	if q == "" {
		if len(programs) < limit {
			limit = len(programs)
		}
		out := make([]Program, limit)
		copy(out, programs[:limit])
		return out
	}

	matches := fuzzy.FindFrom(q, programSource(programs))
	if len(matches) == 0 {
		matches = nearMisses(q, programSource(programs))
	}
	out := make([]Program, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, programs[m.Index])
	}
	return out
}

// nearMisses retries the query with each single rune removed. Subsequence
// matching alone misses a mistyped character such as 서을대 for 서울대.
func nearMisses(q string, src programSource) fuzzy.Matches {
	runes := []rune(q)
	if len(runes) < 3 {
		return nil
	}
	best := make(map[int]fuzzy.Match)
	for i := range runes {
		variant := strings.TrimSpace(string(runes[:i]) + string(runes[i+1:]))
		if variant == "" {
			continue
		}
		for _, m := range fuzzy.FindFrom(variant, src) {
			if cur, ok := best[m.Index]; !ok || m.Score > cur.Score {
				best[m.Index] = m
			}
		}
	}
	out := make(fuzzy.Matches, 0, len(best))
	for _, m := range best {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Index < out[j].Index
	})
	return out
}
