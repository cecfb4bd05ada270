package dataset

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var ErrStudentNotFound = errors.New("student not found")

var (
	tokenKeys     = []string{"token", "accessToken", "key", "토큰"}
	nameKeys      = []string{"studentName", "studentname", "name", "학생명", "이름", "성명"}
	schoolKeys    = []string{"school", "학교"}
	careerKeys    = []string{"career", "진로"}
	admissionKeys = []string{"admission", "전형"}
)

type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	School    string `json:"school,omitempty"`
	Career    string `json:"career,omitempty"`
	Admission string `json:"admission,omitempty"`

	token string
}

// Public drops the staff-only roster fields.
func (s Student) Public() Student {
	return Student{ID: s.ID, Name: s.Name}
}

// Roster is the student list from students.json.
type Roster struct {
	students []Student
}

func NewRoster(records []Record) *Roster {
	out := make([]Student, 0, len(records))
	for _, rec := range records {
		out = append(out, studentFromRecord(rec))
	}
	return &Roster{students: out}
}

func studentFromRecord(rec Record) Student {
	s := Student{
		ID:        rec.Identity(),
		Name:      rec.Text(nameKeys...),
		School:    rec.Text(schoolKeys...),
		Career:    rec.Text(careerKeys...),
		Admission: rec.Text(admissionKeys...),
		token:     rec.Text(tokenKeys...),
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Name == "" {
		s.Name = "-"
	}
	return s
}

func (r *Roster) Students() []Student {
	out := make([]Student, len(r.students))
	copy(out, r.students)
	return out
}

func (r *Roster) ByID(id string) (Student, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Student{}, ErrStudentNotFound
	}
	for _, s := range r.students {
		if s.ID != "" && s.ID == id {
			return s, nil
		}
	}
	return Student{}, ErrStudentNotFound
}

func (r *Roster) ByToken(token string) (Student, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Student{}, ErrStudentNotFound
	}
	for _, s := range r.students {
		if s.token == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(s.token), []byte(token)) == 1 {
			return s, nil
		}
	}
	return Student{}, ErrStudentNotFound
}

// Find looks a student up by id first and falls back to the access token.
func (r *Roster) Find(id, token string) (Student, error) {
	if s, err := r.ByID(id); err == nil {
		return s, nil
	}
	return r.ByToken(token)
}
