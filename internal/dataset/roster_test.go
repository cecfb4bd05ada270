package dataset

import (
	"errors"
	"testing"
)

func TestRosterFind(t *testing.T) {
	roster := NewRoster(Coerce([]byte(`[
		{"id":"s1","studentName":"Kim","token":"tok-1","school":"Hana HS"},
		{"학번":"s2","이름":"Lee","토큰":"tok-2"},
		{"studentID":" s3 "},
		{"name":"nobody"}
	]`)))

	tests := []struct {
		name     string
		id       string
		token    string
		wantID   string
		wantName string
		wantErr  error
	}{
		{name: "by id", id: "s1", wantID: "s1", wantName: "Kim"},
		{name: "by localized id", id: "s2", wantID: "s2", wantName: "Lee"},
		{name: "trimmed id", id: "s3 ", wantID: "s3", wantName: "s3"},
		{name: "by token", token: "tok-2", wantID: "s2", wantName: "Lee"},
		{name: "id wins over token", id: "s1", token: "tok-2", wantID: "s1", wantName: "Kim"},
		{name: "unknown id falls back to token", id: "zz", token: "tok-1", wantID: "s1", wantName: "Kim"},
		{name: "not found", id: "zz", token: "nope", wantErr: ErrStudentNotFound},
		{name: "empty lookup", wantErr: ErrStudentNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := roster.Find(tc.id, tc.token)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.ID != tc.wantID || got.Name != tc.wantName {
				t.Fatalf("expected %s/%s, got %s/%s", tc.wantID, tc.wantName, got.ID, got.Name)
			}
		})
	}
}

func TestRosterStudentFields(t *testing.T) {
	roster := NewRoster(Coerce([]byte(`[{"id":"s1","school":"Hana HS","진로":"medicine","admission":"susi"},{"name":""}]`)))
	students := roster.Students()
	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}
	s := students[0]
	if s.School != "Hana HS" || s.Career != "medicine" || s.Admission != "susi" {
		t.Fatalf("unexpected metadata: %+v", s)
	}
	if s.Name != "s1" {
		t.Fatalf("expected name to fall back to id, got %q", s.Name)
	}
	if students[1].Name != "-" {
		t.Fatalf("expected placeholder name, got %q", students[1].Name)
	}
}
