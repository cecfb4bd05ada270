package main

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scoreboard/internal/app"
	"scoreboard/internal/dataset"
	"scoreboard/internal/score"

	"github.com/xuri/excelize/v2"
)

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"students.json": `[{"id":"s1","name":"Kim","token":"tok","school":"Hanguk HS"}]`,
		"scores.json": `{"rows":[
			{"id":"s1","round":1,"date":"2024-03-01","국어":70,"국어_pct":60},
			{"id":"s1","round":2,"date":"2024-05-01","국어":81.5,"국어_pct":77}
		]}`,
		"univ_info.json": `[{"대학":"Seoul Univ","학과":"Physics","핵심과목":"물리학Ⅱ"},{"대학":"Busan Univ","학과":"History"}]`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	env := &cliEnv{cfg: app.LoadConfig()}
	root := newRootCmd(env)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := run(context.Background(), env, root)
	return out.String(), err
}

func TestStudentCommand(t *testing.T) {
	dir := writeFixtures(t)
	out, err := runCLI(t, "--source", "fs", "--data-dir", dir, "student", "s1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "Kim (s1)") {
		t.Fatalf("missing student heading:\n%s", out)
	}
	latest := strings.Index(out, "#2 (2024-05-01)")
	first := strings.Index(out, "#1 (2024-03-01)")
	if latest < 0 || first < 0 || latest > first {
		t.Fatalf("expected most recent round first:\n%s", out)
	}
	if !strings.Contains(out, "81.5 (77)") {
		t.Fatalf("expected raw and percentile cell:\n%s", out)
	}
}

func TestStudentCommandRecent(t *testing.T) {
	dir := writeFixtures(t)
	out, err := runCLI(t, "--source", "fs", "--data-dir", dir, "student", "s1", "--recent", "1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(out, "#1 (2024-03-01)") {
		t.Fatalf("older round should be cut by --recent:\n%s", out)
	}
}

func TestStudentCommandUnknown(t *testing.T) {
	dir := writeFixtures(t)
	if _, err := runCLI(t, "--source", "fs", "--data-dir", dir, "student", "nobody"); err == nil {
		t.Fatalf("expected an error for an unknown student")
	}
}

func TestUnivCommand(t *testing.T) {
	dir := writeFixtures(t)
	out, err := runCLI(t, "--source", "fs", "--data-dir", dir, "univ", "Physics")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "Seoul Univ") || strings.Contains(out, "Busan Univ") {
		t.Fatalf("unexpected matches:\n%s", out)
	}
}

func TestImportNeedsPostgres(t *testing.T) {
	dir := writeFixtures(t)
	_, err := runCLI(t, "--source", "fs", "--data-dir", dir, "import", filepath.Join(dir, "scores.json"))
	if err == nil || !strings.Contains(err.Error(), "postgres") {
		t.Fatalf("expected postgres requirement error, got %v", err)
	}
}

func TestRunClosesDatabaseOnError(t *testing.T) {
	dir := writeFixtures(t)
	conn, err := sql.Open("pgx", "postgres://scoreboard@127.0.0.1:1/none")
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	env := &cliEnv{cfg: app.LoadConfig(), conn: conn}
	root := newRootCmd(env)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--source", "fs", "--data-dir", dir, "student", "nobody"})

	if err := run(context.Background(), env, root); err == nil {
		t.Fatalf("expected an error for an unknown student")
	}
	if err := conn.PingContext(context.Background()); err == nil || !strings.Contains(err.Error(), "closed") {
		t.Fatalf("expected the connection to be closed, ping returned %v", err)
	}
}

func TestScoreCell(t *testing.T) {
	raw, pct := 88.0, 91.0
	tests := []struct {
		name string
		in   score.Values
		want string
	}{
		{name: "both", in: score.Values{Raw: &raw, Percentile: &pct}, want: "88 (91)"},
		{name: "raw only", in: score.Values{Raw: &raw}, want: "88 (-)"},
		{name: "empty", in: score.Values{}, want: "-"},
	}
	for _, tc := range tests {
		if got := scoreCell(tc.in); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestRenderRoster(t *testing.T) {
	var buf bytes.Buffer
	renderRoster(&buf, []dataset.Student{{ID: "s1", Name: "Kim"}})
	if !strings.Contains(buf.String(), "1 students") {
		t.Fatalf("missing count:\n%s", buf.String())
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scores.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"학번", "회차", "국어"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{"s1", 1, 88})
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = f.Close()

	out, err := runCLI(t, "convert", path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	recs := dataset.Coerce([]byte(out))
	if len(recs) != 1 || recs[0].Identity() != "s1" {
		t.Fatalf("unexpected converted dataset:\n%s", out)
	}
}

func TestDatasetName(t *testing.T) {
	if got := datasetName("/tmp/scores.xlsx"); got != "scores.json" {
		t.Fatalf("got %q", got)
	}
	if got := datasetName("students.json"); got != "students.json" {
		t.Fatalf("got %q", got)
	}
}
