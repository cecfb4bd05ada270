package main

import (
	"fmt"
	"io"

	"scoreboard/internal/dataset"
	"scoreboard/internal/score"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newStudentCmd(env *cliEnv) *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "student <id>",
		Short: "Print a student's score history, most recent round first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := score.NewService(env.src, score.Files{
				Scores:   env.cfg.ScoresFile,
				Students: env.cfg.StudentsFile,
			}, env.cfg.RecentWindow)
			student, h, err := svc.StudentHistory(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), student, h, recent)
			return nil
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 0, "only show the N most recent rounds")
	return cmd
}

func newStudentsCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "students",
		Short: "List the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := score.NewService(env.src, score.Files{
				Scores:   env.cfg.ScoresFile,
				Students: env.cfg.StudentsFile,
			}, env.cfg.RecentWindow)
			students, err := svc.ListStudents(cmd.Context())
			if err != nil {
				return err
			}
			renderRoster(cmd.OutOrStdout(), students)
			return nil
		},
	}
}

func renderHistory(w io.Writer, student dataset.Student, h *score.History, recent int) {
	fmt.Fprintln(w, color.CyanString("%s (%s)", student.Name, student.ID))

	entries := h.AllDesc()
	if recent > 0 {
		entries = h.Recent(recent)
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	header := []string{"회차", "날짜"}
	for _, s := range score.AllSubjects {
		header = append(header, s.Label())
	}
	table.SetHeader(header)
	for _, e := range entries {
		row := []string{e.Label, dash(e.Date)}
		for _, s := range score.AllSubjects {
			row = append(row, scoreCell(e.Values(s)))
		}
		table.Append(row)
	}
	table.Render()
}

func renderRoster(w io.Writer, students []dataset.Student) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"학번", "이름", "학교", "진로", "전형"})
	for _, s := range students {
		table.Append([]string{s.ID, s.Name, dash(s.School), dash(s.Career), dash(s.Admission)})
	}
	table.Render()
	fmt.Fprintln(w, color.YellowString("%d students", len(students)))
}

// scoreCell renders "raw (pct)" with "-" standing in for either part.
func scoreCell(v score.Values) string {
	if !v.HasScore() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", numberOrDash(v.Raw), numberOrDash(v.Percentile))
}

func numberOrDash(p *float64) string {
	if p == nil {
		return "-"
	}
	return score.FormatNumber(*p)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
