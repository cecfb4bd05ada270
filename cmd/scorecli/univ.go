package main

import (
	"fmt"
	"io"
	"strings"

	"scoreboard/internal/univ"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newUnivCmd(env *cliEnv) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "univ [query]",
		Short: "Search the university directory",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := univ.NewService(env.src, env.cfg.UnivFile)
			items, err := svc.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			renderPrograms(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", univ.MaxResults, "maximum number of matches")
	return cmd
}

func renderPrograms(w io.Writer, items []univ.Program) {
	if len(items) == 0 {
		fmt.Fprintln(w, color.YellowString("no matches"))
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"대학", "학과", "핵심과목", "권장과목", "전형변화2028"})
	for _, p := range items {
		table.Append([]string{p.University, p.Department, dash(p.CoreSubjects), dash(p.RecommendedSubjects), dash(p.AdmissionChanges)})
	}
	table.Render()
}
