// Command scorecli reads the same datasets as the web server and prints them
// as terminal tables.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"scoreboard/internal/app"
	"scoreboard/internal/dataset"
	"scoreboard/internal/db"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type cliEnv struct {
	cfg  app.Config
	conn *sql.DB
	src  dataset.Source
}

func (e *cliEnv) open(ctx context.Context) error {
	if e.cfg.DataSource == "postgres" {
		conn, err := db.OpenPostgres(ctx, e.cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := db.EnsureSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return err
		}
		e.conn = conn
	}
	src, err := app.NewDataSource(e.cfg, e.conn)
	if err != nil {
		return err
	}
	e.src = src
	return nil
}

func (e *cliEnv) close() {
	if e.conn != nil {
		_ = e.conn.Close()
	}
}

func newRootCmd(env *cliEnv) *cobra.Command {
	root := &cobra.Command{
		Use:           "scorecli",
		Short:         "Inspect mock-exam score datasets from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			return env.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&env.cfg.DataSource, "source", env.cfg.DataSource, "data source: fs, http or postgres")
	root.PersistentFlags().StringVar(&env.cfg.DataDir, "data-dir", env.cfg.DataDir, "directory for the fs source")
	root.PersistentFlags().StringVar(&env.cfg.DataBaseURL, "base-url", env.cfg.DataBaseURL, "base URL for the http source")
	root.PersistentFlags().BoolVar(&color.NoColor, "no-color", color.NoColor, "disable colored output")

	root.AddCommand(newStudentCmd(env))
	root.AddCommand(newStudentsCmd(env))
	root.AddCommand(newUnivCmd(env))
	root.AddCommand(newImportCmd(env))

	convert := newConvertCmd()
	convert.Annotations = map[string]string{"offline": "true"}
	root.AddCommand(convert)
	return root
}

// run executes root and releases whatever the command opened, including on
// failure paths where cobra skips its post-run hooks.
func run(ctx context.Context, env *cliEnv, root *cobra.Command) error {
	defer env.close()
	return root.ExecuteContext(ctx)
}

func main() {
	env := &cliEnv{cfg: app.LoadConfig()}
	if err := run(context.Background(), env, newRootCmd(env)); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}
