package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/shaiso/devstack/internal/domain"
	"github.com/shaiso/devstack/internal/repo"
)

// NewHistoryCmd создаёт группу команд для истории запусков.
func NewHistoryCmd(outputFn func() *Output) *cobra.Command {
	var dbURL string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs (requires up --history)",
	}

	cmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL DSN (default $DB_URL)")

	dbFn := func(ctx context.Context) (*pgxpool.Pool, error) {
		return repo.NewPool(ctx, dbURL)
	}

	cmd.AddCommand(
		newHistoryListCmd(dbFn, outputFn),
		newHistoryShowCmd(dbFn, outputFn),
	)

	return cmd
}

func newHistoryListCmd(dbFn func(context.Context) (*pgxpool.Pool, error), outputFn func() *Output) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := dbFn(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			runs, err := repo.NewRunRepo(pool).List(ctx, limit, offset)
			if err != nil {
				return err
			}

			out := outputFn()
			if len(runs) == 0 && !out.jsonMode {
				out.Success("No runs found")
				return nil
			}

			if runs == nil {
				runs = []repo.RunSummary{}
			}
			out.Print(
				[]string{"ID", "STATUS", "POLICY", "CHILDREN", "FAILED", "STARTED", "DURATION"},
				runSummaryRows(runs),
				runs,
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset for pagination")

	return cmd
}

func newHistoryShowCmd(dbFn func(context.Context) (*pgxpool.Pool, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			pool, err := dbFn(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			summary, err := repo.NewRunRepo(pool).GetByID(ctx, id)
			if err != nil {
				return err
			}
			children, err := repo.NewChildRepo(pool).ListByRun(ctx, id)
			if err != nil {
				return err
			}

			out := outputFn()
			if out.jsonMode {
				if children == nil {
					children = []domain.Child{}
				}
				out.JSON(map[string]any{
					"run":      summary,
					"children": children,
				})
				return nil
			}

			out.Table(
				[]string{"ID", "STATUS", "POLICY", "CHILDREN", "FAILED", "STARTED", "DURATION"},
				runSummaryRows([]repo.RunSummary{*summary}),
			)
			out.Line("")

			rows := make([][]string, len(children))
			for i := range children {
				rows[i] = childRow(&children[i])
			}
			out.Table([]string{"NAME", "STATUS", "PID", "EXIT", "DURATION", "ERROR"}, rows)
			return nil
		},
	}
}

func runSummaryRows(runs []repo.RunSummary) [][]string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID.String(),
			string(r.Status),
			r.Policy,
			fmt.Sprint(r.Children),
			fmt.Sprint(r.Failed),
			formatTime(&r.StartedAt),
			formatDuration(r.Duration()),
		}
	}
	return rows
}
