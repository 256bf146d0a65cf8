package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/devstack/internal/domain"
	"github.com/shaiso/devstack/internal/plan"
)

// planFlags — флаги построения плана, общие для up и plan.
type planFlags struct {
	path  string
	root  string
	agent string
	vars  map[string]string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "plan", "", "Path to JSON plan file (built-in plan if empty)")
	cmd.Flags().StringVar(&f.root, "root", ".", "Project root; relative child dirs resolve against it")
	cmd.Flags().StringVar(&f.agent, "agent", "", "Backend agent entrypoint in backend/src (default \"agent\")")
	cmd.Flags().StringToStringVar(&f.vars, "set", nil, "Template variables as KEY=VALUE (repeatable)")
}

// build строит неизменяемый план из флагов.
func (f *planFlags) build() (domain.Plan, error) {
	vars := maps.Clone(f.vars)
	if vars == nil {
		vars = make(map[string]string)
	}

	if f.agent != "" {
		vars["agent"] = f.agent
	}

	// Агент проверяется, кто бы его ни задал: --agent или --set agent=...
	if agent, ok := vars["agent"]; ok {
		if err := plan.CheckAgent(f.root, agent); err != nil {
			return domain.Plan{}, err
		}
	}

	return plan.Build(plan.Options{
		Path: f.path,
		Root: f.root,
		Vars: vars,
	})
}

// NewPlanCmd создаёт команду вывода итогового плана.
func NewPlanCmd(outputFn func() *Output) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the resolved launch plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.build()
			if err != nil {
				return err
			}

			out := outputFn()
			out.Print(
				[]string{"#", "NAME", "DIR", "COMMAND", "ENV"},
				planRows(p),
				p,
			)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func planRows(p domain.Plan) [][]string {
	children := p.Children()
	rows := make([][]string, len(children))
	for i, c := range children {
		rows[i] = []string{
			fmt.Sprint(i),
			c.Name,
			orDash(c.Dir),
			c.CommandLine(),
			orDash(formatEnv(c.Env)),
		}
	}
	return rows
}

// formatEnv выводит переменные окружения в стабильном порядке.
func formatEnv(env map[string]string) string {
	keys := slices.Sorted(maps.Keys(env))
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + env[k]
	}
	return strings.Join(pairs, " ")
}
