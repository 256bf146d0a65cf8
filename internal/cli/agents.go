package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/devstack/internal/plan"
)

// NewAgentsCmd создаёт команду списка агентов.
func NewAgentsCmd(outputFn func() *Output) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List backend agent entrypoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agents, err := plan.ListAgents(root)
			if err != nil {
				return err
			}

			out := outputFn()
			if len(agents) == 0 && !out.jsonMode {
				out.Success("No agents found in " + plan.AgentsDir)
				return nil
			}

			rows := make([][]string, len(agents))
			for i, a := range agents {
				marker := ""
				if a == plan.DefaultAgent {
					marker = "*"
				}
				rows[i] = []string{a, marker}
			}

			if agents == nil {
				agents = []string{}
			}
			out.Print([]string{"AGENT", "DEFAULT"}, rows, agents)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Project root")
	return cmd
}
