package runs

import "github.com/spf13/cobra"

// NewCommand returns the "runs" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "View and manage provisioning history",
		Long: "View the local history of provisioning runs and prune old entries.\n\n" +
			"History is stored locally in ~/.config/dropproxy/dropproxy.db.",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}

// dbPath, when set, replaces the default run log location. Tests set it.
var dbPath string
