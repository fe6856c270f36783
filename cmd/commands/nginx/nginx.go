package nginx

import "github.com/spf13/cobra"

// NewCommand returns the "nginx" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nginx",
		Short: "Generate nginx reverse proxy sites",
	}

	cmd.AddCommand(MakeCommand())

	return cmd
}
