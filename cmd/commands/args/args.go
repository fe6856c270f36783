package args

import (
	"errors"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/argfile"
	"nathanbeddoewebdev/dropproxy/internal/console"

	"github.com/spf13/cobra"
)

// NewCommand returns the "args" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "args",
		Short: "Manage provisioning argument files",
	}

	cmd.AddCommand(InitCommand())

	return cmd
}

// InitCommand returns the "args init" command.
func InitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a template argument file if none exists",
		Long: `Write a template argument file with placeholder values. An existing
file is left untouched.

Examples:
  dropproxy args init
  dropproxy args init staging.txt`,
		Args: app.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := argfile.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}
			return runInit(cmd, path)
		},
		SilenceUsage: true,
	}

	return cmd
}

func runInit(cmd *cobra.Command, path string) error {
	out := console.New(cmd.OutOrStdout())
	err := argfile.EnsureExists(path)
	switch {
	case errors.Is(err, argfile.ErrMissingConfiguration):
		out.Successf("Wrote template %s, edit it before provisioning", path)
	case err != nil:
		return err
	default:
		out.Infof("%s already exists", path)
	}
	return out.Err()
}
