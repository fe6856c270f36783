package config

import (
	"fmt"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change the provisioning defaults",
		Long: "Show and change the defaults a provisioning run uses: providers,\n" +
			"regions, droplet image and size, SSH login and the DNS TTL.\n\n" +
			"Run \"dropproxy config path\" to see where they are stored.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())
	cmd.AddCommand(PathCommand())

	return cmd
}

// PathCommand returns the "config path" command.
func PathCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "path",
		Short:        "Print the config file location",
		Args:         app.ExactArgs(0),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
