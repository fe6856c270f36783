package nginx

import (
	"fmt"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/argfile"
	"nathanbeddoewebdev/dropproxy/internal/console"
	"nathanbeddoewebdev/dropproxy/internal/nginx"

	"github.com/spf13/cobra"
)

// MakeCommand returns the "nginx make" command.
func MakeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "make <server_name> <upstream_ip> <ports_csv> <app_location>",
		Short: "Write an nginx site and the matching argument file",
		Long: `Write <server_name>.conf proxying every listed port to the upstream,
and rewrite the argument file so that provisioning deploys it.

Examples:
  dropproxy nginx make app.example.com 10.0.0.5 80,8080 /
  dropproxy nginx make app.example.com 10.0.0.5 80 /api --dir sites`,
		Args: app.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			argsFile, _ := cmd.Flags().GetString("args-file")
			return Make(cmd, dir, argsFile, args)
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("dir", ".", "Directory to write the site file to")
	cmd.Flags().String("args-file", argfile.DefaultFile, "Argument file to rewrite")

	return cmd
}

// Make generates the site from the four positional values.
func Make(cmd *cobra.Command, dir, argsFile string, args []string) error {
	if _, err := nginx.ParsePorts(args[2]); err != nil {
		return fmt.Errorf("%w: %w", app.ErrUsage, err)
	}
	res, err := nginx.Make(dir, args[0], args[1], args[2], args[3], argsFile)
	if err != nil {
		return err
	}

	out := console.New(cmd.OutOrStdout())
	out.Successf("Wrote %s", res.ConfPath)
	out.Field("Server name", res.Config.ServerName)
	out.Field("Argument file", res.ArgsPath)
	out.Field("Droplet", res.Request.DropletName)
	return out.Err()
}
