package list

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/util"

	"github.com/spf13/cobra"
)

// DropletsCommand returns the "list droplets" command.
func DropletsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "droplets",
		Short:        "List droplets in the cloud account",
		Args:         app.ExactArgs(0),
		RunE:         func(cmd *cobra.Command, args []string) error { return Droplets(cmd) },
		SilenceUsage: true,
	}
}

// Droplets prints every droplet in the cloud account.
func Droplets(cmd *cobra.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	droplets, err := env.Cloud.ListDroplets(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list droplets: %w", err)
	}

	if ok, err := app.Encode(cmd.OutOrStdout(), format, droplets); ok {
		return err
	}

	if len(droplets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No droplets found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tREGION\tSIZE\tPUBLIC IPv4\tTAGS")
	fmt.Fprintln(w, "--\t----\t------\t------\t----\t-----------\t----")
	for _, d := range droplets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID,
			d.Name,
			d.Status,
			d.Region,
			d.Size,
			util.OrDash(d.PublicIPv4),
			util.OrDash(strings.Join(d.Tags, ",")),
		)
	}
	return w.Flush()
}
