package list

import (
	"fmt"
	"text/tabwriter"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/util"

	"github.com/spf13/cobra"
)

// KeysCommand returns the "list keys" command.
func KeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "keys",
		Short:        "List SSH keys registered with the cloud account",
		Args:         app.ExactArgs(0),
		RunE:         func(cmd *cobra.Command, args []string) error { return Keys(cmd) },
		SilenceUsage: true,
	}
}

// Keys prints the SSH keys new droplets are created with.
func Keys(cmd *cobra.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	keys, err := env.Cloud.ListSSHKeys(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list ssh keys: %w", err)
	}

	if ok, err := app.Encode(cmd.OutOrStdout(), format, keys); ok {
		return err
	}

	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No SSH keys found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFINGERPRINT")
	fmt.Fprintln(w, "--\t----\t-----------")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\t%s\n", k.ID, k.Name, util.OrDash(k.Fingerprint))
	}
	return w.Flush()
}
