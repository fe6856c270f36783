package dns

import (
	"fmt"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/console"

	"github.com/spf13/cobra"
)

// DeleteCommand returns the "dns delete" subcommand.
func DeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <domain> <id>",
		Short: "Delete a DNS record",
		Long: `Delete a DNS record by its ID.

Example:
  dropproxy dns delete example.com A/app`,
		Args:         app.ExactArgs(2),
		RunE:         runDelete,
		SilenceUsage: true,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}
	if err := svc.DeleteRecord(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", args[1], err)
	}

	out := console.New(cmd.OutOrStdout())
	out.Successf("Deleted record %s on %s", args[1], svc.ProviderName())
	return out.Err()
}
