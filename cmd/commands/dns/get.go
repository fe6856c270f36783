package dns

import (
	"fmt"
	"strconv"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/console"

	"github.com/spf13/cobra"
)

// GetCommand returns the "dns get" subcommand.
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <domain> <id>",
		Short: "Show a DNS record",
		Long: `Show a single DNS record by its ID.

Examples:
  dropproxy dns get example.com A/app
  dropproxy dns get example.com A/app -o json`,
		Args:         app.ExactArgs(2),
		RunE:         runGet,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", app.FormatTable, "Output format: table, json or yaml")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	if err := app.CheckFormat(format); err != nil {
		return err
	}

	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}
	rec, err := svc.GetRecord(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get record %s: %w", args[1], err)
	}

	if ok, err := app.Encode(cmd.OutOrStdout(), format, rec); ok {
		return err
	}

	out := console.New(cmd.OutOrStdout())
	out.Field("ID", rec.ID)
	out.Field("Domain", rec.Domain)
	out.Field("Name", rec.Name)
	out.Field("Type", string(rec.Type))
	out.Field("Content", rec.Content)
	out.Field("TTL", strconv.Itoa(rec.TTL))
	if rec.Priority > 0 {
		out.Field("Priority", strconv.Itoa(rec.Priority))
	}
	return out.Err()
}
