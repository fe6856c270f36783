package dns

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/console"
	dnsdomain "nathanbeddoewebdev/dropproxy/internal/dns/domain"

	"github.com/spf13/cobra"
)

// UpdateCommand returns the "dns update" subcommand.
func UpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <domain> <id>",
		Short: "Update a DNS record",
		Long: `Update an existing DNS record by its ID. Passing --name or --type moves
the record, which some providers do by deleting and recreating it.

Examples:
  dropproxy dns update example.com A/app --content 198.51.100.7
  dropproxy dns update example.com A/app --content 198.51.100.7 --ttl 3600`,
		Args:         app.ExactArgs(2),
		RunE:         runUpdate,
		SilenceUsage: true,
	}

	cmd.Flags().String("type", "", "New record type")
	cmd.Flags().String("name", "", "New subdomain name")
	cmd.Flags().String("content", "", "New record content [required]")
	cmd.Flags().Int("ttl", 0, "New time-to-live in seconds")
	cmd.Flags().Int("priority", 0, "New record priority")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	domainName, recordID := args[0], args[1]
	recordType, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")
	content, _ := cmd.Flags().GetString("content")
	ttl, _ := cmd.Flags().GetInt("ttl")
	priority, _ := cmd.Flags().GetInt("priority")

	if content == "" {
		return fmt.Errorf("%w: --content is required", app.ErrUsage)
	}

	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}

	opts := dnsdomain.UpdateRecordOpts{
		Name:     name,
		Type:     dnsdomain.RecordType(strings.ToUpper(recordType)),
		Content:  content,
		TTL:      ttl,
		Priority: priority,
	}
	// Content is validated against the record's type, so look it up when
	// the type is not being changed.
	if opts.Type == "" {
		current, err := svc.GetRecord(cmd.Context(), domainName, recordID)
		if err != nil {
			return fmt.Errorf("failed to get record %s: %w", recordID, err)
		}
		opts.Type = current.Type
	}

	if err := svc.UpdateRecord(cmd.Context(), domainName, recordID, opts); err != nil {
		return fmt.Errorf("failed to update record %s: %w", recordID, err)
	}

	out := console.New(cmd.OutOrStdout())
	out.Successf("Updated record %s on %s", recordID, svc.ProviderName())
	return out.Err()
}
