package dns

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/console"
	dnsdomain "nathanbeddoewebdev/dropproxy/internal/dns/domain"

	"github.com/spf13/cobra"
)

// CreateCommand returns the "dns create" subcommand.
func CreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <domain>",
		Short: "Create a DNS record",
		Long: `Create a new DNS record for the given domain. The TTL defaults to the
dns-ttl config key.

Examples:
  dropproxy dns create example.com --type A --name www --content 203.0.113.9
  dropproxy dns create example.com --type CNAME --name docs --content app.example.com
  dropproxy dns create example.com --type MX --content mail.example.com --priority 10`,
		Args:         app.ExactArgs(1),
		RunE:         runCreate,
		SilenceUsage: true,
	}

	cmd.Flags().String("type", "", "Record type (A, AAAA, CNAME, MX, TXT, ...) [required]")
	cmd.Flags().String("name", "", "Subdomain name (empty or @ for the root domain)")
	cmd.Flags().String("content", "", "Record content [required]")
	cmd.Flags().Int("ttl", 0, "Time-to-live in seconds")
	cmd.Flags().Int("priority", 0, "Record priority (MX, SRV)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	recordType, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")
	content, _ := cmd.Flags().GetString("content")
	ttl, _ := cmd.Flags().GetInt("ttl")
	priority, _ := cmd.Flags().GetInt("priority")

	if recordType == "" || content == "" {
		return fmt.Errorf("%w: --type and --content are required", app.ErrUsage)
	}

	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}
	rec, err := svc.CreateRecord(cmd.Context(), args[0], dnsdomain.CreateRecordOpts{
		Name:     name,
		Type:     dnsdomain.RecordType(strings.ToUpper(recordType)),
		Content:  content,
		TTL:      ttl,
		Priority: priority,
	})
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}

	out := console.New(cmd.OutOrStdout())
	out.Successf("Created record %s on %s (%s %s -> %s)", rec.ID, svc.ProviderName(), rec.Type, rec.Name, rec.Content)
	return out.Err()
}
