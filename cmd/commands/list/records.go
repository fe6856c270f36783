package list

import (
	"fmt"
	"text/tabwriter"

	"nathanbeddoewebdev/dropproxy/internal/app"

	"github.com/spf13/cobra"
)

// RecordsCommand returns the "list records" command.
func RecordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "records <domain>",
		Short: "List DNS records of a domain",
		Long: `List the DNS records of a domain in the DNS account.

Example:
  dropproxy list records example.com`,
		Args: app.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Records(cmd, args[0])
		},
		SilenceUsage: true,
	}
}

// Records prints the records of domainName.
func Records(cmd *cobra.Command, domainName string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	records, err := env.DNS.ListRecords(cmd.Context(), domainName)
	if err != nil {
		return err
	}

	if ok, err := app.Encode(cmd.OutOrStdout(), format, records); ok {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No records found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCONTENT\tTTL")
	fmt.Fprintln(w, "--\t----\t----\t-------\t---")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.Name, r.Type, r.Content, r.TTL)
	}
	return w.Flush()
}
