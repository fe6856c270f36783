package list

import (
	"fmt"
	"text/tabwriter"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/util"

	"github.com/spf13/cobra"
)

// DomainsCommand returns the "list domains" command.
func DomainsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "domains",
		Short:        "List domains in the DNS account",
		Args:         app.ExactArgs(0),
		RunE:         func(cmd *cobra.Command, args []string) error { return Domains(cmd) },
		SilenceUsage: true,
	}
}

// Domains prints every domain in the DNS account.
func Domains(cmd *cobra.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	domains, err := env.DNS.ListDomains(cmd.Context())
	if err != nil {
		return err
	}

	if ok, err := app.Encode(cmd.OutOrStdout(), format, domains); ok {
		return err
	}

	if len(domains) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No domains found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tSTATUS\tTLD\tEXPIRES")
	fmt.Fprintln(w, "------\t------\t---\t-------")
	for _, d := range domains {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.Name,
			d.Status,
			d.TLD,
			util.OrDash(d.ExpireDate),
		)
	}
	return w.Flush()
}
