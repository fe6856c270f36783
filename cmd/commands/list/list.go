package list

import (
	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/credentials"

	"github.com/spf13/cobra"
)

// NewCommand returns the "list" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List droplets, domains, DNS records or SSH keys",
		Long: `List resources in the configured provider accounts.

Examples:
  dropproxy list droplets
  dropproxy list domains -o json
  dropproxy list keys -o yaml
  dropproxy list records example.com`,
	}

	cmd.PersistentFlags().StringP("output", "o", app.FormatTable, "Output format: table, json or yaml")

	cmd.AddCommand(DropletsCommand())
	cmd.AddCommand(DomainsCommand())
	cmd.AddCommand(KeysCommand())
	cmd.AddCommand(RecordsCommand())

	return cmd
}

// store is the keychain used when credentials come from it. Tests swap it.
var store credentials.Store = credentials.DefaultStore()

func outputFormat(cmd *cobra.Command) (string, error) {
	format := app.FormatTable
	if f := cmd.Flags().Lookup("output"); f != nil {
		format = f.Value.String()
	}
	return format, app.CheckFormat(format)
}

func loadEnv(cmd *cobra.Command) (*app.Env, error) {
	return app.Load(app.OptionsFromFlags(cmd.Flags()), store)
}
