package dns

import (
	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/dns/services"

	"github.com/spf13/cobra"
)

// NewCommand returns the "dns" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dns",
		Short: "Manage DNS records by hand",
		Long: `Show, create, update and delete DNS records with the configured DNS
provider. Record IDs are shown by "dropproxy list records <domain>".`,
	}

	cmd.AddCommand(GetCommand())
	cmd.AddCommand(CreateCommand())
	cmd.AddCommand(UpdateCommand())
	cmd.AddCommand(DeleteCommand())

	return cmd
}

// store is the keychain used when credentials come from it. Tests swap it.
var store credentials.Store = credentials.DefaultStore()

func newDNSService(cmd *cobra.Command) (*services.Service, error) {
	env, err := app.Load(app.OptionsFromFlags(cmd.Flags()), store)
	if err != nil {
		return nil, err
	}
	return env.DNS, nil
}
