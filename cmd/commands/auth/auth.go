package auth

import (
	"nathanbeddoewebdev/dropproxy/internal/credentials"

	"github.com/spf13/cobra"
)

// store is the keychain the commands read and write. Tests swap it.
var store credentials.Store = credentials.DefaultStore()

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider credentials in the keychain",
		Long: `Manage provider credentials stored in the OS keychain.

Keychain credentials are used when the credentials-source setting is
"keyring":

  dropproxy config set credentials-source keyring`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(StatusCommand())

	return cmd
}
