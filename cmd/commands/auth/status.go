package auth

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"nathanbeddoewebdev/dropproxy/internal/credentials"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which providers have stored credentials",
		Long: `Show which providers have credentials in the keychain.

Example:
  dropproxy auth status`,
		RunE:         runStatus,
		SilenceUsage: true,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tKIND\tSTATUS")
	fmt.Fprintln(w, "--------\t----\t------")
	for _, spec := range credentials.All() {
		kind := "cloud"
		if spec.DNS {
			kind = "dns"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", spec.Provider, kind, status(spec))
	}
	return w.Flush()
}

func status(spec credentials.CredentialSpec) string {
	found := 0
	for _, k := range spec.Keys {
		_, err := store.GetToken(spec.KeychainKey(k))
		switch {
		case err == nil:
			found++
		case errors.Is(err, credentials.ErrTokenNotFound):
		default:
			return fmt.Sprintf("error (%v)", err)
		}
	}
	switch found {
	case len(spec.Keys):
		return "logged in"
	case 0:
		return "not logged in"
	default:
		return "incomplete"
	}
}
