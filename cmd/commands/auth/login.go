package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/console"
	"nathanbeddoewebdev/dropproxy/internal/credentials"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels the prompt.
var ErrAborted = errors.New("login cancelled")

// interactive reports whether prompts can be shown. Tests override it.
var interactive = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Store credentials for a provider",
		Long: `Store the credentials of a cloud or DNS provider in the keychain.

Values not given as flags are prompted for. Single-token providers take
--token; key pair providers take --key and --secret.

Examples:
  dropproxy auth login digitalocean
  dropproxy auth login godaddy --key KEY --secret SECRET`,
		Args:         app.ExactArgs(1),
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("token", "", "API token for single-token providers")
	cmd.Flags().String("key", "", "API key or access key ID")
	cmd.Flags().String("secret", "", "API secret or secret access key")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	spec := credentials.Lookup(strings.TrimSpace(args[0]))
	if spec == nil {
		return fmt.Errorf("%w: unknown provider %q (valid: %s)", app.ErrUsage, args[0], strings.Join(providerNames(), ", "))
	}

	values := flagValues(cmd, spec)
	if err := prompt(spec, values); err != nil {
		return err
	}

	for i, k := range spec.Keys {
		if err := store.SetToken(spec.KeychainKey(k), values[i]); err != nil {
			return fmt.Errorf("failed to store %s: %w", k.Prompt, err)
		}
	}

	out := console.New(cmd.OutOrStdout())
	out.Successf("Saved credentials for %s", spec.DisplayName)
	return out.Err()
}

// flagValues returns one value per spec key, empty when not given.
func flagValues(cmd *cobra.Command, spec *credentials.CredentialSpec) []string {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return strings.TrimSpace(v)
	}
	values := make([]string, len(spec.Keys))
	if len(spec.Keys) == 1 {
		values[0] = get("token")
		return values
	}
	values[0] = get("key")
	values[1] = get("secret")
	return values
}

// prompt fills empty values with a form.
func prompt(spec *credentials.CredentialSpec, values []string) error {
	var fields []huh.Field
	var missing []string
	for i, k := range spec.Keys {
		if values[i] != "" {
			continue
		}
		missing = append(missing, k.Prompt)
		input := huh.NewInput().
			Title(spec.DisplayName + " " + k.Prompt).
			Value(&values[i]).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("%s cannot be empty", k.Prompt)
				}
				return nil
			})
		if k.Secret {
			input = input.EchoMode(huh.EchoModePassword)
		}
		fields = append(fields, input)
	}
	if len(fields) == 0 {
		return nil
	}
	if !interactive() {
		return fmt.Errorf("%w: missing %s (pass it as a flag when not running in a terminal)", app.ErrUsage, strings.Join(missing, ", "))
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithAccessible(true)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}
	return nil
}

func providerNames() []string {
	specs := credentials.All()
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Provider)
	}
	return names
}
