package config

import (
	"fmt"
	"slices"
	"strings"

	"nathanbeddoewebdev/dropproxy/internal/app"
	cloudproviders "nathanbeddoewebdev/dropproxy/internal/cloud/providers"
	"nathanbeddoewebdev/dropproxy/internal/config"
	dnsproviders "nathanbeddoewebdev/dropproxy/internal/dns/providers"
	"nathanbeddoewebdev/dropproxy/internal/util"

	"github.com/spf13/cobra"
)

// SetCommand returns the "config set" command.
func SetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Set a configuration value",
		Long: "Set a persistent configuration value. Omitting the value resets the key.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  dropproxy config set regions ams3,fra1,lon1\n" +
			"  dropproxy config set dns-provider route53\n" +
			"  dropproxy config set droplet-tag",
		Args:         app.RangeArgs(1, 2),
		RunE:         runSet,
		SilenceUsage: true,
	}

	return cmd
}

// providerKeys are normalised and checked against a provider registry.
var providerKeys = map[string]func() []string{
	"cloud-provider": cloudproviders.List,
	"dns-provider":   dnsproviders.List,
}

func runSet(cmd *cobra.Command, args []string) error {
	spec := config.Lookup(util.NormalizeKey(args[0]))
	if spec == nil {
		return fmt.Errorf("%w: unknown configuration key %q (valid: %s)", app.ErrUsage, args[0], strings.Join(config.KeyNames(), ", "))
	}

	var value string
	if len(args) == 2 {
		value = strings.TrimSpace(args[1])
	}

	if list, ok := providerKeys[spec.Name]; ok && value != "" {
		value = util.NormalizeKey(value)
		if known := list(); !slices.Contains(known, value) {
			return fmt.Errorf("%w: unknown provider %q (registered: %s)", app.ErrUsage, args[1], strings.Join(known, ", "))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := spec.Set(cfg, value); err != nil {
		return fmt.Errorf("%w: %s: %w", app.ErrUsage, spec.Name, err)
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	if value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s reset to default\n", spec.Name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s set to %q\n", spec.Name, spec.Get(cfg))
	}
	return nil
}
