package config

import (
	"fmt"
	"strconv"
	"strings"

	"nathanbeddoewebdev/dropproxy/internal/provision"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "cloud-provider").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set validates and applies a value for this key to the given Config
	// (in memory only; the caller is responsible for calling Save). An
	// empty value resets the key to its default.
	Set func(cfg *Config, value string) error
}

func stringKey(name, description string, field func(cfg *Config) *string) KeySpec {
	return KeySpec{
		Name:        name,
		Description: description,
		Get:         func(cfg *Config) string { return *field(cfg) },
		Set: func(cfg *Config, v string) error {
			*field(cfg) = strings.TrimSpace(v)
			return nil
		},
	}
}

func oneOf(value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid value %q (want one of %s)", value, strings.Join(allowed, ", "))
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	stringKey("cloud-provider", "Cloud provider droplets are created with (digitalocean, hetzner)",
		func(cfg *Config) *string { return &cfg.CloudProvider }),
	stringKey("dns-provider", "DNS provider holding the domain (godaddy, route53)",
		func(cfg *Config) *string { return &cfg.DNSProvider }),
	{
		Name:        "credentials-source",
		Description: "Where API credentials are read from (file, keyring)",
		Get:         func(cfg *Config) string { return cfg.CredentialsSource },
		Set: func(cfg *Config, v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			if err := oneOf(v, SourceFile, SourceKeyring); err != nil {
				return err
			}
			cfg.CredentialsSource = v
			return nil
		},
	},
	stringKey("credentials-file", "Credential file used when credentials-source is file",
		func(cfg *Config) *string { return &cfg.CredentialsFile }),
	{
		Name:        "regions",
		Description: "Comma-separated regions a droplet region is picked from",
		Get:         func(cfg *Config) string { return strings.Join(cfg.Regions, ",") },
		Set: func(cfg *Config, v string) error {
			var regions []string
			for _, r := range strings.Split(v, ",") {
				if r = strings.TrimSpace(r); r != "" {
					regions = append(regions, r)
				}
			}
			cfg.Regions = regions
			return nil
		},
	},
	stringKey("image", "Droplet image slug", func(cfg *Config) *string { return &cfg.Image }),
	stringKey("size", "Droplet size slug", func(cfg *Config) *string { return &cfg.Size }),
	stringKey("ssh-user", "User the droplet is configured as", func(cfg *Config) *string { return &cfg.SSHUser }),
	stringKey("ssh-key", "Private key used to reach the droplet", func(cfg *Config) *string { return &cfg.SSHKey }),
	{
		Name:        "dns-ttl",
		Description: "TTL in seconds of the A record",
		Get: func(cfg *Config) string {
			if cfg.DNSTTL == 0 {
				return ""
			}
			return strconv.Itoa(cfg.DNSTTL)
		},
		Set: func(cfg *Config, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				cfg.DNSTTL = 0
				return nil
			}
			ttl, err := strconv.Atoi(v)
			if err != nil || ttl <= 0 {
				return fmt.Errorf("invalid TTL %q: must be a positive number of seconds", v)
			}
			cfg.DNSTTL = ttl
			return nil
		},
	},
	{
		Name:        "remote-failure-policy",
		Description: "What an SSH session failure does (strict aborts, best-effort continues to DNS)",
		Get:         func(cfg *Config) string { return cfg.RemoteFailurePolicy },
		Set: func(cfg *Config, v string) error {
			if strings.TrimSpace(v) == "" {
				cfg.RemoteFailurePolicy = ""
				return nil
			}
			policy, err := provision.ParsePolicy(v)
			if err != nil {
				return err
			}
			cfg.RemoteFailurePolicy = string(policy)
			return nil
		},
	},
	stringKey("droplet-tag", "Tag put on created droplets; only tagged droplets are replaced",
		func(cfg *Config) *string { return &cfg.DropletTag }),
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
