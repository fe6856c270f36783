package credentials

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/dropproxy/internal/util"
)

// CredentialKey describes a single credential field for a provider.
type CredentialKey struct {
	// Key is the suffix appended to the provider name to form the keychain key.
	// Single-token providers leave it empty.
	Key string

	// Prompt is the label shown when asking the user for the value.
	Prompt string

	// Secret controls whether the input is masked.
	Secret bool
}

// CredentialSpec describes the credential scheme of one provider.
type CredentialSpec struct {
	Provider    string
	DisplayName string

	// DNS is true for DNS providers, whose two keys fill the DNS pair of
	// Credentials. Cloud providers have a single token.
	DNS bool

	Keys []CredentialKey
}

// KeychainKey returns "<provider>" for single-token providers and
// "<provider>-<key>" otherwise.
func (s CredentialSpec) KeychainKey(k CredentialKey) string {
	if k.Key == "" {
		return s.Provider
	}
	return s.Provider + "-" + k.Key
}

var knownSpecs = []CredentialSpec{
	{
		Provider:    "digitalocean",
		DisplayName: "DigitalOcean",
		Keys: []CredentialKey{
			{Key: "", Prompt: "Personal Access Token", Secret: true},
		},
	},
	{
		Provider:    "hetzner",
		DisplayName: "Hetzner",
		Keys: []CredentialKey{
			{Key: "", Prompt: "API Token", Secret: true},
		},
	},
	{
		Provider:    "godaddy",
		DisplayName: "GoDaddy",
		DNS:         true,
		Keys: []CredentialKey{
			{Key: "apikey", Prompt: "API Key", Secret: false},
			{Key: "secret", Prompt: "API Secret", Secret: true},
		},
	},
	{
		Provider:    "route53",
		DisplayName: "Amazon Route 53",
		DNS:         true,
		Keys: []CredentialKey{
			{Key: "accesskeyid", Prompt: "Access Key ID", Secret: false},
			{Key: "secretaccesskey", Prompt: "Secret Access Key", Secret: true},
		},
	},
}

// Lookup returns the spec for the given provider name, or nil.
func Lookup(providerName string) *CredentialSpec {
	normalized := util.NormalizeKey(providerName)
	for i := range knownSpecs {
		if knownSpecs[i].Provider == normalized {
			return &knownSpecs[i]
		}
	}
	return nil
}

// All returns a copy of every known spec.
func All() []CredentialSpec {
	out := make([]CredentialSpec, len(knownSpecs))
	copy(out, knownSpecs)
	return out
}

// LoadStore assembles Credentials for the given cloud and DNS provider from
// the keychain.
func LoadStore(store Store, cloudProvider, dnsProvider string) (Credentials, error) {
	cloudSpec := Lookup(cloudProvider)
	if cloudSpec == nil || cloudSpec.DNS {
		return Credentials{}, fmt.Errorf("credentials: %q is not a known cloud provider", cloudProvider)
	}
	dnsSpec := Lookup(dnsProvider)
	if dnsSpec == nil || !dnsSpec.DNS {
		return Credentials{}, fmt.Errorf("credentials: %q is not a known DNS provider", dnsProvider)
	}

	token, err := get(store, *cloudSpec, cloudSpec.Keys[0])
	if err != nil {
		return Credentials{}, err
	}
	public, err := get(store, *dnsSpec, dnsSpec.Keys[0])
	if err != nil {
		return Credentials{}, err
	}
	secret, err := get(store, *dnsSpec, dnsSpec.Keys[1])
	if err != nil {
		return Credentials{}, err
	}

	creds := Credentials{DNSPublicKey: public, DNSSecretKey: secret, CloudToken: token}
	return creds, creds.Validate()
}

func get(store Store, spec CredentialSpec, k CredentialKey) (string, error) {
	key := spec.KeychainKey(k)
	v, err := store.GetToken(key)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return "", fmt.Errorf("%w: %s has no stored %s (run 'dropproxy auth login %s')", ErrMissingCredentials, spec.DisplayName, k.Prompt, spec.Provider)
		}
		return "", fmt.Errorf("credentials: keychain lookup for %s failed: %w", key, err)
	}
	return v, nil
}
