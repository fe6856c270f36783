// Package credentials loads the API credentials the provisioning workflow
// needs, either from a KEY=VALUE file or from the OS keychain.
package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Keys of the credential file.
const (
	KeyDNSPublic = "GDD_PUBLIC_KEY"
	KeyDNSSecret = "GDD_SECRET_KEY"
	KeyCloud     = "DO_TOKEN"
)

// DefaultFile is the credential file name used when none is configured.
const DefaultFile = "keys.txt"

var (
	// ErrMissingCredentials is returned when the credential file had to be
	// created, or when a required credential is absent.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrPlaceholderCredential is returned when a value still equals its key.
	ErrPlaceholderCredential = errors.New("placeholder credential")

	// ErrMalformedCredentials is returned for a line that is not KEY=VALUE.
	ErrMalformedCredentials = errors.New("malformed credential file")
)

// fileKeys is the order keys are written to a fresh credential file.
var fileKeys = []string{KeyDNSPublic, KeyDNSSecret, KeyCloud}

// Credentials holds the secrets for one cloud provider and one DNS provider.
// For GoDaddy the DNS pair is the API key and secret, for Route 53 it is the
// access key ID and secret access key.
type Credentials struct {
	DNSPublicKey string
	DNSSecretKey string
	CloudToken   string
}

// Validate reports ErrMissingCredentials when any field is empty.
func (c Credentials) Validate() error {
	var missing []string
	if c.DNSPublicKey == "" {
		missing = append(missing, KeyDNSPublic)
	}
	if c.DNSSecretKey == "" {
		missing = append(missing, KeyDNSSecret)
	}
	if c.CloudToken == "" {
		missing = append(missing, KeyCloud)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// LoadFile reads credentials from path. A missing file is created with
// placeholder values and ErrMissingCredentials is returned so the operator
// can fill it in.
func LoadFile(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if werr := writePlaceholders(path); werr != nil {
				return Credentials{}, werr
			}
			return Credentials{}, fmt.Errorf("%w: %s created with placeholder values, edit it and run again", ErrMissingCredentials, path)
		}
		return Credentials{}, fmt.Errorf("credentials: failed to open %s: %w", path, err)
	}
	defer f.Close()

	values := make(map[string]string, len(fileKeys))
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Credentials{}, fmt.Errorf("%w: %s line %d has no '='", ErrMalformedCredentials, path, lineNo)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == value {
			return Credentials{}, fmt.Errorf("%w: set a real value for %s in %s", ErrPlaceholderCredential, key, path)
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, fmt.Errorf("credentials: failed to read %s: %w", path, err)
	}

	creds := Credentials{
		DNSPublicKey: values[KeyDNSPublic],
		DNSSecretKey: values[KeyDNSSecret],
		CloudToken:   values[KeyCloud],
	}
	if err := creds.Validate(); err != nil {
		return Credentials{}, fmt.Errorf("%s: %w", path, err)
	}
	return creds, nil
}

func writePlaceholders(path string) error {
	var b strings.Builder
	for _, k := range fileKeys {
		fmt.Fprintf(&b, "%s=%s\n", k, k)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("credentials: failed to create %s: %w", path, err)
	}
	return nil
}
