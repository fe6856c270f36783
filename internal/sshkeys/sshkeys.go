// Package sshkeys locates and loads the local SSH key used to reach new
// droplets.
package sshkeys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ErrPassphraseProtected is returned for encrypted private keys, which
// cannot be used unattended.
var ErrPassphraseProtected = errors.New("private key is passphrase protected")

// DefaultPath returns the default SSH private key path.
func DefaultPath() string {
	return "~/.ssh/id_rsa"
}

// ExpandHomePath expands a leading ~/ to the user's home directory.
func ExpandHomePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}

// LoadSigner reads and parses the private key at path (after ~ expansion).
func LoadSigner(path string) (ssh.Signer, error) {
	expanded, err := ExpandHomePath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key file: %w", err)
	}

	signer, err := ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}
	return signer, nil
}

// ParsePrivateKey parses PEM or OpenSSH private key bytes.
func ParsePrivateKey(data []byte) (ssh.Signer, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("SSH key file is empty")
	}
	if strings.HasPrefix(strings.TrimSpace(string(data)), "ssh-") {
		return nil, fmt.Errorf("file appears to contain a public key; please provide the private key")
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, ErrPassphraseProtected
		}
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return signer, nil
}

// Fingerprint returns the MD5 colon-hex fingerprint providers report for
// account keys (e.g. "3b:16:bf:...").
func Fingerprint(pub ssh.PublicKey) string {
	return ssh.FingerprintLegacyMD5(pub)
}
