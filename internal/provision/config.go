package provision

import (
	"fmt"
	"strings"
	"time"
)

// RemoteFailurePolicy decides what a remote session failure does to the run.
type RemoteFailurePolicy string

const (
	// PolicyStrict aborts the run on a remote session failure.
	PolicyStrict RemoteFailurePolicy = "strict"
	// PolicyBestEffort reports the failure and carries on to the DNS step.
	PolicyBestEffort RemoteFailurePolicy = "best-effort"
)

// ParsePolicy parses a policy name. The empty string is PolicyStrict.
func ParsePolicy(s string) (RemoteFailurePolicy, error) {
	switch p := RemoteFailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyStrict, nil
	case PolicyStrict, PolicyBestEffort:
		return p, nil
	default:
		return "", fmt.Errorf("unknown remote failure policy %q (want %s or %s)", s, PolicyStrict, PolicyBestEffort)
	}
}

// Config holds the tunables of a provisioning run.
type Config struct {
	// Regions is the allow-list a region is picked from at random.
	Regions []string
	Image   string
	Size    string
	Backups bool

	// DropletTag, when set, is attached to created droplets and limits
	// replacement to droplets that carry it.
	DropletTag string

	SSHUser    string
	SSHKeyPath string

	// KeyFingerprint is the MD5 fingerprint of the local key. When set and
	// no account key matches it, a warning is printed before creating.
	KeyFingerprint string

	ConnectTimeout time.Duration

	PollInterval    time.Duration
	MaxPollAttempts int

	// RemoteAttempts bounds connection attempts to a host that is not yet
	// reachable. RemoteBackoff is the first delay between them.
	RemoteAttempts int
	RemoteBackoff  time.Duration

	// RemoteDir is where the nginx file is uploaded before being copied
	// into place.
	RemoteDir string

	DNSTTL int

	RemoteFailurePolicy RemoteFailurePolicy
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Regions:             []string{"ams3", "fra1"},
		Image:               "ubuntu-20-04-x64",
		Size:                "s-1vcpu-1gb",
		SSHUser:             "root",
		SSHKeyPath:          "~/.ssh/id_rsa",
		ConnectTimeout:      30 * time.Second,
		PollInterval:        3 * time.Second,
		MaxPollAttempts:     100,
		RemoteAttempts:      5,
		RemoteBackoff:       5 * time.Second,
		RemoteDir:           "/home",
		DNSTTL:              600,
		RemoteFailurePolicy: PolicyStrict,
	}
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	if len(c.Regions) == 0 {
		return fmt.Errorf("at least one region is required")
	}
	if c.Image == "" || c.Size == "" {
		return fmt.Errorf("image and size are required")
	}
	if c.MaxPollAttempts < 1 {
		return fmt.Errorf("max poll attempts must be positive, got %d", c.MaxPollAttempts)
	}
	if c.RemoteAttempts < 1 {
		return fmt.Errorf("remote attempts must be positive, got %d", c.RemoteAttempts)
	}
	if c.DNSTTL < 0 {
		return fmt.Errorf("dns ttl must not be negative, got %d", c.DNSTTL)
	}
	if _, err := ParsePolicy(string(c.RemoteFailurePolicy)); err != nil {
		return err
	}
	return nil
}
