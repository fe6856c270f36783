package config

import (
	"fmt"

	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/provision"
)

// CloudProviderName returns the configured cloud provider or the default.
func (c *Config) CloudProviderName() string {
	return pick(c.CloudProvider, DefaultCloudProvider)
}

// DNSProviderName returns the configured DNS provider or the default.
func (c *Config) DNSProviderName() string {
	return pick(c.DNSProvider, DefaultDNSProvider)
}

// CredentialsSourceName returns the configured credential source or
// SourceFile.
func (c *Config) CredentialsSourceName() string {
	return pick(c.CredentialsSource, SourceFile)
}

// CredentialsPath returns the configured credential file or
// credentials.DefaultFile.
func (c *Config) CredentialsPath() string {
	return pick(c.CredentialsFile, credentials.DefaultFile)
}

// Workflow overlays the configured values on provision.DefaultConfig.
func (c *Config) Workflow() (provision.Config, error) {
	wf := provision.DefaultConfig()
	if len(c.Regions) > 0 {
		wf.Regions = append([]string(nil), c.Regions...)
	}
	wf.Image = pick(c.Image, wf.Image)
	wf.Size = pick(c.Size, wf.Size)
	wf.SSHUser = pick(c.SSHUser, wf.SSHUser)
	wf.SSHKeyPath = pick(c.SSHKey, wf.SSHKeyPath)
	if c.DNSTTL > 0 {
		wf.DNSTTL = c.DNSTTL
	}
	wf.DropletTag = c.DropletTag

	policy, err := provision.ParsePolicy(c.RemoteFailurePolicy)
	if err != nil {
		return provision.Config{}, fmt.Errorf("config: %w", err)
	}
	wf.RemoteFailurePolicy = policy
	return wf, nil
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
