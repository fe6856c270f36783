package domain

import "time"

// Droplet represents a cloud virtual machine across providers.
type Droplet struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Status      string    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	PublicIPv4  string    `json:"public_ipv4,omitempty" yaml:"public_ipv4,omitempty"`
	PublicIPv6  string    `json:"public_ipv6,omitempty" yaml:"public_ipv6,omitempty"`
	PrivateIPv4 string    `json:"private_ipv4,omitempty" yaml:"private_ipv4,omitempty"`
	Region      string    `json:"region" yaml:"region"`
	Size        string    `json:"size" yaml:"size"`
	Image       string    `json:"image,omitempty" yaml:"image,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Provider    string    `json:"provider" yaml:"provider"`
}

// HasTag reports whether the droplet carries the given tag.
func (d Droplet) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CreateDropletOpts holds the parameters for creating a new droplet.
type CreateDropletOpts struct {
	// Name is the droplet name. Required.
	Name string

	// Region is the provider region or location slug (e.g. "ams3").
	Region string

	// Size is the provider size or server type slug (e.g. "s-1vcpu-1gb").
	Size string

	// Image is the image slug (e.g. "ubuntu-20-04-x64").
	Image string

	// SSHKeyIDs lists the account key IDs to install on the droplet.
	SSHKeyIDs []string

	// Backups enables provider-side backups when supported.
	Backups bool

	// Tags are attached to the droplet. Providers without tags map them
	// to labels.
	Tags []string
}

// SSHKey is a public key registered with the provider account.
type SSHKey struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}
