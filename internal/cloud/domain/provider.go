package domain

import "context"

// Provider is the interface that cloud providers must implement.
// It covers the droplet lifecycle the provisioning workflow needs.
type Provider interface {
	// GetDisplayName returns the human-readable provider name (e.g. "DigitalOcean").
	GetDisplayName() string

	// ListDroplets returns every droplet in the account.
	ListDroplets(ctx context.Context) ([]Droplet, error)

	// CreateDroplet creates a droplet and returns it as first reported by
	// the provider. Network addresses are usually not assigned yet.
	CreateDroplet(ctx context.Context, opts CreateDropletOpts) (*Droplet, error)

	// DeleteDroplet issues a destroy for the droplet. It does not wait
	// for the destroy to finish.
	DeleteDroplet(ctx context.Context, id string) error

	// DropletActions returns the actions recorded for a droplet.
	DropletActions(ctx context.Context, dropletID string) ([]ActionStatus, error)

	// GetAction reloads a single action by ID.
	GetAction(ctx context.Context, id string) (*ActionStatus, error)

	// ListSSHKeys returns the SSH keys registered with the account.
	ListSSHKeys(ctx context.Context) ([]SSHKey, error)
}
