package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"nathanbeddoewebdev/dropproxy/internal/cloud/domain"
	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/retry"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

const requestTimeout = 30 * time.Second

// Compile-time check that HetznerProvider satisfies domain.Provider.
var _ domain.Provider = (*HetznerProvider)(nil)

// HetznerProvider implements domain.Provider using the Hetzner Cloud API.
//
// Hetzner has no per-server action listing, so the actions returned by a
// create are remembered and handed back by DropletActions.
type HetznerProvider struct {
	client *hcloud.Client

	mu      sync.Mutex
	pending map[string][]domain.ActionStatus
}

// NewHetznerProvider creates a HetznerProvider with the given hcloud client options.
// Default options (application name) are applied first; callers can override them.
func NewHetznerProvider(opts ...hcloud.ClientOption) *HetznerProvider {
	defaults := []hcloud.ClientOption{
		hcloud.WithApplication("dropproxy", "0.1.0"),
	}
	allOpts := append(defaults, opts...)
	return &HetznerProvider{
		client:  hcloud.NewClient(allOpts...),
		pending: make(map[string][]domain.ActionStatus),
	}
}

// RegisterHetzner registers the Hetzner provider factory with the cloud registry.
func RegisterHetzner() {
	Register("hetzner", func(creds credentials.Credentials) (domain.Provider, error) {
		if creds.CloudToken == "" {
			return nil, fmt.Errorf("hetzner auth: token is empty: %w", domain.ErrUnauthorized)
		}
		return NewHetznerProvider(hcloud.WithToken(creds.CloudToken)), nil
	})
}

func (h *HetznerProvider) GetDisplayName() string {
	return "Hetzner"
}

func (h *HetznerProvider) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	cfg := retry.DefaultConfig()
	cfg.Op = "hetzner " + op
	return retry.Do(ctx, cfg, isHetznerRetryable, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return fn(reqCtx)
	})
}

// ListDroplets retrieves all servers from the Hetzner Cloud API.
func (h *HetznerProvider) ListDroplets(ctx context.Context) ([]domain.Droplet, error) {
	var hzServers []*hcloud.Server
	err := h.read(ctx, "list servers", func(ctx context.Context) error {
		var apiErr error
		hzServers, apiErr = h.client.Server.All(ctx)
		return apiErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", mapHetznerError(err))
	}

	droplets := make([]domain.Droplet, 0, len(hzServers))
	for _, s := range hzServers {
		droplets = append(droplets, toHetznerDroplet(s))
	}
	return droplets, nil
}

// CreateDroplet creates a server. Tags become labels with empty values.
func (h *HetznerProvider) CreateDroplet(ctx context.Context, opts domain.CreateDropletOpts) (*domain.Droplet, error) {
	hcloudOpts := hcloud.ServerCreateOpts{
		Name:       opts.Name,
		ServerType: &hcloud.ServerType{Name: opts.Size},
		Image:      &hcloud.Image{Name: opts.Image},
		Labels:     make(map[string]string, len(opts.Tags)),
	}
	if opts.Region != "" {
		hcloudOpts.Location = &hcloud.Location{Name: opts.Region}
	}
	for _, tag := range opts.Tags {
		hcloudOpts.Labels[tag] = ""
	}
	for _, id := range opts.SSHKeyIDs {
		numericID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SSH key ID %q: %w", id, err)
		}
		hcloudOpts.SSHKeys = append(hcloudOpts.SSHKeys, &hcloud.SSHKey{ID: numericID})
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	result, _, err := h.client.Server.Create(reqCtx, hcloudOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", mapHetznerError(err))
	}

	droplet := toHetznerDroplet(result.Server)

	var actions []domain.ActionStatus
	if result.Action != nil {
		actions = append(actions, toHetznerAction(result.Action))
	}
	for _, a := range result.NextActions {
		actions = append(actions, toHetznerAction(a))
	}
	h.mu.Lock()
	h.pending[droplet.ID] = actions
	h.mu.Unlock()

	return &droplet, nil
}

// DeleteDroplet removes a server by its numeric ID.
func (h *HetznerProvider) DeleteDroplet(ctx context.Context, id string) error {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid server ID %q: %w", id, err)
	}

	err = h.read(ctx, "delete server", func(ctx context.Context) error {
		_, _, apiErr := h.client.Server.DeleteWithResult(ctx, &hcloud.Server{ID: numericID})
		return apiErr
	})
	if err != nil {
		return fmt.Errorf("failed to delete server %s: %w", id, mapHetznerError(err))
	}
	return nil
}

// DropletActions returns the actions started by CreateDroplet for the
// server, or none for servers created elsewhere.
func (h *HetznerProvider) DropletActions(_ context.Context, dropletID string) ([]domain.ActionStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	actions := h.pending[dropletID]
	out := make([]domain.ActionStatus, len(actions))
	copy(out, actions)
	return out, nil
}

// GetAction reloads an action by ID.
func (h *HetznerProvider) GetAction(ctx context.Context, id string) (*domain.ActionStatus, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid action ID %q: %w", id, err)
	}

	var action *hcloud.Action
	err = h.read(ctx, "get action", func(ctx context.Context) error {
		var apiErr error
		action, _, apiErr = h.client.Action.GetByID(ctx, numericID)
		return apiErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get action %s: %w", id, mapHetznerError(err))
	}
	if action == nil {
		return nil, fmt.Errorf("action %s: %w", id, domain.ErrNotFound)
	}

	status := toHetznerAction(action)
	return &status, nil
}

// ListSSHKeys returns all SSH keys in the project.
func (h *HetznerProvider) ListSSHKeys(ctx context.Context) ([]domain.SSHKey, error) {
	var hzKeys []*hcloud.SSHKey
	err := h.read(ctx, "list ssh keys", func(ctx context.Context) error {
		var apiErr error
		hzKeys, apiErr = h.client.SSHKey.All(ctx)
		return apiErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list SSH keys: %w", mapHetznerError(err))
	}

	keys := make([]domain.SSHKey, 0, len(hzKeys))
	for _, k := range hzKeys {
		keys = append(keys, domain.SSHKey{
			ID:          strconv.FormatInt(k.ID, 10),
			Name:        k.Name,
			Fingerprint: k.Fingerprint,
		})
	}
	return keys, nil
}

func isHetznerRetryable(err error) bool {
	if hcloud.IsError(err, hcloud.ErrorCodeServiceError) || hcloud.IsError(err, hcloud.ErrorCodeTimeout) {
		return true
	}
	return retry.IsRetryable(err)
}

func mapHetznerError(err error) error {
	switch {
	case err == nil:
		return nil
	case hcloud.IsError(err, hcloud.ErrorCodeUnauthorized) || hcloud.IsError(err, hcloud.ErrorCodeForbidden):
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	case hcloud.IsError(err, hcloud.ErrorCodeNotFound):
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case hcloud.IsError(err, hcloud.ErrorCodeRateLimitExceeded):
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	case hcloud.IsError(err, hcloud.ErrorCodeConflict) || hcloud.IsError(err, hcloud.ErrorCodeUniquenessError):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", retry.ErrTransient, err)
	}
	return err
}

// toHetznerDroplet converts an hcloud.Server to a domain.Droplet.
func toHetznerDroplet(s *hcloud.Server) domain.Droplet {
	droplet := domain.Droplet{
		ID:        strconv.FormatInt(s.ID, 10),
		Name:      s.Name,
		Status:    string(s.Status),
		CreatedAt: s.Created,
		Provider:  "hetzner",
	}

	if !s.PublicNet.IPv4.IsUnspecified() {
		droplet.PublicIPv4 = s.PublicNet.IPv4.IP.String()
	}
	if !s.PublicNet.IPv6.IsUnspecified() {
		droplet.PublicIPv6 = s.PublicNet.IPv6.IP.String()
	}
	if len(s.PrivateNet) > 0 && s.PrivateNet[0].IP != nil {
		droplet.PrivateIPv4 = s.PrivateNet[0].IP.String()
	}
	if s.ServerType != nil {
		droplet.Size = s.ServerType.Name
	}
	if s.Image != nil {
		droplet.Image = s.Image.Name
	}
	if s.Location != nil {
		droplet.Region = s.Location.Name
	}
	for label := range s.Labels {
		droplet.Tags = append(droplet.Tags, label)
	}
	sort.Strings(droplet.Tags)

	return droplet
}

// toHetznerAction maps Hetzner's running/success/error onto the normalised
// action statuses.
func toHetznerAction(a *hcloud.Action) domain.ActionStatus {
	status := domain.ActionStatus{
		ID:           strconv.FormatInt(a.ID, 10),
		Type:         a.Command,
		Progress:     a.Progress,
		ErrorMessage: a.ErrorMessage,
	}
	switch a.Status {
	case hcloud.ActionStatusSuccess:
		status.Status = domain.ActionStatusCompleted
	case hcloud.ActionStatusError:
		status.Status = domain.ActionStatusErrored
	default:
		status.Status = domain.ActionStatusInProgress
	}
	return status
}
