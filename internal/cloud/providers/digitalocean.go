package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"nathanbeddoewebdev/dropproxy/internal/cloud/domain"
	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/retry"

	"github.com/digitalocean/godo"
	log "github.com/sirupsen/logrus"
)

const (
	doPerPage        = 200
	doRequestTimeout = 30 * time.Second
)

// Compile-time check that DigitalOceanProvider satisfies domain.Provider.
var _ domain.Provider = (*DigitalOceanProvider)(nil)

// DigitalOceanProvider implements domain.Provider using the DigitalOcean API v2.
type DigitalOceanProvider struct {
	client *godo.Client
	retry  retry.Config
}

// NewDigitalOceanProvider wraps an existing godo client. Tests point the
// client at an httptest server with godo.SetBaseURL.
func NewDigitalOceanProvider(client *godo.Client) *DigitalOceanProvider {
	return &DigitalOceanProvider{client: client, retry: retry.DefaultConfig()}
}

// RegisterDigitalOcean registers the DigitalOcean provider factory.
func RegisterDigitalOcean() {
	Register("digitalocean", func(creds credentials.Credentials) (domain.Provider, error) {
		if creds.CloudToken == "" {
			return nil, fmt.Errorf("digitalocean auth: token is empty: %w", domain.ErrUnauthorized)
		}
		return NewDigitalOceanProvider(godo.NewFromToken(creds.CloudToken)), nil
	})
}

func (p *DigitalOceanProvider) GetDisplayName() string {
	return "DigitalOcean"
}

// read runs an idempotent API call with the provider's retry policy.
func (p *DigitalOceanProvider) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	cfg := p.retry
	cfg.Op = "digitalocean " + op
	return retry.Do(ctx, cfg, nil, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, doRequestTimeout)
		defer cancel()
		return mapDOError(fn(reqCtx))
	})
}

// ListDroplets pages through every droplet in the account.
func (p *DigitalOceanProvider) ListDroplets(ctx context.Context) ([]domain.Droplet, error) {
	var droplets []domain.Droplet
	opt := &godo.ListOptions{Page: 1, PerPage: doPerPage}

	for {
		var page []godo.Droplet
		var resp *godo.Response
		err := p.read(ctx, "list droplets", func(ctx context.Context) error {
			var apiErr error
			page, resp, apiErr = p.client.Droplets.List(ctx, opt)
			return apiErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list droplets: %w", err)
		}

		for _, d := range page {
			droplets = append(droplets, toDomainDroplet(d))
		}

		next, done, err := nextPage(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to list droplets: %w", err)
		}
		if done {
			break
		}
		opt.Page = next
	}

	log.Debugf("digitalocean: listed %d droplets", len(droplets))
	return droplets, nil
}

// CreateDroplet creates a droplet. It is not retried: a repeated create
// after a lost response would leave two droplets with the same name.
func (p *DigitalOceanProvider) CreateDroplet(ctx context.Context, opts domain.CreateDropletOpts) (*domain.Droplet, error) {
	req := &godo.DropletCreateRequest{
		Name:    opts.Name,
		Region:  opts.Region,
		Size:    opts.Size,
		Image:   godo.DropletCreateImage{Slug: opts.Image},
		Backups: opts.Backups,
		Tags:    opts.Tags,
	}

	for _, id := range opts.SSHKeyIDs {
		numericID, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("invalid SSH key ID %q: %w", id, err)
		}
		req.SSHKeys = append(req.SSHKeys, godo.DropletCreateSSHKey{ID: numericID})
	}

	reqCtx, cancel := context.WithTimeout(ctx, doRequestTimeout)
	defer cancel()

	d, _, err := p.client.Droplets.Create(reqCtx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create droplet: %w", mapDOError(err))
	}

	droplet := toDomainDroplet(*d)
	log.WithFields(log.Fields{"id": droplet.ID, "region": opts.Region}).Debug("digitalocean: droplet created")
	return &droplet, nil
}

// DeleteDroplet issues a destroy for the droplet with the given numeric ID.
func (p *DigitalOceanProvider) DeleteDroplet(ctx context.Context, id string) error {
	numericID, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("invalid droplet ID %q: %w", id, err)
	}

	err = p.read(ctx, "delete droplet", func(ctx context.Context) error {
		_, apiErr := p.client.Droplets.Delete(ctx, numericID)
		return apiErr
	})
	if err != nil {
		return fmt.Errorf("failed to delete droplet %s: %w", id, err)
	}
	return nil
}

// DropletActions returns every action recorded for the droplet.
func (p *DigitalOceanProvider) DropletActions(ctx context.Context, dropletID string) ([]domain.ActionStatus, error) {
	numericID, err := strconv.Atoi(dropletID)
	if err != nil {
		return nil, fmt.Errorf("invalid droplet ID %q: %w", dropletID, err)
	}

	var actions []domain.ActionStatus
	opt := &godo.ListOptions{Page: 1, PerPage: doPerPage}
	for {
		var page []godo.Action
		var resp *godo.Response
		err := p.read(ctx, "list droplet actions", func(ctx context.Context) error {
			var apiErr error
			page, resp, apiErr = p.client.Droplets.Actions(ctx, numericID, opt)
			return apiErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list actions for droplet %s: %w", dropletID, err)
		}

		for _, a := range page {
			actions = append(actions, toDomainAction(a))
		}

		next, done, err := nextPage(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to list actions for droplet %s: %w", dropletID, err)
		}
		if done {
			break
		}
		opt.Page = next
	}
	return actions, nil
}

// GetAction reloads a single action.
func (p *DigitalOceanProvider) GetAction(ctx context.Context, id string) (*domain.ActionStatus, error) {
	numericID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid action ID %q: %w", id, err)
	}

	var a *godo.Action
	err = p.read(ctx, "get action", func(ctx context.Context) error {
		var apiErr error
		a, _, apiErr = p.client.Actions.Get(ctx, numericID)
		return apiErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get action %s: %w", id, err)
	}

	status := toDomainAction(*a)
	return &status, nil
}

// ListSSHKeys pages through the account's SSH keys.
func (p *DigitalOceanProvider) ListSSHKeys(ctx context.Context) ([]domain.SSHKey, error) {
	var keys []domain.SSHKey
	opt := &godo.ListOptions{Page: 1, PerPage: doPerPage}
	for {
		var page []godo.Key
		var resp *godo.Response
		err := p.read(ctx, "list ssh keys", func(ctx context.Context) error {
			var apiErr error
			page, resp, apiErr = p.client.Keys.List(ctx, opt)
			return apiErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list SSH keys: %w", err)
		}

		for _, k := range page {
			keys = append(keys, domain.SSHKey{
				ID:          strconv.Itoa(k.ID),
				Name:        k.Name,
				Fingerprint: k.Fingerprint,
			})
		}

		next, done, err := nextPage(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to list SSH keys: %w", err)
		}
		if done {
			break
		}
		opt.Page = next
	}
	return keys, nil
}

// nextPage reports the page to request after resp, or done when resp was
// the last one.
func nextPage(resp *godo.Response) (int, bool, error) {
	if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
		return 0, true, nil
	}
	current, err := resp.Links.CurrentPage()
	if err != nil {
		return 0, false, err
	}
	return current + 1, false, nil
}

// mapDOError converts godo error responses to domain sentinels.
func mapDOError(err error) error {
	if err == nil {
		return nil
	}

	var errResp *godo.ErrorResponse
	if !errors.As(err, &errResp) || errResp.Response == nil {
		return err
	}

	switch code := errResp.Response.StatusCode; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, errResp.Message)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, errResp.Message)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, errResp.Message)
	case code == http.StatusConflict || code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrConflict, errResp.Message)
	case code >= 500:
		return fmt.Errorf("%w: %s", retry.ErrTransient, errResp.Message)
	}
	return err
}

// toDomainDroplet converts a godo.Droplet to a domain.Droplet.
func toDomainDroplet(d godo.Droplet) domain.Droplet {
	droplet := domain.Droplet{
		ID:       strconv.Itoa(d.ID),
		Name:     d.Name,
		Status:   d.Status,
		Size:     d.SizeSlug,
		Tags:     d.Tags,
		Provider: "digitalocean",
	}

	if created, err := time.Parse(time.RFC3339, d.Created); err == nil {
		droplet.CreatedAt = created
	}
	if d.Networks != nil {
		droplet.PublicIPv4, _ = d.PublicIPv4()
		droplet.PrivateIPv4, _ = d.PrivateIPv4()
		droplet.PublicIPv6, _ = d.PublicIPv6()
	}
	if d.Region != nil {
		droplet.Region = d.Region.Slug
	}
	if d.Image != nil {
		droplet.Image = d.Image.Slug
		if droplet.Image == "" {
			droplet.Image = d.Image.Name
		}
	}

	return droplet
}

// toDomainAction converts a godo.Action. DigitalOcean already reports the
// normalised status values.
func toDomainAction(a godo.Action) domain.ActionStatus {
	return domain.ActionStatus{
		ID:     strconv.Itoa(a.ID),
		Status: a.Status,
		Type:   a.Type,
	}
}
