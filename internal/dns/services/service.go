// Package services provides the DNS service layer.
//
// The Service type wraps a domain.Provider and adds input normalisation,
// validation, and default value application before delegating to the provider.
// CLI commands construct a Service from a resolved provider and call service
// methods rather than calling the provider directly.
package services

import (
	"context"
	"fmt"

	"nathanbeddoewebdev/dropproxy/internal/dns/domain"

	log "github.com/sirupsen/logrus"
)

// Service is the DNS business logic layer. It sits between the CLI or the
// provisioning workflow and the provider, applying normalisation and
// validation to all inputs.
type Service struct {
	provider domain.Provider
	ttl      int
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultTTL overrides DefaultTTL for records created or updated
// without an explicit TTL.
func WithDefaultTTL(ttl int) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// New returns a Service backed by the given provider.
func New(provider domain.Provider, opts ...Option) *Service {
	svc := &Service{provider: provider, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ProviderName returns the display name of the wrapped provider.
func (s *Service) ProviderName() string {
	return s.provider.GetDisplayName()
}

// ListDomains returns all domains in the provider account, with names
// normalised to lowercase without a trailing dot.
func (s *Service) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	domains, err := s.provider.ListDomains(ctx)
	if err != nil {
		return nil, err
	}
	for i := range domains {
		domains[i].Name = normalizeDomain(domains[i].Name)
	}
	return domains, nil
}

// ListRecords returns all DNS records for the given domain.
func (s *Service) ListRecords(ctx context.Context, domainName string) ([]domain.Record, error) {
	domainName = normalizeDomain(domainName)
	if domainName == "" {
		return nil, fmt.Errorf("domain name is required")
	}
	return s.provider.ListRecords(ctx, domainName)
}

// GetRecord returns a single DNS record by domain and ID.
func (s *Service) GetRecord(ctx context.Context, domainName string, id string) (*domain.Record, error) {
	domainName = normalizeDomain(domainName)
	if domainName == "" {
		return nil, fmt.Errorf("domain name is required")
	}
	if id == "" {
		return nil, fmt.Errorf("record ID is required")
	}
	return s.provider.GetRecord(ctx, domainName, id)
}

// CreateRecord creates a new DNS record after normalising and validating the opts.
func (s *Service) CreateRecord(ctx context.Context, domainName string, opts domain.CreateRecordOpts) (*domain.Record, error) {
	domainName = normalizeDomain(domainName)
	if domainName == "" {
		return nil, fmt.Errorf("domain name is required")
	}

	if err := validateRecordType(opts.Type); err != nil {
		return nil, err
	}
	if err := validateContent(opts.Type, opts.Content); err != nil {
		return nil, err
	}

	// Apply default TTL if none specified.
	if opts.TTL <= 0 {
		opts.TTL = s.ttl
	}

	// Normalise the subdomain portion.
	opts.Name = normalizeSubdomain(opts.Name, domainName)

	return s.provider.CreateRecord(ctx, domainName, opts)
}

// UpdateRecord updates an existing DNS record after normalising and validating opts.
func (s *Service) UpdateRecord(ctx context.Context, domainName string, id string, opts domain.UpdateRecordOpts) error {
	domainName = normalizeDomain(domainName)
	if domainName == "" {
		return fmt.Errorf("domain name is required")
	}
	if id == "" {
		return fmt.Errorf("record ID is required")
	}

	if opts.Type != "" {
		if err := validateRecordType(opts.Type); err != nil {
			return err
		}
	}
	if opts.Content != "" {
		if err := validateContent(opts.Type, opts.Content); err != nil {
			return err
		}
	}

	if opts.TTL <= 0 {
		opts.TTL = s.ttl
	}

	if opts.Name != "" {
		opts.Name = normalizeSubdomain(opts.Name, domainName)
	}

	return s.provider.UpdateRecord(ctx, domainName, id, opts)
}

// DeleteRecord deletes a DNS record by domain and ID.
func (s *Service) DeleteRecord(ctx context.Context, domainName string, id string) error {
	domainName = normalizeDomain(domainName)
	if domainName == "" {
		return fmt.Errorf("domain name is required")
	}
	if id == "" {
		return fmt.Errorf("record ID is required")
	}
	return s.provider.DeleteRecord(ctx, domainName, id)
}

// Upsert outcomes reported by UpsertRecord.
const (
	UpsertCreated = "created"
	UpsertUpdated = "updated"
)

// UpsertRecord points the (domain, name, type) record at opts.Content. When
// no such record exists it is created; otherwise the first match is updated
// in place and any further matches are left alone. It returns the resulting
// record and which of UpsertCreated or UpsertUpdated happened.
func (s *Service) UpsertRecord(ctx context.Context, domainName string, opts domain.CreateRecordOpts) (*domain.Record, string, error) {
	domainName = normalizeDomain(domainName)
	if domainName == "" {
		return nil, "", fmt.Errorf("domain name is required")
	}
	if err := validateRecordType(opts.Type); err != nil {
		return nil, "", err
	}
	if err := validateContent(opts.Type, opts.Content); err != nil {
		return nil, "", err
	}
	if opts.TTL <= 0 {
		opts.TTL = s.ttl
	}
	name := relativeName(opts.Name, domainName)

	records, err := s.provider.ListRecords(ctx, domainName)
	if err != nil {
		return nil, "", err
	}

	var existing *domain.Record
	for i := range records {
		r := records[i]
		if r.Type == opts.Type && relativeName(r.Name, domainName) == name {
			existing = &records[i]
			break
		}
	}

	if existing == nil {
		opts.Name = name
		log.WithFields(log.Fields{"domain": domainName, "name": name, "type": opts.Type}).Debug("dns: creating record")
		rec, err := s.provider.CreateRecord(ctx, domainName, opts)
		if err != nil {
			return nil, "", err
		}
		return rec, UpsertCreated, nil
	}

	log.WithFields(log.Fields{"domain": domainName, "id": existing.ID, "old": existing.Content}).Debug("dns: updating record")
	err = s.provider.UpdateRecord(ctx, domainName, existing.ID, domain.UpdateRecordOpts{
		Type:     opts.Type,
		Content:  opts.Content,
		TTL:      opts.TTL,
		Priority: opts.Priority,
	})
	if err != nil {
		return nil, "", err
	}

	updated := *existing
	updated.Content = opts.Content
	updated.TTL = opts.TTL
	return &updated, UpsertUpdated, nil
}
