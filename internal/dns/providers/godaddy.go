package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/dns/domain"
	"nathanbeddoewebdev/dropproxy/internal/retry"

	log "github.com/sirupsen/logrus"
)

const (
	godaddyBaseURL = "https://api.godaddy.com"
	godaddyTimeout = 30 * time.Second
)

// Compile-time check that GoDaddyProvider satisfies domain.Provider.
var _ domain.Provider = (*GoDaddyProvider)(nil)

// GoDaddyProvider implements domain.Provider using the GoDaddy Domains API v1.
//
// GoDaddy has no record IDs. Records are addressed by type and name, so the
// IDs handed out by this provider are "TYPE/name" (e.g. "A/www").
type GoDaddyProvider struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
	retry     retry.Config
}

// NewGoDaddyProvider creates a GoDaddyProvider with the given key pair.
func NewGoDaddyProvider(apiKey, apiSecret string) *GoDaddyProvider {
	return &GoDaddyProvider{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   godaddyBaseURL,
		client:    &http.Client{Timeout: godaddyTimeout},
		retry:     retry.DefaultConfig(),
	}
}

// RegisterGoDaddy registers the GoDaddy provider factory with the DNS registry.
func RegisterGoDaddy() {
	Register("godaddy", func(creds credentials.Credentials) (domain.Provider, error) {
		if creds.DNSPublicKey == "" || creds.DNSSecretKey == "" {
			return nil, fmt.Errorf("godaddy auth: api key or secret is empty: %w", domain.ErrUnauthorized)
		}
		return NewGoDaddyProvider(creds.DNSPublicKey, creds.DNSSecretKey), nil
	})
}

// GetDisplayName returns the human-readable provider name.
func (p *GoDaddyProvider) GetDisplayName() string {
	return "GoDaddy"
}

// --- API types ---

type godaddyDomain struct {
	Domain    string `json:"domain"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	Expires   string `json:"expires"`
}

type godaddyRecord struct {
	Type     string `json:"type,omitempty"`
	Name     string `json:"name,omitempty"`
	Data     string `json:"data"`
	TTL      int    `json:"ttl,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

type godaddyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusError carries the HTTP status of a failed call so mapAPIError can
// classify it.
type statusError struct {
	status int
	body   godaddyError
}

func (e *statusError) Error() string {
	if e.body.Message != "" {
		return fmt.Sprintf("godaddy: %d %s: %s", e.status, e.body.Code, e.body.Message)
	}
	return fmt.Sprintf("godaddy: unexpected status %d", e.status)
}

// --- HTTP helpers ---

// do sends a request and decodes a JSON response into out (if non-nil).
func (p *GoDaddyProvider) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("godaddy: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("godaddy: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "sso-key "+p.apiKey+":"+p.apiSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.WithFields(log.Fields{"method": method, "path": path}).Debug("godaddy: request")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("godaddy: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		serr := &statusError{status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&serr.body)
		return serr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("godaddy: failed to decode response: %w", err)
	}
	return nil
}

// read performs an idempotent request under the provider's retry policy.
func (p *GoDaddyProvider) read(ctx context.Context, method, path string, body any, out any) error {
	cfg := p.retry
	cfg.Op = "godaddy " + method + " " + path
	return retry.Do(ctx, cfg, nil, func() error {
		return mapAPIError(p.do(ctx, method, path, body, out))
	})
}

// mapAPIError converts GoDaddy HTTP failures to domain sentinels.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var serr *statusError
	if !errors.As(err, &serr) {
		return err
	}
	switch code := serr.status; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, err.Error())
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, err.Error())
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, err.Error())
	case code == http.StatusConflict || serr.body.Code == "DUPLICATE_RECORD":
		return fmt.Errorf("%w: %s", domain.ErrConflict, err.Error())
	case code >= 500:
		return fmt.Errorf("%w: %s", retry.ErrTransient, err.Error())
	}
	return err
}

func recordsPath(domainName string) string {
	return "/v1/domains/" + url.PathEscape(domainName) + "/records"
}

func recordPath(domainName string, recordType domain.RecordType, name string) string {
	return recordsPath(domainName) + "/" + url.PathEscape(string(recordType)) + "/" + url.PathEscape(name)
}

// --- Provider implementation ---

// ListDomains returns all domains in the GoDaddy account.
func (p *GoDaddyProvider) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	var out []godaddyDomain
	if err := p.read(ctx, http.MethodGet, "/v1/domains", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	domains := make([]domain.Domain, 0, len(out))
	for _, d := range out {
		domains = append(domains, domain.Domain{
			Name:       strings.ToLower(d.Domain),
			Status:     d.Status,
			TLD:        tldOf(d.Domain),
			CreateDate: d.CreatedAt,
			ExpireDate: d.Expires,
		})
	}
	return domains, nil
}

// ListRecords returns all DNS records for the given domain.
func (p *GoDaddyProvider) ListRecords(ctx context.Context, domainName string) ([]domain.Record, error) {
	var out []godaddyRecord
	if err := p.read(ctx, http.MethodGet, recordsPath(domainName), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list records for %q: %w", domainName, err)
	}

	records := make([]domain.Record, 0, len(out))
	for _, r := range out {
		records = append(records, toDomainRecord(domainName, r))
	}
	return records, nil
}

// GetRecord returns the first record stored under the "TYPE/name" ID.
func (p *GoDaddyProvider) GetRecord(ctx context.Context, domainName string, id string) (*domain.Record, error) {
	recordType, name, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}

	var out []godaddyRecord
	if err := p.read(ctx, http.MethodGet, recordPath(domainName, recordType, name), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get record %q for %q: %w", id, domainName, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("record %q for %q: %w", id, domainName, domain.ErrNotFound)
	}

	r := out[0]
	if r.Type == "" {
		r.Type = string(recordType)
	}
	if r.Name == "" {
		r.Name = name
	}
	rec := toDomainRecord(domainName, r)
	return &rec, nil
}

// CreateRecord appends a record with PATCH, leaving other records of the
// same type and name untouched.
func (p *GoDaddyProvider) CreateRecord(ctx context.Context, domainName string, opts domain.CreateRecordOpts) (*domain.Record, error) {
	name := opts.Name
	if name == "" {
		name = "@"
	}
	body := []godaddyRecord{{
		Type:     string(opts.Type),
		Name:     name,
		Data:     opts.Content,
		TTL:      opts.TTL,
		Priority: opts.Priority,
	}}

	// Not retried: a repeated PATCH after a lost response adds a duplicate.
	if err := mapAPIError(p.do(ctx, http.MethodPatch, recordsPath(domainName), body, nil)); err != nil {
		return nil, fmt.Errorf("failed to create record for %q: %w", domainName, err)
	}

	rec := toDomainRecord(domainName, body[0])
	return &rec, nil
}

// UpdateRecord replaces every record under the ID's type and name with a
// single record holding opts.Content. When opts renames or retypes the
// record, the new record is written first and the old set removed.
func (p *GoDaddyProvider) UpdateRecord(ctx context.Context, domainName string, id string, opts domain.UpdateRecordOpts) error {
	oldType, oldName, err := parseRecordID(id)
	if err != nil {
		return err
	}

	newType, newName := oldType, oldName
	if opts.Type != "" {
		newType = opts.Type
	}
	if opts.Name != "" {
		newName = opts.Name
	}

	body := []godaddyRecord{{Data: opts.Content, TTL: opts.TTL, Priority: opts.Priority}}
	if err := p.read(ctx, http.MethodPut, recordPath(domainName, newType, newName), body, nil); err != nil {
		return fmt.Errorf("failed to update record %q for %q: %w", id, domainName, err)
	}

	if newType != oldType || newName != oldName {
		if err := p.DeleteRecord(ctx, domainName, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return nil
}

// DeleteRecord deletes every record under the ID's type and name.
func (p *GoDaddyProvider) DeleteRecord(ctx context.Context, domainName string, id string) error {
	recordType, name, err := parseRecordID(id)
	if err != nil {
		return err
	}
	if err := p.read(ctx, http.MethodDelete, recordPath(domainName, recordType, name), nil, nil); err != nil {
		return fmt.Errorf("failed to delete record %q for %q: %w", id, domainName, err)
	}
	return nil
}

// --- Conversion helpers ---

// recordID builds the synthetic "TYPE/name" ID.
func recordID(recordType, name string) string {
	return strings.ToUpper(recordType) + "/" + name
}

// parseRecordID splits a "TYPE/name" ID.
func parseRecordID(id string) (domain.RecordType, string, error) {
	recordType, name, ok := strings.Cut(id, "/")
	if !ok || recordType == "" || name == "" {
		return "", "", fmt.Errorf("invalid record ID %q: want TYPE/name", id)
	}
	return domain.RecordType(strings.ToUpper(recordType)), name, nil
}

// toDomainRecord converts a GoDaddy API record to a domain.Record.
func toDomainRecord(domainName string, r godaddyRecord) domain.Record {
	return domain.Record{
		ID:       recordID(r.Type, r.Name),
		Domain:   domainName,
		Name:     r.Name,
		Type:     domain.RecordType(r.Type),
		Content:  r.Data,
		TTL:      r.TTL,
		Priority: r.Priority,
	}
}

func tldOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return strings.ToLower(name[i+1:])
	}
	return ""
}
