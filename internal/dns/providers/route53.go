package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/dns/domain"
	"nathanbeddoewebdev/dropproxy/internal/retry"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	log "github.com/sirupsen/logrus"
)

// Route 53 is a global service; requests are signed for us-east-1.
const route53Region = "us-east-1"

// route53API is the subset of *route53.Client used by Route53Provider.
type route53API interface {
	ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
	ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// Compile-time check that Route53Provider satisfies domain.Provider.
var _ domain.Provider = (*Route53Provider)(nil)

// Route53Provider implements domain.Provider on Amazon Route 53. Public
// hosted zones are the domains; records are resource record sets addressed
// by the same "TYPE/name" IDs the GoDaddy provider uses.
type Route53Provider struct {
	client route53API
	retry  retry.Config

	mu    sync.Mutex
	zones map[string]string // domain name -> zone ID
}

// NewRoute53Provider wraps a Route 53 client.
func NewRoute53Provider(client route53API) *Route53Provider {
	return &Route53Provider{
		client: client,
		retry:  retry.DefaultConfig(),
		zones:  make(map[string]string),
	}
}

// RegisterRoute53 registers the Route 53 provider. The DNS key pair carries
// the IAM access key ID and secret access key.
func RegisterRoute53() {
	Register("route53", func(creds credentials.Credentials) (domain.Provider, error) {
		if creds.DNSPublicKey == "" || creds.DNSSecretKey == "" {
			return nil, fmt.Errorf("route53 auth: access key is empty: %w", domain.ErrUnauthorized)
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(route53Region),
			awsconfig.WithCredentialsProvider(
				awscreds.NewStaticCredentialsProvider(creds.DNSPublicKey, creds.DNSSecretKey, ""),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return NewRoute53Provider(route53.NewFromConfig(awsCfg)), nil
	})
}

// GetDisplayName returns the human-readable provider name.
func (p *Route53Provider) GetDisplayName() string {
	return "Route 53"
}

func (p *Route53Provider) read(ctx context.Context, op string, fn func() error) error {
	cfg := p.retry
	cfg.Op = "route53 " + op
	return retry.Do(ctx, cfg, nil, func() error {
		return mapRoute53Error(fn())
	})
}

// ListDomains returns every public hosted zone as a domain.
func (p *Route53Provider) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	var domains []domain.Domain
	input := &route53.ListHostedZonesInput{}

	for {
		var out *route53.ListHostedZonesOutput
		err := p.read(ctx, "list hosted zones", func() error {
			var apiErr error
			out, apiErr = p.client.ListHostedZones(ctx, input)
			return apiErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list hosted zones: %w", err)
		}

		p.mu.Lock()
		for _, z := range out.HostedZones {
			if z.Config != nil && z.Config.PrivateZone {
				continue
			}
			name := trimDot(aws.ToString(z.Name))
			p.zones[name] = extractZoneID(aws.ToString(z.Id))
			domains = append(domains, domain.Domain{
				Name:   name,
				Status: "ACTIVE",
				TLD:    tldOf(name),
			})
		}
		p.mu.Unlock()

		if !out.IsTruncated {
			break
		}
		input.Marker = out.NextMarker
	}

	log.Debugf("route53: listed %d hosted zones", len(domains))
	return domains, nil
}

// zoneID finds the hosted zone for domainName, listing zones on first use.
func (p *Route53Provider) zoneID(ctx context.Context, domainName string) (string, error) {
	p.mu.Lock()
	id, ok := p.zones[domainName]
	p.mu.Unlock()
	if ok {
		return id, nil
	}

	if _, err := p.ListDomains(ctx); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.zones[domainName]; ok {
		return id, nil
	}
	return "", fmt.Errorf("hosted zone for %q: %w", domainName, domain.ErrNotFound)
}

// ListRecords returns every non-alias record set in the domain's zone.
// Multi-value sets are flattened to one comma-separated Content.
func (p *Route53Provider) ListRecords(ctx context.Context, domainName string) ([]domain.Record, error) {
	zoneID, err := p.zoneID(ctx, domainName)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for %q: %w", domainName, err)
	}

	var records []domain.Record
	input := &route53.ListResourceRecordSetsInput{HostedZoneId: aws.String(zoneID)}

	for {
		var out *route53.ListResourceRecordSetsOutput
		err := p.read(ctx, "list record sets", func() error {
			var apiErr error
			out, apiErr = p.client.ListResourceRecordSets(ctx, input)
			return apiErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list records for %q: %w", domainName, err)
		}

		for _, rrs := range out.ResourceRecordSets {
			if rrs.AliasTarget != nil {
				continue
			}
			records = append(records, toRoute53Record(domainName, rrs))
		}

		if !out.IsTruncated {
			break
		}
		input.StartRecordName = out.NextRecordName
		input.StartRecordType = out.NextRecordType
		input.StartRecordIdentifier = out.NextRecordIdentifier
	}
	return records, nil
}

// GetRecord returns the record set under the "TYPE/name" ID.
func (p *Route53Provider) GetRecord(ctx context.Context, domainName string, id string) (*domain.Record, error) {
	recordType, name, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}

	records, err := p.ListRecords(ctx, domainName)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Type == recordType && r.Name == name {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("record %q for %q: %w", id, domainName, domain.ErrNotFound)
}

// CreateRecord creates a record set. Route 53 rejects a CREATE for a set
// that already exists, which surfaces as ErrConflict.
func (p *Route53Provider) CreateRecord(ctx context.Context, domainName string, opts domain.CreateRecordOpts) (*domain.Record, error) {
	name := opts.Name
	if name == "" {
		name = "@"
	}
	content := opts.Content
	if opts.Type == domain.RecordTypeMX && opts.Priority > 0 {
		content = fmt.Sprintf("%d %s", opts.Priority, opts.Content)
	}

	if err := p.change(ctx, domainName, types.ChangeActionCreate, opts.Type, name, content, opts.TTL); err != nil {
		return nil, fmt.Errorf("failed to create record for %q: %w", domainName, err)
	}

	return &domain.Record{
		ID:       recordID(string(opts.Type), name),
		Domain:   domainName,
		Name:     name,
		Type:     opts.Type,
		Content:  opts.Content,
		TTL:      opts.TTL,
		Priority: opts.Priority,
	}, nil
}

// UpdateRecord upserts the set under the ID with a single value.
func (p *Route53Provider) UpdateRecord(ctx context.Context, domainName string, id string, opts domain.UpdateRecordOpts) error {
	recordType, name, err := parseRecordID(id)
	if err != nil {
		return err
	}
	if (opts.Type != "" && opts.Type != recordType) || (opts.Name != "" && opts.Name != name) {
		return fmt.Errorf("route53: renaming or retyping record %q is not supported", id)
	}

	if err := p.change(ctx, domainName, types.ChangeActionUpsert, recordType, name, opts.Content, opts.TTL); err != nil {
		return fmt.Errorf("failed to update record %q for %q: %w", id, domainName, err)
	}
	return nil
}

// DeleteRecord deletes the set under the ID. Route 53 requires the exact
// current values, so the set is read first.
func (p *Route53Provider) DeleteRecord(ctx context.Context, domainName string, id string) error {
	rec, err := p.GetRecord(ctx, domainName, id)
	if err != nil {
		return err
	}
	zoneID, err := p.zoneID(ctx, domainName)
	if err != nil {
		return err
	}

	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{{
				Action:            types.ChangeActionDelete,
				ResourceRecordSet: recordSet(domainName, rec.Type, rec.Name, rec.Content, rec.TTL),
			}},
		},
	}
	err = p.read(ctx, "delete record set", func() error {
		_, apiErr := p.client.ChangeResourceRecordSets(ctx, input)
		return apiErr
	})
	if err != nil {
		return fmt.Errorf("failed to delete record %q for %q: %w", id, domainName, err)
	}
	return nil
}

func (p *Route53Provider) change(ctx context.Context, domainName string, action types.ChangeAction, recordType domain.RecordType, name, content string, ttl int) error {
	zoneID, err := p.zoneID(ctx, domainName)
	if err != nil {
		return err
	}

	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Comment: aws.String("dropproxy"),
			Changes: []types.Change{{
				Action:            action,
				ResourceRecordSet: recordSet(domainName, recordType, name, content, ttl),
			}},
		},
	}

	log.WithFields(log.Fields{"zone": zoneID, "action": action, "name": name}).Debug("route53: change record set")

	// A CREATE is not repeated: after a lost response the retry would fail
	// with InvalidChangeBatch and hide the success.
	if action == types.ChangeActionCreate {
		_, err := p.client.ChangeResourceRecordSets(ctx, input)
		return mapRoute53Error(err)
	}
	return p.read(ctx, "change record set", func() error {
		_, apiErr := p.client.ChangeResourceRecordSets(ctx, input)
		return apiErr
	})
}

// recordSet builds a resource record set from a relative name. Content may
// hold several comma-separated values.
func recordSet(domainName string, recordType domain.RecordType, name, content string, ttl int) *types.ResourceRecordSet {
	var values []types.ResourceRecord
	for _, v := range strings.Split(content, ",") {
		values = append(values, types.ResourceRecord{Value: aws.String(strings.TrimSpace(v))})
	}
	return &types.ResourceRecordSet{
		Name:            aws.String(absoluteName(name, domainName)),
		Type:            types.RRType(recordType),
		TTL:             aws.Int64(int64(ttl)),
		ResourceRecords: values,
	}
}

func toRoute53Record(domainName string, rrs types.ResourceRecordSet) domain.Record {
	name := relativeName(aws.ToString(rrs.Name), domainName)
	values := make([]string, 0, len(rrs.ResourceRecords))
	for _, r := range rrs.ResourceRecords {
		values = append(values, aws.ToString(r.Value))
	}
	return domain.Record{
		ID:      recordID(string(rrs.Type), name),
		Domain:  domainName,
		Name:    name,
		Type:    domain.RecordType(rrs.Type),
		Content: strings.Join(values, ","),
		TTL:     int(aws.ToInt64(rrs.TTL)),
	}
}

// relativeName turns "app.example.com." into "app" and the apex into "@".
func relativeName(fqdn, domainName string) string {
	fqdn = strings.ToLower(trimDot(fqdn))
	if fqdn == domainName {
		return "@"
	}
	return strings.TrimSuffix(fqdn, "."+domainName)
}

// absoluteName is the inverse of relativeName.
func absoluteName(name, domainName string) string {
	if name == "" || name == "@" {
		return domainName + "."
	}
	return name + "." + domainName + "."
}

func trimDot(s string) string {
	return strings.TrimSuffix(s, ".")
}

func extractZoneID(fullID string) string {
	parts := strings.Split(fullID, "/")
	return parts[len(parts)-1]
}

// mapRoute53Error converts AWS API error codes to domain sentinels.
func mapRoute53Error(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "AccessDenied", "InvalidClientTokenId", "SignatureDoesNotMatch", "UnrecognizedClientException":
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, apiErr.ErrorMessage())
	case "NoSuchHostedZone":
		return fmt.Errorf("%w: %s", domain.ErrNotFound, apiErr.ErrorMessage())
	case "Throttling", "ThrottlingException":
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, apiErr.ErrorMessage())
	case "InvalidChangeBatch":
		return fmt.Errorf("%w: %s", domain.ErrConflict, apiErr.ErrorMessage())
	case "PriorRequestNotComplete", "ServiceUnavailable", "InternalFailure":
		return fmt.Errorf("%w: %s", retry.ErrTransient, apiErr.ErrorMessage())
	}
	return err
}
