package providers

import (
	"context"
	"errors"
	"testing"

	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/dns/domain"
	"nathanbeddoewebdev/dropproxy/internal/retry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"
)

type fakeRoute53 struct {
	zones   []types.HostedZone
	sets    []types.ResourceRecordSet
	changes []*route53.ChangeResourceRecordSetsInput

	zoneErr   error
	changeErr error
	zoneCalls int
}

func (f *fakeRoute53) ListHostedZones(_ context.Context, _ *route53.ListHostedZonesInput, _ ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
	f.zoneCalls++
	if f.zoneErr != nil {
		return nil, f.zoneErr
	}
	return &route53.ListHostedZonesOutput{HostedZones: f.zones}, nil
}

func (f *fakeRoute53) ListResourceRecordSets(_ context.Context, in *route53.ListResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
	// Serve the sets in two pages to exercise truncation handling.
	if in.StartRecordName == nil && len(f.sets) > 1 {
		return &route53.ListResourceRecordSetsOutput{
			ResourceRecordSets: f.sets[:1],
			IsTruncated:        true,
			NextRecordName:     f.sets[1].Name,
			NextRecordType:     f.sets[1].Type,
		}, nil
	}
	start := 0
	if in.StartRecordName != nil {
		start = 1
	}
	return &route53.ListResourceRecordSetsOutput{ResourceRecordSets: f.sets[start:]}, nil
}

func (f *fakeRoute53) ChangeResourceRecordSets(_ context.Context, in *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	f.changes = append(f.changes, in)
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	return &route53.ChangeResourceRecordSetsOutput{}, nil
}

func newTestRoute53(fake *fakeRoute53) *Route53Provider {
	p := NewRoute53Provider(fake)
	p.retry = retry.Config{MaxAttempts: 1}
	return p
}

func testZones() []types.HostedZone {
	return []types.HostedZone{
		{Id: aws.String("/hostedzone/Z111"), Name: aws.String("test.com.")},
		{Id: aws.String("/hostedzone/Z222"), Name: aws.String("internal.test."), Config: &types.HostedZoneConfig{PrivateZone: true}},
	}
}

func TestRoute53ListDomains_SkipsPrivateZones(t *testing.T) {
	p := newTestRoute53(&fakeRoute53{zones: testZones()})

	domains, err := p.ListDomains(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []domain.Domain{{Name: "test.com", Status: "ACTIVE", TLD: "com"}}
	if diff := cmp.Diff(want, domains); diff != "" {
		t.Errorf("ListDomains mismatch (-want +got):\n%s", diff)
	}
}

func TestRoute53ListRecords_PagesAndRelativises(t *testing.T) {
	fake := &fakeRoute53{
		zones: testZones(),
		sets: []types.ResourceRecordSet{
			{Name: aws.String("test.com."), Type: types.RRTypeA, TTL: aws.Int64(300), ResourceRecords: []types.ResourceRecord{{Value: aws.String("1.2.3.4")}}},
			{Name: aws.String("app.test.com."), Type: types.RRTypeA, TTL: aws.Int64(600), ResourceRecords: []types.ResourceRecord{{Value: aws.String("203.0.113.9")}, {Value: aws.String("203.0.113.10")}}},
			{Name: aws.String("cdn.test.com."), Type: types.RRTypeA, AliasTarget: &types.AliasTarget{DNSName: aws.String("d1.cloudfront.net."), HostedZoneId: aws.String("Z2")}},
		},
	}
	p := newTestRoute53(fake)

	records, err := p.ListRecords(context.Background(), "test.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []domain.Record{
		{ID: "A/@", Domain: "test.com", Name: "@", Type: domain.RecordTypeA, Content: "1.2.3.4", TTL: 300},
		{ID: "A/app", Domain: "test.com", Name: "app", Type: domain.RecordTypeA, Content: "203.0.113.9,203.0.113.10", TTL: 600},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("ListRecords mismatch (-want +got):\n%s", diff)
	}
}

func TestRoute53ListRecords_UnknownZone(t *testing.T) {
	p := newTestRoute53(&fakeRoute53{zones: testZones()})

	_, err := p.ListRecords(context.Background(), "other.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRoute53ZoneIDIsCached(t *testing.T) {
	fake := &fakeRoute53{zones: testZones()}
	p := newTestRoute53(fake)

	for range 3 {
		if _, err := p.ListRecords(context.Background(), "test.com"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if fake.zoneCalls != 1 {
		t.Errorf("ListHostedZones called %d times, want 1", fake.zoneCalls)
	}
}

func TestRoute53CreateRecord(t *testing.T) {
	fake := &fakeRoute53{zones: testZones()}
	p := newTestRoute53(fake)

	rec, err := p.CreateRecord(context.Background(), "test.com", domain.CreateRecordOpts{
		Name: "app", Type: domain.RecordTypeA, Content: "203.0.113.9", TTL: 600,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.ID != "A/app" {
		t.Errorf("ID = %q, want A/app", rec.ID)
	}

	if len(fake.changes) != 1 {
		t.Fatalf("expected 1 change batch, got %d", len(fake.changes))
	}
	in := fake.changes[0]
	if aws.ToString(in.HostedZoneId) != "Z111" {
		t.Errorf("HostedZoneId = %q, want Z111", aws.ToString(in.HostedZoneId))
	}
	change := in.ChangeBatch.Changes[0]
	if change.Action != types.ChangeActionCreate {
		t.Errorf("Action = %v, want CREATE", change.Action)
	}
	rrs := change.ResourceRecordSet
	if aws.ToString(rrs.Name) != "app.test.com." || rrs.Type != types.RRTypeA || aws.ToInt64(rrs.TTL) != 600 {
		t.Errorf("record set = %s %s %d", aws.ToString(rrs.Name), rrs.Type, aws.ToInt64(rrs.TTL))
	}
	if len(rrs.ResourceRecords) != 1 || aws.ToString(rrs.ResourceRecords[0].Value) != "203.0.113.9" {
		t.Errorf("values = %+v", rrs.ResourceRecords)
	}
}

func TestRoute53UpdateRecord_Upserts(t *testing.T) {
	fake := &fakeRoute53{zones: testZones()}
	p := newTestRoute53(fake)

	err := p.UpdateRecord(context.Background(), "test.com", "A/@", domain.UpdateRecordOpts{
		Type: domain.RecordTypeA, Content: "198.51.100.7", TTL: 600,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	change := fake.changes[0].ChangeBatch.Changes[0]
	if change.Action != types.ChangeActionUpsert {
		t.Errorf("Action = %v, want UPSERT", change.Action)
	}
	if got := aws.ToString(change.ResourceRecordSet.Name); got != "test.com." {
		t.Errorf("Name = %q, want apex", got)
	}
}

func TestRoute53UpdateRecord_RejectsRename(t *testing.T) {
	p := newTestRoute53(&fakeRoute53{zones: testZones()})

	err := p.UpdateRecord(context.Background(), "test.com", "A/app", domain.UpdateRecordOpts{Name: "web", Content: "1.2.3.4"})
	if err == nil {
		t.Fatal("expected error for rename, got nil")
	}
}

func TestRoute53DeleteRecord_SendsCurrentValues(t *testing.T) {
	fake := &fakeRoute53{
		zones: testZones(),
		sets: []types.ResourceRecordSet{
			{Name: aws.String("app.test.com."), Type: types.RRTypeA, TTL: aws.Int64(600), ResourceRecords: []types.ResourceRecord{{Value: aws.String("203.0.113.9")}}},
		},
	}
	p := newTestRoute53(fake)

	if err := p.DeleteRecord(context.Background(), "test.com", "A/app"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	change := fake.changes[0].ChangeBatch.Changes[0]
	if change.Action != types.ChangeActionDelete {
		t.Errorf("Action = %v, want DELETE", change.Action)
	}
	if got := aws.ToString(change.ResourceRecordSet.ResourceRecords[0].Value); got != "203.0.113.9" {
		t.Errorf("value = %q", got)
	}
}

func TestRoute53CreateRecord_ConflictNotRetried(t *testing.T) {
	fake := &fakeRoute53{
		zones:     testZones(),
		changeErr: &smithy.GenericAPIError{Code: "InvalidChangeBatch", Message: "already exists"},
	}
	p := newTestRoute53(fake)
	p.retry = retry.Config{MaxAttempts: 3}

	_, err := p.CreateRecord(context.Background(), "test.com", domain.CreateRecordOpts{Name: "app", Type: domain.RecordTypeA, Content: "1.2.3.4", TTL: 600})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if len(fake.changes) != 1 {
		t.Errorf("ChangeResourceRecordSets called %d times, want 1", len(fake.changes))
	}
}

func TestMapRoute53Error(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"AccessDenied", domain.ErrUnauthorized},
		{"NoSuchHostedZone", domain.ErrNotFound},
		{"Throttling", domain.ErrRateLimited},
		{"InvalidChangeBatch", domain.ErrConflict},
		{"PriorRequestNotComplete", retry.ErrTransient},
	}
	for _, tt := range tests {
		err := mapRoute53Error(&smithy.GenericAPIError{Code: tt.code})
		if !errors.Is(err, tt.want) {
			t.Errorf("code %s: got %v, want %v", tt.code, err, tt.want)
		}
	}
}

func TestRelativeAndAbsoluteNames(t *testing.T) {
	tests := []struct {
		fqdn, rel string
	}{
		{"test.com.", "@"},
		{"app.test.com.", "app"},
		{"a.b.test.com.", "a.b"},
	}
	for _, tt := range tests {
		if got := relativeName(tt.fqdn, "test.com"); got != tt.rel {
			t.Errorf("relativeName(%q) = %q, want %q", tt.fqdn, got, tt.rel)
		}
		if got := absoluteName(tt.rel, "test.com"); got != tt.fqdn {
			t.Errorf("absoluteName(%q) = %q, want %q", tt.rel, got, tt.fqdn)
		}
	}
}

func TestRegisterRoute53_EmptyKeys(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	RegisterRoute53()

	_, err := Get("route53", credentials.Credentials{})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}
