package provision

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"nathanbeddoewebdev/dropproxy/internal/argfile"
	clouddomain "nathanbeddoewebdev/dropproxy/internal/cloud/domain"
	"nathanbeddoewebdev/dropproxy/internal/console"
	dnsdomain "nathanbeddoewebdev/dropproxy/internal/dns/domain"
	dnsservices "nathanbeddoewebdev/dropproxy/internal/dns/services"
	"nathanbeddoewebdev/dropproxy/internal/runlog"
)

// --- cloud ---

type fakeCloud struct {
	droplets []clouddomain.Droplet
	keys     []clouddomain.SSHKey

	// newIP is assigned to created droplets; empty leaves them without one.
	newIP string

	created   []clouddomain.CreateDropletOpts
	deleted   []string
	deleteErr map[string]error

	actions   []clouddomain.ActionStatus
	getAction func(call int) (*clouddomain.ActionStatus, error)
	polls     int
	nextID    int
}

func (f *fakeCloud) GetDisplayName() string { return "Fake" }

func (f *fakeCloud) ListDroplets(context.Context) ([]clouddomain.Droplet, error) {
	out := make([]clouddomain.Droplet, len(f.droplets))
	copy(out, f.droplets)
	return out, nil
}

func (f *fakeCloud) CreateDroplet(_ context.Context, opts clouddomain.CreateDropletOpts) (*clouddomain.Droplet, error) {
	f.created = append(f.created, opts)
	f.nextID++
	d := clouddomain.Droplet{
		ID:         strconv.Itoa(1000 + f.nextID),
		Name:       opts.Name,
		Status:     "new",
		Region:     opts.Region,
		Size:       opts.Size,
		Image:      opts.Image,
		Tags:       opts.Tags,
		PublicIPv4: f.newIP,
	}
	f.droplets = append(f.droplets, d)
	d.PublicIPv4 = ""
	return &d, nil
}

func (f *fakeCloud) DeleteDroplet(_ context.Context, id string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	for i, d := range f.droplets {
		if d.ID == id {
			f.droplets = append(f.droplets[:i], f.droplets[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeCloud) DropletActions(context.Context, string) ([]clouddomain.ActionStatus, error) {
	if f.actions == nil {
		return []clouddomain.ActionStatus{{ID: "a1", Status: clouddomain.ActionStatusInProgress, Type: "create"}}, nil
	}
	return f.actions, nil
}

func (f *fakeCloud) GetAction(_ context.Context, id string) (*clouddomain.ActionStatus, error) {
	f.polls++
	if f.getAction != nil {
		return f.getAction(f.polls)
	}
	return &clouddomain.ActionStatus{ID: id, Status: clouddomain.ActionStatusCompleted, Type: "create"}, nil
}

func (f *fakeCloud) ListSSHKeys(context.Context) ([]clouddomain.SSHKey, error) {
	return f.keys, nil
}

// --- dns ---

type fakeDNS struct {
	domains []string
	records []dnsdomain.Record
	upserts int
}

func (f *fakeDNS) ListDomains(context.Context) ([]dnsdomain.Domain, error) {
	out := make([]dnsdomain.Domain, 0, len(f.domains))
	for _, d := range f.domains {
		out = append(out, dnsdomain.Domain{Name: d})
	}
	return out, nil
}

func (f *fakeDNS) UpsertRecord(_ context.Context, domainName string, opts dnsdomain.CreateRecordOpts) (*dnsdomain.Record, string, error) {
	f.upserts++
	for i, r := range f.records {
		if r.Domain == domainName && r.Name == opts.Name && r.Type == opts.Type {
			f.records[i].Content = opts.Content
			f.records[i].TTL = opts.TTL
			rec := f.records[i]
			return &rec, dnsservices.UpsertUpdated, nil
		}
	}
	rec := dnsdomain.Record{
		ID:      fmt.Sprintf("%s/%s", opts.Type, opts.Name),
		Domain:  domainName,
		Name:    opts.Name,
		Type:    opts.Type,
		Content: opts.Content,
		TTL:     opts.TTL,
	}
	f.records = append(f.records, rec)
	return &rec, dnsservices.UpsertCreated, nil
}

// --- remote ---

type fakeSession struct {
	host      string
	uploads   map[string]string
	commands  []string
	stderr    map[string]string
	runErr    map[string]error
	uploadErr error
	closed    bool
}

func (s *fakeSession) Upload(_ context.Context, localPath, remotePath string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads[remotePath] = localPath
	return nil
}

func (s *fakeSession) Run(_ context.Context, command string, stdout, stderr io.Writer) error {
	s.commands = append(s.commands, command)
	_, _ = io.WriteString(stdout, "ok\n")
	if msg := s.stderr[command]; msg != "" {
		_, _ = io.WriteString(stderr, msg)
	}
	return s.runErr[command]
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeConnector struct {
	mu       sync.Mutex
	errs     []error // returned by successive Connect calls before succeeding
	calls    int
	sessions []*fakeSession
	template fakeSession
}

func (c *fakeConnector) Connect(_ context.Context, host string) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if len(c.errs) > 0 {
		// The last error repeats.
		err := c.errs[0]
		if len(c.errs) > 1 {
			c.errs = c.errs[1:]
		}
		if err != nil {
			return nil, err
		}
	}
	s := &fakeSession{
		host:      host,
		uploads:   map[string]string{},
		stderr:    c.template.stderr,
		runErr:    c.template.runErr,
		uploadErr: c.template.uploadErr,
	}
	c.sessions = append(c.sessions, s)
	return s, nil
}

// --- run store ---

type memRuns struct {
	runs []runlog.Run
}

func (m *memRuns) Save(_ context.Context, run *runlog.Run) error {
	m.runs = append(m.runs, *run)
	return nil
}

// --- fixtures ---

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Regions = []string{"ams3"}
	cfg.PollInterval = time.Millisecond
	cfg.MaxPollAttempts = 5
	cfg.RemoteAttempts = 3
	cfg.RemoteBackoff = time.Millisecond
	return cfg
}

// writeRequest writes an argument file and the nginx file it names into a
// temp dir and returns the argument file path.
func writeRequest(t *testing.T, domainName, dropletName string) string {
	t.Helper()
	dir := t.TempDir()
	conf := filepath.Join(dir, domainName+".conf")
	if err := os.WriteFile(conf, []byte("server {}\n"), 0o644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	args := filepath.Join(dir, "arguments.txt")
	err := argfile.Write(args, argfile.Request{
		DomainName:    domainName,
		DropletName:   dropletName,
		NginxConfFile: conf,
	})
	if err != nil {
		t.Fatalf("write args: %v", err)
	}
	return args
}

type harness struct {
	cloud *fakeCloud
	dns   *fakeDNS
	conn  *fakeConnector
	runs  *memRuns
	out   *bytes.Buffer
	cfg   Config
}

func newHarness() *harness {
	return &harness{
		cloud: &fakeCloud{
			newIP: "203.0.113.9",
			keys:  []clouddomain.SSHKey{{ID: "k1", Name: "laptop", Fingerprint: "aa:bb"}},
		},
		dns:  &fakeDNS{domains: []string{"test.com"}},
		conn: &fakeConnector{},
		runs: &memRuns{},
		out:  &bytes.Buffer{},
		cfg:  testConfig(),
	}
}

func (h *harness) workflow(opts ...Option) *Workflow {
	opts = append([]Option{WithRunStore(h.runs)}, opts...)
	return New(h.cloud, h.dns, h.conn.Connect, console.New(h.out), h.cfg, opts...)
}
