// Package provision runs the droplet provisioning workflow: replace the
// named droplet, wait for the new one, push an nginx site to it over SSH
// and point a DNS A record at it.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"nathanbeddoewebdev/dropproxy/internal/argfile"
	clouddomain "nathanbeddoewebdev/dropproxy/internal/cloud/domain"
	dnsdomain "nathanbeddoewebdev/dropproxy/internal/dns/domain"
	dnsservices "nathanbeddoewebdev/dropproxy/internal/dns/services"
	"nathanbeddoewebdev/dropproxy/internal/fqdn"
	"nathanbeddoewebdev/dropproxy/internal/logging"
	"nathanbeddoewebdev/dropproxy/internal/runlog"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// DNS is the slice of the DNS service the workflow uses.
type DNS interface {
	ListDomains(ctx context.Context) ([]dnsdomain.Domain, error)
	UpsertRecord(ctx context.Context, domainName string, opts dnsdomain.CreateRecordOpts) (*dnsdomain.Record, string, error)
}

// Reporter prints user-facing progress. Write receives raw remote output.
// Err reports a closed output stream.
type Reporter interface {
	io.Writer
	Infof(format string, args ...any)
	Successf(format string, args ...any)
	Errorf(format string, args ...any)
	Err() error
}

// RunStore persists run history.
type RunStore interface {
	Save(ctx context.Context, run *runlog.Run) error
}

// WaitFunc runs fn while the caller waits, e.g. behind a spinner.
type WaitFunc func(ctx context.Context, title string, fn func(ctx context.Context) error) error

// Result describes a completed run.
type Result struct {
	Domain       string   `json:"domain" yaml:"domain"`
	RecordName   string   `json:"record_name" yaml:"record_name"`
	RecordAction string   `json:"record_action" yaml:"record_action"`
	DropletID    string   `json:"droplet_id" yaml:"droplet_id"`
	DropletName  string   `json:"droplet_name" yaml:"droplet_name"`
	Region       string   `json:"region" yaml:"region"`
	IP           string   `json:"ip" yaml:"ip"`
	Destroyed    []string `json:"destroyed,omitempty" yaml:"destroyed,omitempty"`
	RemoteErrors []string `json:"remote_errors,omitempty" yaml:"remote_errors,omitempty"`
}

// Workflow wires the collaborators of a provisioning run.
type Workflow struct {
	cloud   clouddomain.Provider
	dns     DNS
	connect ConnectFunc
	out     Reporter
	cfg     Config

	runs    RunStore
	secrets []string
	wait    WaitFunc
	pick    func(regions []string) string
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithRunStore records every run in store. Occurrences of secrets are
// redacted from the stored detail.
func WithRunStore(store RunStore, secrets ...string) Option {
	return func(w *Workflow) {
		w.runs = store
		w.secrets = secrets
	}
}

// WithWait wraps the droplet wait in fn.
func WithWait(fn WaitFunc) Option {
	return func(w *Workflow) { w.wait = fn }
}

// WithRegionPicker replaces the random region choice.
func WithRegionPicker(pick func(regions []string) string) Option {
	return func(w *Workflow) { w.pick = pick }
}

// New returns a Workflow.
func New(cloud clouddomain.Provider, dns DNS, connect ConnectFunc, out Reporter, cfg Config, opts ...Option) *Workflow {
	w := &Workflow{
		cloud:   cloud,
		dns:     dns,
		connect: connect,
		out:     out,
		cfg:     cfg,
		wait: func(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
		pick: func(regions []string) string {
			return regions[rand.IntN(len(regions))]
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// run tracks one invocation so every exit path can be recorded.
type run struct {
	state  State
	record runlog.Run
}

// Run provisions the droplet described by the argument file at argsPath.
// Any failure is a *StepError naming the state it happened in.
func (w *Workflow) Run(ctx context.Context, argsPath string) (*Result, error) {
	start := time.Now()
	r := &run{record: runlog.Run{RunID: logging.RunID(ctx)}}

	res, err := w.run(ctx, r, argsPath)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ErrInterrupted) {
			err = fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		err = &StepError{State: r.state, Err: err}
	}

	w.save(ctx, r, start, err)
	return res, err
}

func (w *Workflow) enter(ctx context.Context, r *run, state State) error {
	r.state = state
	log.WithContext(ctx).WithField("state", state).Debug("provision: entering state")
	if err := w.out.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return ctx.Err()
}

func (w *Workflow) run(ctx context.Context, r *run, argsPath string) (*Result, error) {
	if err := w.enter(ctx, r, StateValidating); err != nil {
		return nil, err
	}
	req, err := w.validate(argsPath)
	if err != nil {
		return nil, err
	}
	r.record.DomainName = req.DomainName
	r.record.DropletName = req.DropletName
	res := &Result{DropletName: req.DropletName}

	if err := w.enter(ctx, r, StateDomainLookup); err != nil {
		return nil, err
	}
	parsed, err := w.lookupDomain(ctx, req.DomainName)
	if err != nil {
		return nil, err
	}
	res.Domain = parsed.RegistrableDomain
	res.RecordName = parsed.RecordName
	r.record.RecordName = parsed.RecordName

	if err := w.enter(ctx, r, StateDropletReplace); err != nil {
		return nil, err
	}
	res.Destroyed, err = w.replace(ctx, req.DropletName)
	if err != nil {
		return nil, err
	}

	if err := w.enter(ctx, r, StateDropletCreate); err != nil {
		return nil, err
	}
	droplet, err := w.create(ctx, req.DropletName)
	if err != nil {
		return nil, err
	}
	res.DropletID = droplet.ID
	res.Region = droplet.Region
	r.record.DropletID = droplet.ID
	r.record.Region = droplet.Region

	if err := w.enter(ctx, r, StateDropletPoll); err != nil {
		return nil, err
	}
	err = w.wait(ctx, "Waiting for droplet "+droplet.Name, func(ctx context.Context) error {
		return w.waitForDroplet(ctx, droplet.ID)
	})
	if err != nil {
		return nil, err
	}
	w.out.Successf("Droplet ready")

	ip, err := w.resolveIP(ctx, req.DropletName, droplet.ID)
	if err != nil {
		return nil, err
	}
	res.IP = ip
	r.record.IP = ip
	w.out.Infof("Droplet IP is %s", ip)

	if err := w.enter(ctx, r, StateRemoteSetup); err != nil {
		return nil, err
	}
	remoteErrors, err := w.remoteSetup(ctx, ip, req.NginxConfFile)
	res.RemoteErrors = remoteErrors
	if err != nil {
		if !errors.Is(err, ErrRemoteSession) || w.cfg.RemoteFailurePolicy != PolicyBestEffort {
			return res, err
		}
		w.out.Errorf("Remote setup failed, continuing: %v", err)
		res.RemoteErrors = append(res.RemoteErrors, err.Error())
	}

	if err := w.enter(ctx, r, StateDNSUpsert); err != nil {
		return res, err
	}
	action, err := w.upsert(ctx, parsed, ip)
	if err != nil {
		return res, err
	}
	res.RecordAction = action

	r.state = StateDone
	return res, nil
}

func (w *Workflow) validate(argsPath string) (argfile.Request, error) {
	if err := w.cfg.Validate(); err != nil {
		return argfile.Request{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req, err := argfile.Load(argsPath)
	if err != nil {
		return argfile.Request{}, err
	}
	req.NginxConfFile = req.ConfPath(argsPath)
	if _, err := os.Stat(req.NginxConfFile); err != nil {
		return argfile.Request{}, fmt.Errorf("%w: nginx config file: %w", ErrInvalidRequest, err)
	}
	return req, nil
}

func (w *Workflow) lookupDomain(ctx context.Context, name string) (fqdn.ParsedDomain, error) {
	parsed := fqdn.Resolve(name)

	domains, err := w.dns.ListDomains(ctx)
	if err != nil {
		return parsed, fmt.Errorf("failed to list domains: %w", err)
	}
	for _, d := range domains {
		if strings.EqualFold(d.Name, parsed.RegistrableDomain) {
			w.out.Infof("Domain %s found, A record %s", parsed.RegistrableDomain, parsed.RecordName)
			return parsed, nil
		}
	}
	return parsed, fmt.Errorf("%w: %s", ErrDomainNotFound, parsed.RegistrableDomain)
}

// replace destroys every droplet named name. Destroy failures are reported
// but do not stop the run.
func (w *Workflow) replace(ctx context.Context, name string) ([]string, error) {
	droplets, err := w.cloud.ListDroplets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list droplets: %w", err)
	}

	var destroyed []string
	var errs *multierror.Error
	for _, d := range droplets {
		if d.Name != name {
			continue
		}
		if w.cfg.DropletTag != "" && !d.HasTag(w.cfg.DropletTag) {
			log.WithFields(log.Fields{"droplet": d.ID, "tag": w.cfg.DropletTag}).Debug("provision: skipping untagged droplet")
			continue
		}
		if err := w.cloud.DeleteDroplet(ctx, d.ID); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("droplet %s: %w", d.ID, err))
			continue
		}
		destroyed = append(destroyed, d.ID)
		w.out.Infof("Droplet %s (%s) existed and was destroyed", d.Name, d.ID)
	}

	if err := errs.ErrorOrNil(); err != nil {
		w.out.Errorf("Failed to destroy droplets: %v", err)
		log.WithError(err).Warn("provision: destroy failed")
	}
	return destroyed, nil
}

func (w *Workflow) create(ctx context.Context, name string) (*clouddomain.Droplet, error) {
	keys, err := w.cloud.ListSSHKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ssh keys: %w", err)
	}
	w.checkKey(keys)

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k.ID)
	}
	opts := clouddomain.CreateDropletOpts{
		Name:      name,
		Region:    w.pick(w.cfg.Regions),
		Size:      w.cfg.Size,
		Image:     w.cfg.Image,
		SSHKeyIDs: ids,
		Backups:   w.cfg.Backups,
	}
	if w.cfg.DropletTag != "" {
		opts.Tags = []string{w.cfg.DropletTag}
	}

	droplet, err := w.cloud.CreateDroplet(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create droplet: %w", err)
	}
	if droplet.Region == "" {
		droplet.Region = opts.Region
	}
	w.out.Infof("Creating droplet %s (%s) in %s", droplet.Name, droplet.ID, droplet.Region)
	return droplet, nil
}

func (w *Workflow) checkKey(keys []clouddomain.SSHKey) {
	if w.cfg.KeyFingerprint == "" {
		return
	}
	for _, k := range keys {
		if k.Fingerprint == w.cfg.KeyFingerprint {
			return
		}
	}
	w.out.Errorf("Local key %s is not registered with the account, SSH will likely fail", w.cfg.KeyFingerprint)
}

// resolveIP finds the droplet again by name, preferring the one with
// createdID, and returns its public IPv4 address.
func (w *Workflow) resolveIP(ctx context.Context, name, createdID string) (string, error) {
	droplets, err := w.cloud.ListDroplets(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list droplets: %w", err)
	}

	var match *clouddomain.Droplet
	for i := range droplets {
		d := &droplets[i]
		if d.Name != name {
			continue
		}
		match = d
		if d.ID == createdID {
			break
		}
	}
	if match == nil || match.PublicIPv4 == "" {
		return "", fmt.Errorf("%w: %s", ErrIPUnavailable, name)
	}
	return match.PublicIPv4, nil
}

func (w *Workflow) upsert(ctx context.Context, parsed fqdn.ParsedDomain, ip string) (string, error) {
	_, action, err := w.dns.UpsertRecord(ctx, parsed.RegistrableDomain, dnsdomain.CreateRecordOpts{
		Name:    parsed.RecordName,
		Type:    dnsdomain.RecordTypeA,
		Content: ip,
		TTL:     w.cfg.DNSTTL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert A record %s: %w", parsed.RecordName, err)
	}
	if action == dnsservices.UpsertCreated {
		w.out.Successf("Add new subdomain A record %s", parsed.RecordName)
	} else {
		w.out.Successf("Update domain name A record %s", parsed.RecordName)
	}
	return action, nil
}

func (w *Workflow) save(ctx context.Context, r *run, start time.Time, err error) {
	if w.runs == nil {
		return
	}
	r.record.State = string(r.state)
	r.record.Outcome = runlog.OutcomeSuccess
	if err != nil {
		// The StepError text leads with the step that failed.
		r.record.State = string(StateAborted)
		r.record.Outcome = runlog.OutcomeError
		r.record.Detail = runlog.Redact(err.Error(), w.secrets...)
	}
	r.record.DurationMs = time.Since(start).Milliseconds()

	if serr := w.runs.Save(context.WithoutCancel(ctx), &r.record); serr != nil {
		log.WithError(serr).Warn("provision: failed to record run")
	}
}
