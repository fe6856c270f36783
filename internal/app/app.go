// Package app resolves configuration, credentials and providers for the
// CLI commands.
package app

import (
	"errors"
	"fmt"

	clouddomain "nathanbeddoewebdev/dropproxy/internal/cloud/domain"
	cloudproviders "nathanbeddoewebdev/dropproxy/internal/cloud/providers"
	"nathanbeddoewebdev/dropproxy/internal/config"
	"nathanbeddoewebdev/dropproxy/internal/credentials"
	dnsproviders "nathanbeddoewebdev/dropproxy/internal/dns/providers"
	dnsservices "nathanbeddoewebdev/dropproxy/internal/dns/services"
	"nathanbeddoewebdev/dropproxy/internal/logging"
	"nathanbeddoewebdev/dropproxy/internal/provision"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Persistent flag names.
const (
	FlagLogLevel      = "log-level"
	FlagLogFile       = "log-file"
	FlagCredentials   = "credentials"
	FlagCloudProvider = "cloud-provider"
	FlagDNSProvider   = "dns-provider"
)

// ErrUsage marks command line errors.
var ErrUsage = errors.New("invalid usage")

// AddPersistentFlags registers the flags every command inherits.
func AddPersistentFlags(flags *pflag.FlagSet) {
	flags.String(FlagLogLevel, logging.DefaultLevel, "Log level: panic, fatal, error, warn, info, debug or trace")
	flags.String(FlagLogFile, "", "Write logs to this file instead of stderr (rotated)")
	flags.String(FlagCredentials, "", "Credential file to read instead of the configured source")
	flags.String(FlagCloudProvider, "", "Cloud provider (default from config, then digitalocean)")
	flags.String(FlagDNSProvider, "", "DNS provider (default from config, then godaddy)")
}

// Options are the command line overrides of the stored configuration.
type Options struct {
	CloudProvider   string
	DNSProvider     string
	CredentialsFile string
}

// OptionsFromFlags reads Options from the persistent flags. Unknown flags
// are left empty.
func OptionsFromFlags(flags *pflag.FlagSet) Options {
	get := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	return Options{
		CloudProvider:   get(FlagCloudProvider),
		DNSProvider:     get(FlagDNSProvider),
		CredentialsFile: get(FlagCredentials),
	}
}

// Env is everything a command needs to talk to the providers.
type Env struct {
	Config   *config.Config
	Creds    credentials.Credentials
	Cloud    clouddomain.Provider
	DNS      *dnsservices.Service
	Workflow provision.Config
}

// Load reads the configuration, loads credentials from the configured
// source and constructs both providers. store is used when the credential
// source is the keychain.
func Load(opts Options, store credentials.Store) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.CloudProvider != "" {
		cfg.CloudProvider = opts.CloudProvider
	}
	if opts.DNSProvider != "" {
		cfg.DNSProvider = opts.DNSProvider
	}
	if opts.CredentialsFile != "" {
		cfg.CredentialsSource = config.SourceFile
		cfg.CredentialsFile = opts.CredentialsFile
	}

	wf, err := cfg.Workflow()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	creds, err := LoadCredentials(cfg, store)
	if err != nil {
		return nil, err
	}

	cloud, err := cloudproviders.Get(cfg.CloudProviderName(), creds)
	if err != nil {
		return nil, err
	}
	dnsProvider, err := dnsproviders.Get(cfg.DNSProviderName(), creds)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"cloud":       cfg.CloudProviderName(),
		"dns":         cfg.DNSProviderName(),
		"credentials": cfg.CredentialsSourceName(),
	}).Debug("app: providers ready")

	return &Env{
		Config:   cfg,
		Creds:    creds,
		Cloud:    cloud,
		DNS:      dnsservices.New(dnsProvider, dnsservices.WithDefaultTTL(wf.DNSTTL)),
		Workflow: wf,
	}, nil
}

// LoadCredentials reads credentials from the source cfg names.
func LoadCredentials(cfg *config.Config, store credentials.Store) (credentials.Credentials, error) {
	switch cfg.CredentialsSourceName() {
	case config.SourceKeyring:
		return credentials.LoadStore(store, cfg.CloudProviderName(), cfg.DNSProviderName())
	case config.SourceFile:
		return credentials.LoadFile(cfg.CredentialsPath())
	default:
		return credentials.Credentials{}, fmt.Errorf("%w: unknown credentials source %q", ErrUsage, cfg.CredentialsSource)
	}
}
