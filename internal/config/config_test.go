package config

import (
	"os"
	"path/filepath"
	"testing"

	"nathanbeddoewebdev/dropproxy/internal/provision"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CloudProvider != "" {
		t.Errorf("expected empty CloudProvider, got %q", cfg.CloudProvider)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dropproxy", "config.json")

	want := &Config{
		CloudProvider:       "hetzner",
		DNSProvider:         "route53",
		Regions:             []string{"fsn1", "nbg1"},
		DNSTTL:              300,
		RemoteFailurePolicy: "best-effort",
	}
	if err := want.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	path := filepath.Join(dir, "config.json")

	cfg := &Config{CloudProvider: "hetzner"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify the file exists.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	first := &Config{CloudProvider: "hetzner"}
	if err := first.SaveTo(path); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := &Config{CloudProvider: "digitalocean"}
	if err := second.SaveTo(path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.CloudProvider != "digitalocean" {
		t.Errorf("expected CloudProvider %q, got %q", "digitalocean", got.CloudProvider)
	}
}

func TestLoad_EmptyCloudProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CloudProvider != "" {
		t.Errorf("expected empty CloudProvider, got %q", cfg.CloudProvider)
	}
}

func TestWorkflow_Defaults(t *testing.T) {
	cfg := &Config{}

	got, err := cfg.Workflow()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(provision.DefaultConfig(), got); diff != "" {
		t.Errorf("workflow config mismatch (-want +got):\n%s", diff)
	}
	if cfg.CloudProviderName() != "digitalocean" || cfg.DNSProviderName() != "godaddy" {
		t.Errorf("providers = %q, %q", cfg.CloudProviderName(), cfg.DNSProviderName())
	}
	if cfg.CredentialsSourceName() != SourceFile || cfg.CredentialsPath() != "keys.txt" {
		t.Errorf("credentials = %q, %q", cfg.CredentialsSourceName(), cfg.CredentialsPath())
	}
}

func TestWorkflow_Overrides(t *testing.T) {
	cfg := &Config{
		Regions:             []string{"nyc3"},
		Image:               "ubuntu-24-04-x64",
		Size:                "s-2vcpu-2gb",
		SSHUser:             "deploy",
		SSHKey:              "~/.ssh/id_ed25519",
		DNSTTL:              300,
		RemoteFailurePolicy: "best-effort",
		DropletTag:          "dropproxy",
	}

	got, err := cfg.Workflow()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := provision.DefaultConfig()
	want.Regions = []string{"nyc3"}
	want.Image = "ubuntu-24-04-x64"
	want.Size = "s-2vcpu-2gb"
	want.SSHUser = "deploy"
	want.SSHKeyPath = "~/.ssh/id_ed25519"
	want.DNSTTL = 300
	want.RemoteFailurePolicy = provision.PolicyBestEffort
	want.DropletTag = "dropproxy"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("workflow config mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkflow_InvalidPolicy(t *testing.T) {
	cfg := &Config{RemoteFailurePolicy: "sometimes"}
	if _, err := cfg.Workflow(); err == nil {
		t.Fatal("expected error for unknown policy, got nil")
	}
}
