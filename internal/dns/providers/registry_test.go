package providers

import (
	"testing"

	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/dns/domain"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry_RegisterAllNames(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	RegisterAll()

	if diff := cmp.Diff([]string{"godaddy", "route53"}, List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, err := Get("porkbun", credentials.Credentials{}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegistry_EmptyNamePanics(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty name")
		}
	}()
	Register("  ", func(credentials.Credentials) (domain.Provider, error) { return nil, nil })
}
