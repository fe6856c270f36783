package provision

import (
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-cmp/cmp"
)

func TestCommands(t *testing.T) {
	got := Commands("/home", "s.example.com.conf")
	want := []string{
		"sudo apt-get update -y",
		"sudo apt-get upgrade -y",
		"sudo apt install nginx -y",
		"sudo cp /home/s.example.com.conf /etc/nginx/sites-available/s.example.com.conf",
		"ln -s /etc/nginx/sites-available/s.example.com.conf /etc/nginx/sites-enabled/s.example.com.conf",
		"systemctl restart nginx",
		"sudo rm -rf /home/s.example.com.conf",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Commands mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoteBackOffBoundsAttempts(t *testing.T) {
	h := newHarness()
	h.cfg.RemoteAttempts = 1
	b := h.workflow().remoteBackOff()

	if d := b.NextBackOff(); d != backoff.Stop {
		t.Errorf("NextBackOff = %v, want Stop after a single attempt", d)
	}
}
