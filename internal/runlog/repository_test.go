package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func tempRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dropproxy.db")
	r, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSave_AssignsIDRunIDAndTimestamp(t *testing.T) {
	r := tempRepo(t)

	run := &Run{
		DomainName:  "app.test.com",
		DropletName: "d1",
		State:       "done",
		Outcome:     OutcomeSuccess,
	}
	if err := r.Save(context.Background(), run); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if run.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if run.RunID == "" {
		t.Error("expected RunID to be assigned")
	}
	if run.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestSave_KeepsGivenRunID(t *testing.T) {
	r := tempRepo(t)

	run := &Run{RunID: "fixed", DropletName: "d1", Outcome: OutcomeError}
	if err := r.Save(context.Background(), run); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	runs, err := r.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "fixed" {
		t.Errorf("runs = %+v, want one run with RunID fixed", runs)
	}
}

func TestList(t *testing.T) {
	r := tempRepo(t)

	for i := range 3 {
		run := &Run{
			DropletName: "d1",
			Outcome:     OutcomeSuccess,
			Timestamp:   time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := r.Save(context.Background(), run); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	runs, err := r.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("expected runs sorted by timestamp descending")
	}
}

func TestListByDroplet(t *testing.T) {
	r := tempRepo(t)

	runs := []*Run{
		{DropletName: "d1", DropletID: "101", Outcome: OutcomeError, State: "aborted"},
		{DropletName: "d2", Outcome: OutcomeSuccess},
		{DropletName: "d1", DropletID: "102", Outcome: OutcomeSuccess, State: "done"},
	}
	for _, run := range runs {
		if err := r.Save(context.Background(), run); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := r.ListByDroplet(context.Background(), "d1", 10)
	if err != nil {
		t.Fatalf("ListByDroplet failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	for _, run := range got {
		if run.DropletName != "d1" {
			t.Errorf("unexpected droplet %q", run.DropletName)
		}
	}
}

func TestPrune(t *testing.T) {
	r := tempRepo(t)

	old := &Run{DropletName: "old", Outcome: OutcomeSuccess, Timestamp: time.Now().UTC().Add(-48 * time.Hour)}
	recent := &Run{DropletName: "recent", Outcome: OutcomeSuccess}
	for _, run := range []*Run{old, recent} {
		if err := r.Save(context.Background(), run); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	n, err := r.Prune(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d runs, want 1", n)
	}

	runs, err := r.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].DropletName != "recent" {
		t.Errorf("remaining runs = %+v", runs)
	}
}

func TestRedact(t *testing.T) {
	got := Redact("auth failed for token abc123 and key k1", "abc123", "", "k1")
	want := "auth failed for token <redacted> and key <redacted>"
	if got != want {
		t.Errorf("Redact = %q, want %q", got, want)
	}
}
