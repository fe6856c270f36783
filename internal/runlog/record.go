// Package runlog keeps a local history of provisioning runs so droplets
// left behind by a failed run can be found again.
package runlog

import "time"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Run is one persisted provisioning run.
type Run struct {
	ID          int64     `json:"id" yaml:"id"`
	RunID       string    `json:"run_id" yaml:"run_id"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	DomainName  string    `json:"domain_name" yaml:"domain_name"`
	DropletName string    `json:"droplet_name" yaml:"droplet_name"`
	DropletID   string    `json:"droplet_id,omitempty" yaml:"droplet_id,omitempty"`
	Region      string    `json:"region,omitempty" yaml:"region,omitempty"`
	IP          string    `json:"ip,omitempty" yaml:"ip,omitempty"`
	RecordName  string    `json:"record_name,omitempty" yaml:"record_name,omitempty"`
	State       string    `json:"state" yaml:"state"`
	Outcome     string    `json:"outcome" yaml:"outcome"`
	Detail      string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	DurationMs  int64     `json:"duration_ms" yaml:"duration_ms"`
}
