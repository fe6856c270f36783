package provision

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/dropproxy/internal/argfile"
	"nathanbeddoewebdev/dropproxy/internal/remote"
)

var (
	ErrMissingConfiguration = argfile.ErrMissingConfiguration
	ErrInvalidRequest       = argfile.ErrInvalidRequest

	// ErrDomainNotFound means the registrable domain is not in the DNS
	// account.
	ErrDomainNotFound = errors.New("domain not found")

	// ErrIPUnavailable means the new droplet has no public IPv4 address.
	ErrIPUnavailable = errors.New("droplet has no public IPv4 address")

	ErrRemoteUnreachable = remote.ErrUnreachable
	ErrRemoteSession     = remote.ErrSession

	ErrActionTimedOut = errors.New("timed out waiting for droplet action")
	ErrActionFailed   = errors.New("droplet action failed")

	// ErrInterrupted means the run was cancelled or its output was closed.
	ErrInterrupted = errors.New("interrupted")
)

// State is a step of the provisioning workflow.
type State string

const (
	StateValidating     State = "validating"
	StateDomainLookup   State = "domain-lookup"
	StateDropletReplace State = "droplet-replace"
	StateDropletCreate  State = "droplet-create"
	StateDropletPoll    State = "droplet-poll"
	StateRemoteSetup    State = "remote-setup"
	StateDNSUpsert      State = "dns-upsert"
	StateDone           State = "done"

	// StateAborted is recorded in the run log for a failed run. The
	// StepError carries the step it failed in.
	StateAborted State = "aborted"
)

// StepError reports the state a run aborted in.
type StepError struct {
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
