package domain

// ActionStatus represents the state of an asynchronous provider
// operation such as creating a droplet. Callers poll it until it
// reaches a terminal state.
type ActionStatus struct {
	// ID is the provider-specific action identifier, used for polling.
	ID string `json:"id"`

	// Status is the normalised state of the action.
	// Known values: "in-progress", "completed", "errored".
	Status string `json:"status"`

	// Type describes the operation, e.g. "create".
	Type string `json:"type,omitempty"`

	// Progress is a percentage (0-100). Not every provider reports it.
	Progress int `json:"progress"`

	// ErrorMessage contains a human-readable explanation when Status is "errored".
	ErrorMessage string `json:"error_message,omitempty"`
}

const (
	ActionStatusInProgress = "in-progress"
	ActionStatusCompleted  = "completed"
	ActionStatusErrored    = "errored"
)

// IsComplete reports whether the action has finished, regardless of outcome.
func (a *ActionStatus) IsComplete() bool {
	return a.Status == ActionStatusCompleted || a.Status == ActionStatusErrored
}
