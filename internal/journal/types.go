package journal

import "time"

// Boot is one process start.
type Boot struct {
	ID        string    `json:"id"`
	Node      string    `json:"node"`
	Strategy  string    `json:"strategy"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
}

// Fault is one transition into the faulted state.
type Fault struct {
	ID         string    `json:"id"`
	BootID     string    `json:"boot_id,omitempty"`
	Node       string    `json:"node"`
	Step       string    `json:"step"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}
