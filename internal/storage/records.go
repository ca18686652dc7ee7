package storage

import (
	"time"
)

// Status of a journal entry
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Run describes one invocation of encrypt, decrypt or shred
type Run struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Root      string    `json:"root"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished,omitempty"`
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

// Done reports whether FinishRun was called for the run
func (r *Run) Done() bool {
	return !r.Finished.IsZero()
}

// Entry is the outcome for a single file within a run
type Entry struct {
	RunID    string        `json:"run_id"`
	Seq      uint64        `json:"seq"`
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Status   Status        `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Shredded bool          `json:"shredded"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Time     time.Time     `json:"time"`
}
