// Package db provides the SQLite request journal. It records request
// metadata only; transcripts, summaries, and answers are never stored.
package db

import "time"

// Outcome values recorded for a finished request.
const (
	OutcomeOK        = "ok"
	OutcomeBackend   = "backend_error"
	OutcomeTransport = "transport_error"
	OutcomeDiscarded = "discarded"
	OutcomeLocal     = "local_error" // failed before a request was sent
)

// Entry is one finished backend request.
type Entry struct {
	ID        int64
	Op        string // transcribe, summary, answer
	Source    string // file or url for transcribe, empty otherwise
	Seq       uint64
	Outcome   string
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}
