package app

import (
	"time"

	"github.com/jwulff/vidqa/internal/session"
)

// ResultMsg carries the outcome of one backend request.
type ResultMsg struct {
	Request session.Request
	Text    string // transcript, summary, or answer
	Err     error
	Elapsed time.Duration
}

// ClearTransientNoticeMsg clears a success notice after a timeout.
type ClearTransientNoticeMsg struct {
	ID uint64
}

// journalErrorMsg reports a failed journal write. It only gets logged.
type journalErrorMsg struct{ err error }
