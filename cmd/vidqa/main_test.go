package main

import (
	"strings"
	"testing"
	"time"

	"github.com/jwulff/vidqa/internal/db"
)

func TestRenderHistory(t *testing.T) {
	created := time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)
	entries := []db.Entry{
		{Op: "transcribe", Source: "file", Seq: 2, Outcome: db.OutcomeLocal, Error: "open upload: no such file", CreatedAt: created},
		{Op: "summary", Seq: 1, Outcome: db.OutcomeOK, Duration: 1500 * time.Millisecond, CreatedAt: created},
	}
	counts := map[string]int{db.OutcomeOK: 1, db.OutcomeLocal: 1}

	out := renderHistory(entries, counts)

	for _, want := range []string{
		"TIME", "OUTCOME", "ERROR",
		"2026-10-18 09:30:00",
		"transcribe", "file", "local_error", "open upload: no such file",
		"summary", "1.5s",
		"ok=1", "local_error=1", "transport_error=0", "discarded=0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[len(lines)-1], "ok=1") {
		t.Errorf("totals should follow the table, last line = %q", lines[len(lines)-1])
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	out := renderHistory(nil, map[string]int{})
	if !strings.Contains(out, "OUTCOME") {
		t.Errorf("empty history should still render headers:\n%s", out)
	}
	if !strings.Contains(out, "ok=0 backend_error=0 transport_error=0 local_error=0 discarded=0") {
		t.Errorf("totals = %q", out)
	}
}
