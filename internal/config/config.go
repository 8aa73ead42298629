// Package config loads vidqa settings from the environment.
package config

import (
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/jwulff/vidqa/internal/api"
)

// Config holds all runtime settings, injected from main.
type Config struct {
	APIURL         string        // backend base URL
	ChatMode       bool          // chat history instead of a single answer
	RequestTimeout time.Duration // per backend request; transcription is slow
	JournalPath    string        // SQLite request journal; empty disables it
	LogFile        string        // TUI log destination; empty discards logs
	HistoryLimit   int           // rows printed by `vidqa history`
}

// Load reads the configuration from VIDQA_* environment variables.
func Load() Config {
	return Config{
		APIURL:         env.Str("VIDQA_API_URL", api.DefaultBaseURL),
		ChatMode:       parseBool(env.Str("VIDQA_CHAT_MODE", "true"), true),
		RequestTimeout: env.Duration("VIDQA_TIMEOUT", 10*time.Minute),
		JournalPath:    env.Str("VIDQA_JOURNAL", ""),
		LogFile:        env.Str("VIDQA_LOG", ""),
		HistoryLimit:   env.Int("VIDQA_HISTORY_LIMIT", 20),
	}
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
