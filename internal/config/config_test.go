package config

import (
	"os"
	"testing"
	"time"

	"github.com/jwulff/vidqa/internal/api"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"VIDQA_API_URL", "VIDQA_CHAT_MODE", "VIDQA_TIMEOUT", "VIDQA_JOURNAL"} {
		t.Setenv(k, "") // restored after the test
		os.Unsetenv(k)
	}

	c := Load()
	if c.APIURL != api.DefaultBaseURL {
		t.Errorf("APIURL = %q", c.APIURL)
	}
	if !c.ChatMode {
		t.Error("chat mode should default to on")
	}
	if c.RequestTimeout != 10*time.Minute {
		t.Errorf("RequestTimeout = %v", c.RequestTimeout)
	}
	if c.JournalPath != "" {
		t.Errorf("JournalPath = %q", c.JournalPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VIDQA_API_URL", "http://backend:9000")
	t.Setenv("VIDQA_CHAT_MODE", "false")
	t.Setenv("VIDQA_TIMEOUT", "30s")
	t.Setenv("VIDQA_JOURNAL", "/tmp/vidqa.sqlite")

	c := Load()
	if c.APIURL != "http://backend:9000" {
		t.Errorf("APIURL = %q", c.APIURL)
	}
	if c.ChatMode {
		t.Error("chat mode should be off")
	}
	if c.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", c.RequestTimeout)
	}
	if c.JournalPath != "/tmp/vidqa.sqlite" {
		t.Errorf("JournalPath = %q", c.JournalPath)
	}
}

func TestParseBool(t *testing.T) {
	if !parseBool("garbage", true) {
		t.Error("invalid input should fall back to the default")
	}
	if parseBool("0", true) {
		t.Error(`"0" should parse as false`)
	}
}
