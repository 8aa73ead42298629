package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startMockBackend serves a canned response for every request and records
// the last request it saw.
func startMockBackend(t *testing.T, status int, body any) (*httptest.Server, *recorded) {
	t.Helper()

	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls.Add(1)
		rec.path = r.URL.Path
		rec.method = r.Method
		rec.contentType = r.Header.Get("Content-Type")

		if r.Header.Get("Content-Type") == "application/json" {
			rec.body, _ = io.ReadAll(r.Body)
		} else if err := r.ParseMultipartForm(1 << 20); err == nil {
			f, hdr, err := r.FormFile(FileField)
			if err == nil {
				rec.filename = hdr.Filename
				rec.body, _ = io.ReadAll(f)
				f.Close()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch b := body.(type) {
		case string:
			io.WriteString(w, b)
		default:
			json.NewEncoder(w).Encode(b)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

type recorded struct {
	calls       atomic.Int32
	path        string
	method      string
	contentType string
	filename    string
	body        []byte
}

func TestUploadFile(t *testing.T) {
	srv, rec := startMockBackend(t, http.StatusOK, Response{Transcript: StringPtr("Hello world")})

	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake video bytes"), 0o644))

	got, err := New(srv.URL).UploadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Hello world", got)
	assert.Equal(t, PathUpload, rec.path)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "clip.mp4", rec.filename)
	assert.Equal(t, "fake video bytes", string(rec.body))
}

func TestUploadFileMissing(t *testing.T) {
	srv, rec := startMockBackend(t, http.StatusOK, Response{Transcript: StringPtr("x")})

	_, err := New(srv.URL).UploadFile(context.Background(), "/nonexistent/clip.mp4")
	require.Error(t, err)
	assert.Zero(t, rec.calls.Load(), "no request should be sent for a missing file")
}

func TestUploadURL(t *testing.T) {
	srv, rec := startMockBackend(t, http.StatusOK, Response{Transcript: StringPtr("from youtube")})

	got, err := New(srv.URL).UploadURL(context.Background(), "  https://youtu.be/abc  ")
	require.NoError(t, err)
	assert.Equal(t, "from youtube", got)
	assert.Equal(t, PathUploadURL, rec.path)

	var body URLRequest
	require.NoError(t, json.Unmarshal(rec.body, &body))
	assert.Equal(t, "https://youtu.be/abc", body.URL)
}

func TestUploadURLBlank(t *testing.T) {
	srv, rec := startMockBackend(t, http.StatusOK, Response{Transcript: StringPtr("x")})

	_, err := New(srv.URL).UploadURL(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyURL)
	assert.Zero(t, rec.calls.Load())
}

func TestSummarize(t *testing.T) {
	srv, rec := startMockBackend(t, http.StatusOK, Response{Summary: StringPtr("Greeting.")})

	got, err := New(srv.URL).Summarize(context.Background(), "Hello world")
	require.NoError(t, err)
	assert.Equal(t, "Greeting.", got)
	assert.Equal(t, PathSummary, rec.path)
	assert.JSONEq(t, `{"transcript":"Hello world"}`, string(rec.body))
}

func TestAsk(t *testing.T) {
	srv, rec := startMockBackend(t, http.StatusOK, Response{Answer: StringPtr("English.")})

	got, err := New(srv.URL).Ask(context.Background(), "Hello world", "What language?")
	require.NoError(t, err)
	assert.Equal(t, "English.", got)
	assert.Equal(t, PathAsk, rec.path)
	assert.JSONEq(t, `{"transcript":"Hello world","question":"What language?"}`, string(rec.body))
}

func TestPreconditionsSkipNetwork(t *testing.T) {
	srv, rec := startMockBackend(t, http.StatusOK, Response{Answer: StringPtr("x")})
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.Summarize(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyTranscript)

	_, err = c.Ask(ctx, "", "why?")
	assert.ErrorIs(t, err, ErrEmptyTranscript)

	_, err = c.Ask(ctx, "Hello world", " \t ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	assert.Zero(t, rec.calls.Load())
}

func TestBackendErrorField(t *testing.T) {
	srv, _ := startMockBackend(t, http.StatusOK, Response{Error: "unsupported file type"})

	_, err := New(srv.URL).Summarize(context.Background(), "Hello world")
	require.Error(t, err)
	assert.True(t, IsBackendError(err))
	assert.False(t, IsTransportError(err))
	assert.Equal(t, "unsupported file type", err.Error())
}

func TestBackendErrorFieldWinsOverStatus(t *testing.T) {
	srv, _ := startMockBackend(t, http.StatusInternalServerError, Response{Error: "model failure"})

	_, err := New(srv.URL).Ask(context.Background(), "t", "q")
	assert.True(t, IsBackendError(err))
}

func TestTransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
	}{
		{"non-json body", http.StatusOK, "<html>oops</html>"},
		{"missing field", http.StatusOK, Response{}},
		{"bad status", http.StatusUnprocessableEntity, map[string]any{"detail": "field required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := startMockBackend(t, tt.status, tt.body)

			_, err := New(srv.URL).Summarize(context.Background(), "Hello world")
			require.Error(t, err)
			assert.True(t, IsTransportError(err), "err = %v", err)
			assert.False(t, IsBackendError(err))
		})
	}
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).UploadURL(context.Background(), "https://youtu.be/abc")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).Summarize(context.Background(), "Hello world")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:8000/")
	assert.Equal(t, "http://localhost:8000", c.BaseURL())

	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
}
