package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is where the backend listens when run locally.
const DefaultBaseURL = "http://127.0.0.1:8000"

// Client talks to the transcription backend over HTTP.
// It never retries, caches, or deduplicates requests.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// UploadFile streams the file at path to the backend and returns its transcript.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return c.Upload(ctx, filepath.Base(path), f)
}

// Upload sends r as a multipart file named filename and returns the transcript.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(FileField, filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	resp, err := c.do(ctx, PathUpload, mw.FormDataContentType(), pr)
	if err != nil {
		return "", err
	}
	return field(PathUpload, resp.Transcript, "transcript")
}

// UploadURL asks the backend to fetch and transcribe the media at url.
// Only emptiness is checked here; the backend validates the URL itself.
func (c *Client) UploadURL(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", ErrEmptyURL
	}
	resp, err := c.postJSON(ctx, PathUploadURL, URLRequest{URL: url})
	if err != nil {
		return "", err
	}
	return field(PathUploadURL, resp.Transcript, "transcript")
}

// Summarize requests a summary of transcript.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}
	resp, err := c.postJSON(ctx, PathSummary, SummaryRequest{Transcript: transcript})
	if err != nil {
		return "", err
	}
	return field(PathSummary, resp.Summary, "summary")
}

// Ask asks question against transcript and returns the backend's answer.
func (c *Client) Ask(ctx context.Context, transcript, question string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	resp, err := c.postJSON(ctx, PathAsk, AskRequest{Transcript: transcript, Question: question})
	if err != nil {
		return "", err
	}
	return field(PathAsk, resp.Answer, "answer")
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(data))
}

// do sends one POST and decodes the response envelope. A non-empty error
// field wins over the HTTP status.
func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return Response{}, &TransportError{Op: path, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("backend request failed", slog.String("path", path), slog.Any("error", err))
		return Response{}, &TransportError{Op: path, Err: err}
	}
	defer httpResp.Body.Close()

	slog.Debug("backend response",
		slog.String("path", path),
		slog.Int("status", httpResp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return Response{}, &TransportError{
			Op:     path,
			Status: statusIfFailed(httpResp.StatusCode),
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}

	if resp.Error != "" {
		return resp, &BackendError{Op: path, Message: resp.Error}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, &TransportError{
			Op:     path,
			Status: httpResp.StatusCode,
			Err:    errors.New(http.StatusText(httpResp.StatusCode)),
		}
	}

	return resp, nil
}

func field(op string, v *string, name string) (string, error) {
	if v == nil {
		return "", &TransportError{Op: op, Err: fmt.Errorf("response missing %q", name)}
	}
	return *v, nil
}

func statusIfFailed(code int) int {
	if code < 200 || code > 299 {
		return code
	}
	return 0
}
