// Package api provides the client and wire types for talking to the
// transcription backend over HTTP using JSON and multipart uploads.
package api

// Endpoint paths relative to the backend base URL.
const (
	PathUpload    = "/upload"
	PathUploadURL = "/upload-url"
	PathSummary   = "/summary"
	PathAsk       = "/ask"
)

// FileField is the multipart form field carrying the uploaded media.
const FileField = "file"

// URLRequest is the body of an upload-url request.
type URLRequest struct {
	URL string `json:"url"`
}

// SummaryRequest is the body of a summary request.
type SummaryRequest struct {
	Transcript string `json:"transcript"`
}

// AskRequest is the body of an ask request.
type AskRequest struct {
	Transcript string `json:"transcript"`
	Question   string `json:"question"`
}

// Response is the envelope every endpoint answers with. Exactly one of the
// payload fields is expected on success; Error is set on failure.
type Response struct {
	Transcript *string `json:"transcript,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	Answer     *string `json:"answer,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// StringPtr returns a pointer to s. Convenience for building responses.
func StringPtr(s string) *string { return &s }
