// Package session holds the client-side session state and the reducer that
// moves it between states in response to user actions and backend results.
package session

import "strings"

// Kind identifies a class of backend request. Each kind has its own loading
// flag and sequence counter.
type Kind int

const (
	KindTranscribe Kind = iota
	KindSummary
	KindAnswer
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindTranscribe:
		return "transcribe"
	case KindSummary:
		return "summary"
	case KindAnswer:
		return "answer"
	}
	return "unknown"
}

// Tab is the visible section of the front end.
type Tab int

const (
	TabUpload Tab = iota
	TabURL
	TabSummary
	TabChat
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabUpload:
		return "Upload"
	case TabURL:
		return "URL"
	case TabSummary:
		return "Summary"
	case TabChat:
		return "Ask"
	}
	return "?"
}

// Tabs lists every tab in display order.
func Tabs() []Tab { return []Tab{TabUpload, TabURL, TabSummary, TabChat} }

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the chat history.
type Message struct {
	Role    Role
	Content string
}

// NoticeLevel distinguishes error from success notifications.
type NoticeLevel int

const (
	NoticeNone NoticeLevel = iota
	NoticeError
	NoticeSuccess
)

// Notice is the single notification slot. A newer notice replaces an older one.
type Notice struct {
	Level NoticeLevel
	Text  string
	ID    uint64
}

// State is the whole session as seen by the view.
type State struct {
	Transcript string
	Summary    string
	Answer     string // single-answer mode only
	Question   string
	URL        string
	FilePath   string
	Messages   []Message // chat mode only

	ActiveTab Tab
	Notice    Notice

	// ChatMode keeps a running question/answer history instead of a single
	// answer slot.
	ChatMode bool

	loading  [kindCount]bool
	seq      [kindCount]uint64
	pending  string // question held while an answer is in flight
	noticeID uint64
}

// New returns the initial state.
func New(chatMode bool) State {
	return State{ChatMode: chatMode, ActiveTab: TabUpload}
}

// Loading reports whether a request of kind k is in flight.
func (s State) Loading(k Kind) bool { return s.loading[k] }

// Busy reports whether any request is in flight.
func (s State) Busy() bool {
	for _, l := range s.loading {
		if l {
			return true
		}
	}
	return false
}

// Seq returns the sequence number of the latest request issued for kind k.
func (s State) Seq(k Kind) uint64 { return s.seq[k] }

// PendingQuestion returns the question whose answer is in flight.
func (s State) PendingQuestion() string { return s.pending }

// HasTranscript reports whether summary and questions are available.
func (s State) HasTranscript() bool { return strings.TrimSpace(s.Transcript) != "" }

// CanSummarize reports whether the summary control is enabled.
func (s State) CanSummarize() bool { return s.HasTranscript() && !s.loading[KindSummary] }

// CanAsk reports whether the ask control is enabled.
func (s State) CanAsk() bool {
	return s.HasTranscript() && !s.loading[KindAnswer] && strings.TrimSpace(s.Question) != ""
}

func (s *State) setNotice(level NoticeLevel, text string) {
	s.noticeID++
	s.Notice = Notice{Level: level, Text: text, ID: s.noticeID}
}

func (s *State) clearNotice() {
	s.Notice = Notice{}
}

// begin marks kind k in flight and returns its new sequence number.
func (s *State) begin(k Kind) uint64 {
	s.seq[k]++
	s.loading[k] = true
	return s.seq[k]
}

// invalidate discards any in-flight result of kind k.
func (s *State) invalidate(k Kind) {
	s.seq[k]++
	s.loading[k] = false
}

// current reports whether seq is the latest request of kind k.
func (s State) current(k Kind, seq uint64) bool {
	return s.loading[k] && s.seq[k] == seq
}
