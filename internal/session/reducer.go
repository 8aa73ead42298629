package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jwulff/vidqa/internal/api"
)

// Notice texts shown by the front end.
const (
	MsgNoFile           = "Please choose a video file"
	MsgNoURL            = "Please enter a URL"
	MsgNoTranscript     = "Please upload a video or enter a URL first"
	MsgNoQuestion       = "Please enter a question"
	MsgFileTranscribed  = "Video transcribed successfully!"
	MsgURLTranscribed   = "URL video transcribed successfully!"
	MsgSummaryGenerated = "Summary generated successfully!"
	MsgQuestionAnswered = "Question answered successfully!"
)

// Source tells how a transcription request was started.
type Source int

const (
	SourceFile Source = iota
	SourceURL
)

// Request describes the single backend call a transition asks the caller to
// issue. Seq must be echoed back in the completion action.
type Request struct {
	Kind       Kind
	Seq        uint64
	Source     Source
	FilePath   string
	URL        string
	Transcript string
	Question   string
}

// Action is anything the reducer understands.
type Action interface{ isAction() }

type (
	SelectTab    struct{ Tab Tab }
	NextTab      struct{}
	PrevTab      struct{}
	EditFilePath struct{ Text string }
	EditURL      struct{ Text string }
	EditQuestion struct{ Text string }

	StartFileUpload struct{}
	StartURLUpload  struct{}
	RequestSummary  struct{}
	AskQuestion     struct{}

	TranscribeDone struct {
		Seq        uint64
		Source     Source
		Transcript string
	}
	SummaryDone struct {
		Seq     uint64
		Summary string
	}
	AnswerDone struct {
		Seq    uint64
		Answer string
	}
	// Failed reports a request of Kind that ended with Err.
	Failed struct {
		Kind   Kind
		Seq    uint64
		Source Source
		Err    error
	}

	ClearAll      struct{}
	DismissNotice struct{}
	// NoticeExpired clears a transient success notice if it is still shown.
	NoticeExpired struct{ ID uint64 }
)

func (SelectTab) isAction()       {}
func (NextTab) isAction()         {}
func (PrevTab) isAction()         {}
func (EditFilePath) isAction()    {}
func (EditURL) isAction()         {}
func (EditQuestion) isAction()    {}
func (StartFileUpload) isAction() {}
func (StartURLUpload) isAction()  {}
func (RequestSummary) isAction()  {}
func (AskQuestion) isAction()     {}
func (TranscribeDone) isAction()  {}
func (SummaryDone) isAction()     {}
func (AnswerDone) isAction()      {}
func (Failed) isAction()          {}
func (ClearAll) isAction()        {}
func (DismissNotice) isAction()   {}
func (NoticeExpired) isAction()   {}

// Reduce applies a to s. It returns the next state and, when the transition
// needs the backend, the request to issue. Completion actions that do not
// match the latest request of their kind are ignored.
func Reduce(s State, a Action) (State, *Request) {
	switch a := a.(type) {

	case SelectTab:
		if a.Tab >= 0 && a.Tab < tabCount {
			s.ActiveTab = a.Tab
		}

	case NextTab:
		s.ActiveTab = (s.ActiveTab + 1) % tabCount

	case PrevTab:
		s.ActiveTab = (s.ActiveTab + tabCount - 1) % tabCount

	case EditFilePath:
		s.FilePath = a.Text

	case EditURL:
		s.URL = a.Text

	case EditQuestion:
		s.Question = a.Text

	case StartFileUpload:
		path := strings.TrimSpace(s.FilePath)
		if path == "" {
			s.setNotice(NoticeError, MsgNoFile)
			return s, nil
		}
		if s.loading[KindTranscribe] {
			return s, nil
		}
		seq := s.resetForUpload()
		return s, &Request{Kind: KindTranscribe, Seq: seq, Source: SourceFile, FilePath: path}

	case StartURLUpload:
		url := strings.TrimSpace(s.URL)
		if url == "" {
			s.setNotice(NoticeError, MsgNoURL)
			return s, nil
		}
		if s.loading[KindTranscribe] {
			return s, nil
		}
		seq := s.resetForUpload()
		return s, &Request{Kind: KindTranscribe, Seq: seq, Source: SourceURL, URL: url}

	case RequestSummary:
		if !s.HasTranscript() {
			s.setNotice(NoticeError, MsgNoTranscript)
			return s, nil
		}
		if s.loading[KindSummary] {
			return s, nil
		}
		s.clearNotice()
		seq := s.begin(KindSummary)
		return s, &Request{Kind: KindSummary, Seq: seq, Transcript: s.Transcript}

	case AskQuestion:
		if !s.HasTranscript() {
			s.setNotice(NoticeError, MsgNoTranscript)
			return s, nil
		}
		q := strings.TrimSpace(s.Question)
		if q == "" {
			s.setNotice(NoticeError, MsgNoQuestion)
			return s, nil
		}
		if s.loading[KindAnswer] {
			return s, nil
		}
		s.clearNotice()
		if s.ChatMode {
			s.Messages = append(slices.Clip(s.Messages), Message{Role: RoleUser, Content: q})
		}
		s.pending = q
		seq := s.begin(KindAnswer)
		return s, &Request{Kind: KindAnswer, Seq: seq, Transcript: s.Transcript, Question: q}

	case TranscribeDone:
		if !s.current(KindTranscribe, a.Seq) {
			return s, nil
		}
		s.loading[KindTranscribe] = false
		s.Transcript = a.Transcript
		if a.Source == SourceURL {
			s.setNotice(NoticeSuccess, MsgURLTranscribed)
		} else {
			s.setNotice(NoticeSuccess, MsgFileTranscribed)
		}

	case SummaryDone:
		if !s.current(KindSummary, a.Seq) {
			return s, nil
		}
		s.loading[KindSummary] = false
		s.Summary = a.Summary
		s.setNotice(NoticeSuccess, MsgSummaryGenerated)

	case AnswerDone:
		if !s.current(KindAnswer, a.Seq) {
			return s, nil
		}
		s.loading[KindAnswer] = false
		if s.ChatMode {
			s.Messages = append(slices.Clip(s.Messages), Message{Role: RoleAssistant, Content: a.Answer})
		} else {
			s.Answer = a.Answer
		}
		if strings.TrimSpace(s.Question) == s.pending {
			s.Question = ""
		}
		s.pending = ""
		s.setNotice(NoticeSuccess, MsgQuestionAnswered)

	case Failed:
		if a.Kind < 0 || a.Kind >= kindCount || !s.current(a.Kind, a.Seq) {
			return s, nil
		}
		s.loading[a.Kind] = false
		if a.Kind == KindAnswer {
			s.pending = ""
		}
		s.setNotice(NoticeError, failureText(a.Kind, a.Source, a.Err))

	case ClearAll:
		next := New(s.ChatMode)
		next.seq = s.seq
		next.noticeID = s.noticeID
		for k := Kind(0); k < kindCount; k++ {
			next.invalidate(k)
		}
		return next, nil

	case DismissNotice:
		s.clearNotice()

	case NoticeExpired:
		if s.Notice.ID == a.ID && s.Notice.Level == NoticeSuccess {
			s.clearNotice()
		}
	}

	return s, nil
}

// resetForUpload drops everything tied to the previous transcript and marks
// a new transcription in flight.
func (s *State) resetForUpload() uint64 {
	s.Transcript = ""
	s.Summary = ""
	s.Answer = ""
	s.Messages = nil
	s.pending = ""
	s.clearNotice()
	s.invalidate(KindSummary)
	s.invalidate(KindAnswer)
	return s.begin(KindTranscribe)
}

// failureText turns an error into the notice shown to the user. Backend
// errors are shown verbatim; anything else is prefixed with what failed.
func failureText(k Kind, src Source, err error) string {
	var be *api.BackendError
	if errors.As(err, &be) {
		return be.Message
	}

	var what string
	switch k {
	case KindTranscribe:
		if src == SourceURL {
			what = "Failed to process URL"
		} else {
			what = "Failed to upload and transcribe video"
		}
	case KindSummary:
		what = "Failed to generate summary"
	case KindAnswer:
		what = "Failed to get answer"
	}
	if err == nil {
		return what
	}
	return fmt.Sprintf("%s: %v", what, err)
}
