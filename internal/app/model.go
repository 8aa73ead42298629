package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jwulff/vidqa/internal/api"
	"github.com/jwulff/vidqa/internal/db"
	"github.com/jwulff/vidqa/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Backend is the subset of the API client the TUI drives.
type Backend interface {
	UploadFile(ctx context.Context, path string) (string, error)
	UploadURL(ctx context.Context, url string) (string, error)
	Summarize(ctx context.Context, transcript string) (string, error)
	Ask(ctx context.Context, transcript, question string) (string, error)
}

// Journal records finished requests. *db.Store implements it.
type Journal interface {
	Record(ctx context.Context, e db.Entry) error
}

// Options configures a Model.
type Options struct {
	Backend  Backend
	Journal  Journal // optional
	ChatMode bool
	Timeout  time.Duration // per request; zero means no timeout
	APIURL   string        // shown in the header
}

var errNoBackend = errors.New("no backend configured")

// Model is the root bubbletea model for the vidqa TUI.
type Model struct {
	state session.State

	backend Backend
	journal Journal
	timeout time.Duration
	apiURL  string

	// UI state
	width  int
	height int
	scroll int
}

// New creates a new Model with an empty session.
func New(opts Options) Model {
	return Model{
		state:   session.New(opts.ChatMode),
		backend: opts.Backend,
		journal: opts.Journal,
		timeout: opts.Timeout,
		apiURL:  opts.APIURL,
	}
}

// State returns the current session state.
func (m Model) State() session.State { return m.state }

// Init sets the terminal title. Nothing talks to the backend until the user acts.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("vidqa")
}

// requestCmd issues one backend call and reports its result.
func requestCmd(b Backend, timeout time.Duration, req session.Request) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		var text string
		var err error
		switch req.Kind {
		case session.KindTranscribe:
			if req.Source == session.SourceURL {
				text, err = b.UploadURL(ctx, req.URL)
			} else {
				text, err = b.UploadFile(ctx, req.FilePath)
			}
		case session.KindSummary:
			text, err = b.Summarize(ctx, req.Transcript)
		case session.KindAnswer:
			text, err = b.Ask(ctx, req.Transcript, req.Question)
		}
		return ResultMsg{Request: req, Text: text, Err: err, Elapsed: time.Since(start)}
	}
}

// recordCmd writes a journal entry off the update loop.
func recordCmd(j Journal, e db.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := j.Record(ctx, e); err != nil {
			return journalErrorMsg{err: err}
		}
		return nil
	}
}

// clearTransientNoticeCmd fires after a delay to clear a success notice.
func clearTransientNoticeCmd(id uint64) tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientNoticeMsg{ID: id}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case ResultMsg:
		return m.handleResult(msg)

	case ClearTransientNoticeMsg:
		return m.dispatch(session.NoticeExpired{ID: msg.ID})

	case journalErrorMsg:
		slog.Warn("journal write failed", slog.Any("error", msg.err))
		return m, nil
	}

	return m, nil
}

// dispatch runs a through the reducer and turns the outcome into commands:
// a backend request if one was issued, and a timer for a new success notice.
func (m Model) dispatch(a session.Action) (Model, tea.Cmd) {
	prev := m.state
	next, req := session.Reduce(m.state, a)
	m.state = next

	if next.Transcript != prev.Transcript || next.ActiveTab != prev.ActiveTab {
		m.scroll = 0
	}
	if len(next.Messages) != len(prev.Messages) {
		m.scrollToBottom()
	}

	if req != nil && m.backend == nil {
		return m.dispatch(session.Failed{Kind: req.Kind, Seq: req.Seq, Source: req.Source, Err: errNoBackend})
	}

	var cmds []tea.Cmd
	if req != nil {
		slog.Debug("request issued", slog.String("kind", req.Kind.String()), slog.Uint64("seq", req.Seq))
		cmds = append(cmds, requestCmd(m.backend, m.timeout, *req))
	}
	if n := next.Notice; n.ID != prev.Notice.ID && n.Level == session.NoticeSuccess {
		cmds = append(cmds, clearTransientNoticeCmd(n.ID))
	}
	return m, tea.Batch(cmds...)
}

// handleResult converts a finished request into a completion action.
func (m Model) handleResult(msg ResultMsg) (tea.Model, tea.Cmd) {
	req := msg.Request
	stale := !m.state.Loading(req.Kind) || m.state.Seq(req.Kind) != req.Seq

	var action session.Action
	switch {
	case msg.Err != nil:
		action = session.Failed{Kind: req.Kind, Seq: req.Seq, Source: req.Source, Err: msg.Err}
	case req.Kind == session.KindTranscribe:
		action = session.TranscribeDone{Seq: req.Seq, Source: req.Source, Transcript: msg.Text}
	case req.Kind == session.KindSummary:
		action = session.SummaryDone{Seq: req.Seq, Summary: msg.Text}
	default:
		action = session.AnswerDone{Seq: req.Seq, Answer: msg.Text}
	}

	if stale {
		slog.Debug("discarding stale response", slog.String("kind", req.Kind.String()), slog.Uint64("seq", req.Seq))
	} else if msg.Err != nil {
		slog.Info("request failed", slog.String("kind", req.Kind.String()), slog.Any("error", msg.Err))
	}

	m, cmd := m.dispatch(action)
	if m.journal != nil {
		cmd = tea.Batch(cmd, recordCmd(m.journal, journalEntry(msg, stale)))
	}
	return m, cmd
}

// journalEntry describes a finished request without any of its content.
func journalEntry(msg ResultMsg, stale bool) db.Entry {
	e := db.Entry{
		Op:       msg.Request.Kind.String(),
		Seq:      msg.Request.Seq,
		Outcome:  db.OutcomeOK,
		Duration: msg.Elapsed,
	}
	if msg.Request.Kind == session.KindTranscribe {
		e.Source = "file"
		if msg.Request.Source == session.SourceURL {
			e.Source = "url"
		}
	}

	switch {
	case stale:
		e.Outcome = db.OutcomeDiscarded
	case msg.Err == nil:
	case api.IsBackendError(msg.Err):
		e.Outcome = db.OutcomeBackend
	case api.IsTransportError(msg.Err):
		e.Outcome = db.OutcomeTransport
	default:
		// Failed before anything was sent, e.g. the upload file is missing.
		e.Outcome = db.OutcomeLocal
	}
	if msg.Err != nil {
		e.Error = msg.Err.Error()
	}
	return e
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Typed and pasted text goes to the active input before any binding.
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		text, ok := m.input()
		if !ok {
			return m, nil
		}
		typed := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			typed = " "
		}
		return m.setInput(text + typed)
	}

	switch msg.String() {
	case KeyCtrlC:
		return m, tea.Quit

	case KeyTab:
		return m.dispatch(session.NextTab{})

	case KeyShiftTab:
		return m.dispatch(session.PrevTab{})

	case KeyEsc:
		return m.dispatch(session.DismissNotice{})

	case KeyClearAll:
		return m.dispatch(session.ClearAll{})

	case KeyEnter:
		return m.submit()

	case KeyUp:
		m.scrollBy(-1)
		return m, nil

	case KeyDown:
		m.scrollBy(1)
		return m, nil

	case KeyPgUp:
		m.scrollBy(-m.bodyVisibleLines())
		return m, nil

	case KeyPgDown:
		m.scrollBy(m.bodyVisibleLines())
		return m, nil

	case KeyBackspace:
		text, ok := m.input()
		if !ok || text == "" {
			return m, nil
		}
		runes := []rune(text)
		return m.setInput(string(runes[:len(runes)-1]))

	case KeyClearLine:
		if _, ok := m.input(); !ok {
			return m, nil
		}
		return m.setInput("")
	}

	return m, nil
}

// submit triggers the active tab's action.
func (m Model) submit() (tea.Model, tea.Cmd) {
	switch m.state.ActiveTab {
	case session.TabUpload:
		return m.dispatch(session.StartFileUpload{})
	case session.TabURL:
		return m.dispatch(session.StartURLUpload{})
	case session.TabSummary:
		return m.dispatch(session.RequestSummary{})
	case session.TabChat:
		return m.dispatch(session.AskQuestion{})
	}
	return m, nil
}

// input returns the text of the active tab's input field, if it has one
// that accepts edits. The file and URL inputs are locked while transcribing.
func (m Model) input() (string, bool) {
	transcribing := m.state.Loading(session.KindTranscribe)
	switch m.state.ActiveTab {
	case session.TabUpload:
		return m.state.FilePath, !transcribing
	case session.TabURL:
		return m.state.URL, !transcribing
	case session.TabChat:
		return m.state.Question, true
	}
	return "", false
}

func (m Model) setInput(text string) (tea.Model, tea.Cmd) {
	switch m.state.ActiveTab {
	case session.TabUpload:
		return m.dispatch(session.EditFilePath{Text: text})
	case session.TabURL:
		return m.dispatch(session.EditURL{Text: text})
	case session.TabChat:
		return m.dispatch(session.EditQuestion{Text: text})
	}
	return m, nil
}

func (m *Model) scrollBy(n int) {
	m.scroll += n
	m.clampScroll()
}

func (m *Model) scrollToBottom() {
	m.scroll = m.maxScroll()
}

func (m *Model) clampScroll() {
	if s := m.maxScroll(); m.scroll > s {
		m.scroll = s
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m Model) maxScroll() int {
	total := len(m.bodyLines(m.contentWidth()))
	visible := m.bodyVisibleLines()
	if total <= visible {
		return 0
	}
	return total - visible
}
