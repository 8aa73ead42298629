package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/jwulff/vidqa/internal/session"
	"github.com/jwulff/vidqa/internal/ui"
)

// Reserve: header(1) + tabs(1) + divider(1) + divider(1) + notice(1) + footer(1) + padding
const reservedLines = 7

func (m Model) contentWidth() int {
	if m.width == 0 {
		return 78
	}
	return max(20, m.width-2)
}

// bodyVisibleLines is the height of the scrollable area below the pinned lines.
func (m Model) bodyVisibleLines() int {
	height := 24
	if m.height != 0 {
		height = m.height
	}
	return max(3, height-reservedLines-len(m.pinnedLines()))
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, truncateToWidth(m.renderHeader(), m.width))
	sections = append(sections, m.renderTabs())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderBody())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.state.Notice.Level != session.NoticeNone {
		sections = append(sections, truncateToWidth(m.renderNoticeBar(), m.width))
	}

	sections = append(sections, truncateToWidth(m.renderFooter(), m.width))

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("VIDQA")

	var backend string
	if m.apiURL != "" {
		backend = ui.DimStyle.Render(" · " + m.apiURL)
	}

	mode := ui.DimStyle.Render(" [SINGLE ANSWER]")
	if m.state.ChatMode {
		mode = ui.DimStyle.Render(" [CHAT]")
	}

	var busy string
	if m.state.Busy() {
		busy = "  " + ui.SpinnerStyle.Render("⟳ working")
	}

	return title + backend + mode + busy
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, t := range session.Tabs() {
		label := t.String()
		if t == session.TabChat && m.state.ChatMode && len(m.state.Messages) > 0 {
			label = fmt.Sprintf("%s (%d)", label, (len(m.state.Messages)+1)/2)
		}
		if t == m.state.ActiveTab {
			tabs = append(tabs, ui.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, ui.TabStyle.Render(label))
		}
	}
	return strings.Join(tabs, ui.DividerStyle.Render("│"))
}

// pinnedLines are the input and status lines that stay above the scrollable body.
func (m Model) pinnedLines() []string {
	s := m.state
	width := m.contentWidth()
	switch s.ActiveTab {
	case session.TabUpload:
		status := ui.DimStyle.Render("  Enter a path to a video or audio file and press Enter")
		if s.Loading(session.KindTranscribe) {
			status = "  " + ui.SpinnerStyle.Render("⟳ Transcribing...")
		}
		return []string{renderInput("File", s.FilePath, !s.Loading(session.KindTranscribe), width), status}

	case session.TabURL:
		status := ui.DimStyle.Render("  Paste a YouTube (or similar) URL and press Enter")
		if s.Loading(session.KindTranscribe) {
			status = "  " + ui.SpinnerStyle.Render("⟳ Transcribing...")
		}
		return []string{renderInput("URL ", s.URL, !s.Loading(session.KindTranscribe), width), status}

	case session.TabSummary:
		switch {
		case s.Loading(session.KindSummary):
			return []string{"  " + ui.SpinnerStyle.Render("⟳ Summarizing...")}
		case !s.HasTranscript():
			return []string{ui.DimStyle.Render("  Upload a video or enter a URL first")}
		default:
			return []string{ui.DimStyle.Render("  Press Enter to generate a summary")}
		}

	case session.TabChat:
		status := ui.DimStyle.Render("  Type a question and press Enter")
		switch {
		case s.Loading(session.KindAnswer):
			status = "  " + ui.SpinnerStyle.Render("⟳ Thinking...")
		case !s.HasTranscript():
			status = ui.DimStyle.Render("  Upload a video or enter a URL first")
		}
		return []string{renderInput("Ask ", s.Question, true, width), status}
	}
	return nil
}

// renderInput draws a labelled input line. Text wider than the line keeps
// its tail, where the cursor is.
func renderInput(label, text string, enabled bool, width int) string {
	l := ui.InputLabelStyle.Render("  " + label + ": ")
	text = truncateLeftToWidth(text, width-ansi.StringWidth(l)-1)
	if !enabled {
		return l + ui.DimStyle.Render(text)
	}
	return l + ui.InputStyle.Render(text) + ui.CursorStyle.Render("▌")
}

// bodyLines builds the scrollable content of the active tab.
func (m Model) bodyLines(width int) []string {
	s := m.state
	textWidth := max(10, width-2)

	var lines []string
	section := func(title, text, empty string) {
		lines = append(lines, ui.SectionTitleStyle.Render(title))
		if strings.TrimSpace(text) == "" {
			lines = append(lines, ui.DimStyle.Render("  "+empty))
			return
		}
		for _, wl := range wrapText(text, textWidth) {
			lines = append(lines, "  "+wl)
		}
	}

	switch s.ActiveTab {
	case session.TabUpload, session.TabURL:
		section("TRANSCRIPT", s.Transcript, "No transcript yet")

	case session.TabSummary:
		section("SUMMARY", s.Summary, "No summary yet")
		lines = append(lines, "")
		section("TRANSCRIPT", s.Transcript, "No transcript yet")

	case session.TabChat:
		if s.ChatMode {
			lines = append(lines, m.chatLines(textWidth)...)
		} else {
			if q := s.PendingQuestion(); q != "" {
				for i, wl := range wrapText(q, max(10, textWidth-3)) {
					label := "   "
					if i == 0 {
						label = ui.UserLabelStyle.Render("Q: ")
					}
					lines = append(lines, label+wl)
				}
				lines = append(lines, "")
			}
			// Hide the previous answer while a new question is pending.
			if s.Loading(session.KindAnswer) {
				section("ANSWER", "", "Waiting for the answer...")
			} else {
				section("ANSWER", s.Answer, "Ask anything about the video")
			}
		}
	}

	return lines
}

func (m Model) chatLines(textWidth int) []string {
	if len(m.state.Messages) == 0 {
		return []string{ui.DimStyle.Render("  Ask anything about the video")}
	}

	// Prefix: "You: " / " AI: " = 5 chars visible
	const prefixWidth = 5
	indent := strings.Repeat(" ", prefixWidth)

	var lines []string
	for i, msg := range m.state.Messages {
		if i > 0 && msg.Role == session.RoleUser {
			lines = append(lines, "")
		}
		label := ui.UserLabelStyle.Render("You: ")
		if msg.Role == session.RoleAssistant {
			label = ui.AssistantLabelStyle.Render(" AI: ")
		}
		wrapped := wrapText(msg.Content, max(10, textWidth-prefixWidth))
		lines = append(lines, label+wrapped[0])
		for _, wl := range wrapped[1:] {
			lines = append(lines, indent+wl)
		}
	}
	return lines
}

func (m Model) renderBody() string {
	width := m.contentWidth()
	visible := m.bodyVisibleLines()

	var lines []string
	for _, l := range m.pinnedLines() {
		lines = append(lines, truncateToWidth(l, m.width))
	}
	lines = append(lines, "")

	body := m.bodyLines(width)
	start := min(m.scroll, max(0, len(body)-visible))
	end := min(start+visible, len(body))
	for _, l := range body[start:end] {
		lines = append(lines, truncateToWidth(" "+l, m.width))
	}

	// Pad to height
	for len(lines) < visible+len(m.pinnedLines())+1 {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderNoticeBar() string {
	n := m.state.Notice
	if n.Level == session.NoticeError {
		return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(n.Text)
	}
	return ui.SuccessStyle.Render("✓ ") + ui.SuccessTextStyle.Render(n.Text)
}

func (m Model) renderFooter() string {
	var parts []string

	switch m.state.ActiveTab {
	case session.TabUpload:
		parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Upload"))
	case session.TabURL:
		parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Transcribe"))
	case session.TabSummary:
		parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Summarize"))
	case session.TabChat:
		parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Ask"))
	}
	parts = append(parts, ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Switch"))
	parts = append(parts, ui.FooterKeyStyle.Render("↑↓")+ui.FooterDescStyle.Render(" Scroll"))
	if m.state.Notice.Level != session.NoticeNone {
		parts = append(parts, ui.FooterKeyStyle.Render("Esc")+ui.FooterDescStyle.Render(" Dismiss"))
	}
	parts = append(parts, ui.FooterKeyStyle.Render("^L")+ui.FooterDescStyle.Render(" Clear"))
	parts = append(parts, ui.FooterKeyStyle.Render("^C")+ui.FooterDescStyle.Render(" Quit"))

	return strings.Join(parts, "  ")
}

// Helpers

// truncateToWidth cuts s to width terminal cells, keeping escape codes intact.
func truncateToWidth(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// truncateLeftToWidth keeps the last width cells of s.
func truncateLeftToWidth(s string, width int) string {
	w := ansi.StringWidth(s)
	if width <= 0 || w <= width {
		return s
	}
	return ansi.TruncateLeft(s, w-width+1, "…")
}

// wrapText wraps text to width cells. Words longer than a line, and text
// with no spaces at all such as CJK, are broken mid-word.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		paragraph = strings.Join(strings.Fields(paragraph), " ")
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}
		for _, l := range strings.Split(ansi.Wrap(paragraph, width, ""), "\n") {
			lines = append(lines, strings.TrimRight(l, " "))
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
