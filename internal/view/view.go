// Package view turns chat state into terminal text. Every function is pure so
// the same output drives the full-screen UI, the line REPL and the tests.
package view

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"AskChat/internal/answer"
)

const (
	Title    = "Professional AI Chatbot"
	Subtitle = "Ask me about productivity, remote work, startups, and more!"

	HistoryTitle       = "Recent Questions"
	EmptyHistory       = "No chat history yet. Ask a question to get started!"
	InputPlaceholder   = "Ask a professional question..."
	SubmitLabel        = "Ask"
	LoadingLabel       = "Thinking..."
	AnswerTitle        = "Answer:"
	AIBadge            = "AI-generated answer"
	KnowledgeBaseBadge = "From knowledge base"

	// PreviewLength is how many characters of an answer the history panel shows.
	PreviewLength = 50
	Ellipsis      = "..."
)

// Styles holds the terminal styles used for each element.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Heading  lipgloss.Style
	Label    lipgloss.Style
	Tag      lipgloss.Style
	Cursor   lipgloss.Style
	Matched  lipgloss.Style
	AIBadge  lipgloss.Style
	KBBadge  lipgloss.Style
	Muted    lipgloss.Style
}

// DefaultStyles returns the colored styles for interactive terminals.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Heading:  lipgloss.NewStyle().Bold(true),
		Label:    lipgloss.NewStyle().Bold(true),
		Tag:      lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")),
		Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Matched:  lipgloss.NewStyle().Italic(true),
		AIBadge:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		KBBadge:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// PlainStyles renders every element as-is.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Subtitle: plain, Heading: plain, Label: plain, Tag: plain,
		Cursor: plain, Matched: plain, AIBadge: plain, KBBadge: plain, Muted: plain,
	}
}

// Header is the banner at the top of the screen.
func Header(st Styles) string {
	return st.Title.Render(Title) + "\n" + st.Subtitle.Render(Subtitle)
}

// Preview returns the first PreviewLength characters of an answer followed by
// the ellipsis. Characters are runes, so multi-byte text is never split.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) > PreviewLength {
		runes = runes[:PreviewLength]
	}
	return string(runes) + Ellipsis
}

// SourceTag is the short history annotation for a source, or "" for none.
func SourceTag(source answer.Source) string {
	switch source {
	case answer.SourceOpenRouter:
		return "AI"
	case answer.SourceKnowledgeBase:
		return "KB"
	default:
		return ""
	}
}

// Badge is the answer panel annotation for a source, or "" for none.
func Badge(source answer.Source) string {
	switch source {
	case answer.SourceOpenRouter:
		return AIBadge
	case answer.SourceKnowledgeBase:
		return KnowledgeBaseBadge
	default:
		return ""
	}
}

// ButtonLabel is the submit control text.
func ButtonLabel(loading bool) string {
	if loading {
		return LoadingLabel
	}
	return SubmitLabel
}

// HistoryItem renders one entry. selected marks the entry under the cursor.
func HistoryItem(st Styles, e answer.Entry, selected bool) string {
	marker := "  "
	if selected {
		marker = st.Cursor.Render("> ")
	}
	return historyItem(st, e, marker)
}

func historyItem(st Styles, e answer.Entry, marker string) string {
	indent := strings.Repeat(" ", lipgloss.Width(marker))

	var b strings.Builder
	b.WriteString(marker + st.Label.Render("Q:") + " " + e.Question + "\n")
	b.WriteString(indent + st.Label.Render("A:") + " " + Preview(e.Answer))
	if tag := SourceTag(e.Source); tag != "" {
		b.WriteString(" " + st.Tag.Render("["+tag+"]"))
	}
	return b.String()
}

// HistoryPanel renders the list of past exchanges in service order.
// cursor is the selected index, or -1 for none.
func HistoryPanel(st Styles, entries []answer.Entry, cursor int) string {
	var b strings.Builder
	b.WriteString(st.Heading.Render(HistoryTitle))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(st.Muted.Render(EmptyHistory))
		return b.String()
	}

	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = HistoryItem(st, e, i == cursor)
	}
	b.WriteString(strings.Join(items, "\n"))
	return b.String()
}

// MatchedQuestionPanel renders the matched question, or "" when there is none.
func MatchedQuestionPanel(st Styles, matched string) string {
	if matched == "" {
		return ""
	}
	return "Matched question: " + st.Matched.Render(`"`+matched+`"`)
}

// AnswerPanel renders the answer with its badge, or "" when there is no answer.
// body is the answer as it should be displayed, which may already be formatted.
func AnswerPanel(st Styles, body string, source answer.Source) string {
	if body == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(st.Heading.Render(AnswerTitle))
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(body, "\n"))

	switch badge := Badge(source); source {
	case answer.SourceOpenRouter:
		b.WriteString("\n" + st.AIBadge.Render(badge))
	case answer.SourceKnowledgeBase:
		b.WriteString("\n" + st.KBBadge.Render(badge))
	}
	return b.String()
}

// NumberedHistoryPanel is HistoryPanel with a 1-based index before each entry,
// for front ends that select entries by number.
func NumberedHistoryPanel(st Styles, entries []answer.Entry) string {
	var b strings.Builder
	b.WriteString(st.Heading.Render(HistoryTitle))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(st.Muted.Render(EmptyHistory))
		return b.String()
	}

	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = historyItem(st, e, strconv.Itoa(i+1)+". ")
	}
	b.WriteString(strings.Join(items, "\n"))
	return b.String()
}
