package view

import (
	"strings"
	"testing"

	"AskChat/internal/answer"
)

func TestPreview(t *testing.T) {
	long := strings.Repeat("x", 80)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long answer is cut at 50", long, strings.Repeat("x", 50) + "..."},
		{"short answer keeps ellipsis", "Hello!", "Hello!..."},
		{"exactly 50", strings.Repeat("y", 50), strings.Repeat("y", 50) + "..."},
		{"counts runes", strings.Repeat("é", 60), strings.Repeat("é", 50) + "..."},
		{"empty", "", "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Preview(tc.in); got != tc.want {
				t.Errorf("Preview() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHistoryPanel_Empty(t *testing.T) {
	for _, entries := range [][]answer.Entry{nil, {}} {
		out := HistoryPanel(PlainStyles(), entries, -1)
		if !strings.Contains(out, EmptyHistory) {
			t.Errorf("expected placeholder, got %q", out)
		}
	}
}

func TestHistoryPanel_Entries(t *testing.T) {
	kbAnswer := "To improve productivity, try techniques like time blocking, prioritizing tasks."
	aiAnswer := "Hello! I'm your professional AI assistant."
	entries := []answer.Entry{
		{Question: "How can I improve my productivity?", Answer: kbAnswer, Source: answer.SourceKnowledgeBase},
		{Question: "hello", Answer: aiAnswer, Source: answer.SourceOpenRouter},
	}

	out := HistoryPanel(PlainStyles(), entries, -1)

	if strings.Contains(out, EmptyHistory) {
		t.Error("placeholder must not be shown when history has entries")
	}
	lines := strings.Split(out, "\n")
	want := []string{
		HistoryTitle,
		"  Q: How can I improve my productivity?",
		"  A: " + kbAnswer[:50] + "... [KB]",
		"  Q: hello",
		"  A: " + aiAnswer + "... [AI]",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestHistoryItem_NoTagForOtherSources(t *testing.T) {
	for _, src := range []answer.Source{answer.SourceUnset, answer.SourceUnknown, answer.SourceError} {
		out := HistoryItem(PlainStyles(), answer.Entry{Question: "q", Answer: "a", Source: src}, false)
		if strings.Contains(out, "[AI]") || strings.Contains(out, "[KB]") {
			t.Errorf("source %q should have no tag: %q", src, out)
		}
	}
}

func TestHistoryItem_Cursor(t *testing.T) {
	out := HistoryItem(PlainStyles(), answer.Entry{Question: "q", Answer: "a"}, true)
	if !strings.HasPrefix(out, "> Q: q") {
		t.Errorf("selected item should be marked: %q", out)
	}
}

func TestAnswerPanel(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		source    answer.Source
		wantEmpty bool
		wantBadge string
	}{
		{"empty answer hides panel", "", answer.SourceOpenRouter, true, ""},
		{"ai badge", "Generated", answer.SourceOpenRouter, false, AIBadge},
		{"kb badge", "Stored", answer.SourceKnowledgeBase, false, KnowledgeBaseBadge},
		{"no badge for error", "Sorry", answer.SourceError, false, ""},
		{"no badge for unknown", "Hmm", answer.SourceUnknown, false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := AnswerPanel(PlainStyles(), tc.body, tc.source)
			if tc.wantEmpty {
				if out != "" {
					t.Errorf("expected no panel, got %q", out)
				}
				return
			}
			if !strings.HasPrefix(out, AnswerTitle+"\n"+tc.body) {
				t.Errorf("unexpected panel: %q", out)
			}
			hasAI := strings.Contains(out, AIBadge)
			hasKB := strings.Contains(out, KnowledgeBaseBadge)
			switch tc.wantBadge {
			case AIBadge:
				if !hasAI || hasKB {
					t.Errorf("expected only AI badge: %q", out)
				}
			case KnowledgeBaseBadge:
				if !hasKB || hasAI {
					t.Errorf("expected only KB badge: %q", out)
				}
			default:
				if hasAI || hasKB {
					t.Errorf("expected no badge: %q", out)
				}
			}
		})
	}
}

func TestMatchedQuestionPanel(t *testing.T) {
	if out := MatchedQuestionPanel(PlainStyles(), ""); out != "" {
		t.Errorf("expected no panel, got %q", out)
	}
	out := MatchedQuestionPanel(PlainStyles(), "How do I start a startup?")
	if out != `Matched question: "How do I start a startup?"` {
		t.Errorf("unexpected panel: %q", out)
	}
}

func TestButtonLabel(t *testing.T) {
	if ButtonLabel(false) != "Ask" || ButtonLabel(true) != "Thinking..." {
		t.Error("unexpected button labels")
	}
}

func TestNumberedHistoryPanel(t *testing.T) {
	out := NumberedHistoryPanel(PlainStyles(), []answer.Entry{
		{Question: "first", Answer: "one", Source: answer.SourceKnowledgeBase},
		{Question: "second", Answer: "two"},
	})

	want := HistoryTitle + "\n" +
		"1. Q: first\n" +
		"   A: one... [KB]\n" +
		"2. Q: second\n" +
		"   A: two..."
	if out != want {
		t.Errorf("unexpected panel:\n%q\nwant\n%q", out, want)
	}

	if out := NumberedHistoryPanel(PlainStyles(), nil); !strings.Contains(out, EmptyHistory) {
		t.Errorf("expected placeholder, got %q", out)
	}
}
