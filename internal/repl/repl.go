// Package repl is the line-oriented front end, for terminals where the
// full-screen interface is unavailable and for piping questions in.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"AskChat/internal/chatclient"
	"AskChat/internal/session"
	"AskChat/internal/view"
)

// REPL reads questions and commands line by line.
type REPL struct {
	ctrl   *chatclient.Controller
	in     io.Reader
	out    io.Writer
	styles view.Styles
	logger *slog.Logger
}

// New creates a REPL reading from in and writing to out.
func New(ctrl *chatclient.Controller, in io.Reader, out io.Writer, logger *slog.Logger) *REPL {
	if logger == nil {
		logger = slog.Default()
	}
	return &REPL{
		ctrl:   ctrl,
		in:     in,
		out:    out,
		styles: view.PlainStyles(),
		logger: logger,
	}
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *REPL) println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// handleCommand handles slash commands. It reports whether to quit.
func (r *REPL) handleCommand(ctx context.Context, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/history":
		r.printHistory()
		return false, nil

	case "/refresh":
		if err := r.ctrl.FetchHistory(ctx); err != nil {
			r.println("Could not refresh history; showing the last known list.")
		}
		r.printHistory()
		return false, nil

	case "/pick":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /pick <number>")
		}
		n, err := strconv.Atoi(parts[1])
		history := r.ctrl.Snapshot().History
		if err != nil || n < 1 || n > len(history) {
			return false, fmt.Errorf("no history entry %q (have %d)", parts[1], len(history))
		}
		q := history[n-1].Question
		r.ctrl.SelectHistoryItem(q)
		r.printf("Question set to: %s\n", q)
		r.println("Press Enter or type /ask to send it.")
		return false, nil

	case "/ask":
		r.submit(ctx)
		return false, nil

	case "/help":
		r.println("Available commands:")
		r.println("  <text>           - Ask a question")
		r.println("  /history         - Show recent questions")
		r.println("  /refresh         - Reload recent questions from the server")
		r.println("  /pick <n>        - Reuse question n from the history")
		r.println("  /ask, <enter>    - Send the current question")
		r.println("  /quit, /exit     - Exit")
		r.println("  /help            - Show this help message")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s", parts[0])
	}
}

func (r *REPL) printHistory() {
	r.println(view.NumberedHistoryPanel(r.styles, r.ctrl.Snapshot().History))
	r.println()
}

func (r *REPL) submit(ctx context.Context) {
	if !r.ctrl.SubmitQuestion(ctx) {
		return
	}

	s := r.ctrl.Snapshot()
	if p := view.MatchedQuestionPanel(r.styles, s.MatchedQuestion); p != "" {
		r.println(p)
	}
	if p := view.AnswerPanel(r.styles, s.Answer, s.Source); p != "" {
		r.println(p)
	}
	r.println()
}

// Run loads history and then serves input until EOF or /quit.
func (r *REPL) Run(ctx context.Context) error {
	r.println(view.Header(r.styles))
	r.println("Type /help for commands, /quit to exit")
	r.println()

	r.ctrl.Initialize(ctx)
	r.printHistory()

	scanner := bufio.NewScanner(r.in)

	for {
		if ctx.Err() != nil {
			break
		}

		r.printf("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := r.handleCommand(ctx, input)
			if err != nil {
				r.printf("Error: %v\n", err)
				r.logger.Debug("command error", "error", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		// A blank line sends whatever is already in the input, e.g. after /pick.
		if input != "" {
			r.ctrl.SetQuestion(input)
		}
		r.submit(ctx)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	r.println("Goodbye!")
	return nil
}

// PrintSession writes a recorded session the way answers are shown live.
func PrintSession(out io.Writer, sess *session.Session) {
	st := view.PlainStyles()
	fmt.Fprintf(out, "Session %s (%s, started %s)\n\n", sess.ID, sess.ServerURL, sess.StartTime.Format("2006-01-02 15:04:05"))
	if len(sess.Exchanges) == 0 {
		fmt.Fprintln(out, "No exchanges recorded.")
		return
	}
	for _, ex := range sess.Exchanges {
		fmt.Fprintf(out, "You: %s\n", ex.Question)
		if p := view.MatchedQuestionPanel(st, ex.MatchedQuestion); p != "" {
			fmt.Fprintln(out, p)
		}
		fmt.Fprintln(out, view.AnswerPanel(st, ex.Answer, ex.Source))
		fmt.Fprintln(out)
	}
}
