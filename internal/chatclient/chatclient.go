// Package chatclient holds the state of one chat screen and mediates every
// call it makes to the Answer Service.
package chatclient

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"AskChat/internal/answer"
	"AskChat/internal/session"
)

// User-facing texts shown in place of an answer when /ask fails.
const (
	ProcessingErrorMessage = "Sorry, there was an error processing your question."
	ConnectionErrorMessage = "Sorry, there was an error connecting to the server."
)

// AnswerService is the remote backend as seen by the controller.
type AnswerService interface {
	History(ctx context.Context) ([]answer.Entry, error)
	Ask(ctx context.Context, question string) (answer.AskResponse, error)
}

// Recorder receives every exchange the service answered successfully.
type Recorder interface {
	Record(ctx context.Context, ex session.Exchange) error
}

// State is everything the screen renders.
type State struct {
	Question        string
	Answer          string
	MatchedQuestion string
	Source          answer.Source
	History         []answer.Entry
	Loading         bool
}

// Controller owns State. It is safe for concurrent use; callers typically run
// SubmitQuestion and FetchHistory off the UI goroutine and re-render on change.
type Controller struct {
	service  AnswerService
	logger   *slog.Logger
	recorder Recorder

	mu          sync.Mutex
	state       State
	initialized bool
	inFlight    int

	// askSeq is the last /ask ticket issued; only that ticket may write the answer.
	askSeq uint64
	// historySeq is the last /history ticket issued, historyApplied the newest one stored.
	historySeq     uint64
	historyApplied uint64

	listeners []func(State)
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the diagnostics logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithRecorder records each successful exchange, e.g. into a transcript
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// New creates a controller with empty state.
func New(service AnswerService, opts ...Option) *Controller {
	c := &Controller{
		service: service,
		logger:  slog.Default(),
		state:   State{History: []answer.Entry{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn to be called with a snapshot after every state change.
// fn runs on the goroutine that made the change and must not block.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.History = append([]answer.Entry{}, c.state.History...)
	return s
}

// update applies fn under the lock and then notifies listeners.
func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.snapshotLocked()
	listeners := append([]func(State){}, c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// Initialize loads history the first time it is called; later calls do nothing.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return
	}
	c.initialized = true
	c.mu.Unlock()

	_ = c.FetchHistory(ctx)
}

// SetQuestion binds the input field to state.
func (c *Controller) SetQuestion(q string) {
	c.update(func(s *State) { s.Question = q })
}

// SelectHistoryItem copies a past question into the input. No request is made.
func (c *Controller) SelectHistoryItem(q string) {
	c.SetQuestion(q)
}

// FetchHistory replaces the history with the service's list. On failure the
// previous history is kept and the error is only logged; it is returned for
// callers that want to count it.
func (c *Controller) FetchHistory(ctx context.Context) error {
	c.mu.Lock()
	c.historySeq++
	seq := c.historySeq
	c.mu.Unlock()

	entries, err := c.service.History(ctx)
	if err != nil {
		c.logger.Warn("failed to fetch history", "error", err,
			"server_error", answer.IsServerError(err))
		return err
	}

	applied := false
	c.update(func(s *State) {
		if seq <= c.historyApplied {
			return
		}
		c.historyApplied = seq
		s.History = entries
		applied = true
	})
	if !applied {
		c.logger.Debug("dropped stale history response", "seq", seq)
	}
	return nil
}

// SubmitQuestion sends the trimmed question to the service and waits for the
// outcome. It returns false, without sending anything, when the question is blank.
//
// Loading is set before the request and cleared after the response has been
// handled on every path. On success the input is cleared and history is
// fetched once more. Failures replace the answer with a fixed message and set
// the source to error. If a newer submission was made meanwhile, this
// response leaves the answer fields and the input alone.
func (c *Controller) SubmitQuestion(ctx context.Context) bool {
	seq, question, ok := c.begin()
	if !ok {
		return false
	}
	c.complete(ctx, seq, question)
	return true
}

// Submit is SubmitQuestion in the background. When it returns true, Loading
// is already set; the channel is closed once the outcome and the follow-up
// history refresh have been applied.
func (c *Controller) Submit(ctx context.Context) (<-chan struct{}, bool) {
	seq, question, ok := c.begin()
	if !ok {
		return nil, false
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.complete(ctx, seq, question)
	}()
	return done, true
}

// begin validates the question and marks a new request as in flight.
func (c *Controller) begin() (uint64, string, bool) {
	c.mu.Lock()
	question := strings.TrimSpace(c.state.Question)
	c.mu.Unlock()
	if question == "" {
		return 0, "", false
	}

	var seq uint64
	c.update(func(s *State) {
		c.askSeq++
		seq = c.askSeq
		c.inFlight++
		s.Loading = true
	})
	return seq, question, true
}

func (c *Controller) complete(ctx context.Context, seq uint64, question string) {
	refresh := c.ask(ctx, seq, question)

	c.update(func(s *State) {
		c.inFlight--
		s.Loading = c.inFlight > 0
	})

	if refresh {
		_ = c.FetchHistory(ctx)
	}
}

// ask performs the request and applies its outcome. It reports whether the
// service accepted the question, i.e. whether history should be refreshed.
func (c *Controller) ask(ctx context.Context, seq uint64, question string) bool {
	resp, err := c.service.Ask(ctx, question)
	if err != nil {
		msg := ConnectionErrorMessage
		if answer.IsServerError(err) {
			msg = ProcessingErrorMessage
		}
		c.logger.Error("failed to ask question", "error", err, "seq", seq)

		c.update(func(s *State) {
			if seq != c.askSeq {
				return
			}
			s.Answer = msg
			s.Source = answer.SourceError
		})
		return false
	}

	stale := false
	c.update(func(s *State) {
		if seq != c.askSeq {
			stale = true
			return
		}
		s.Answer = resp.Answer
		s.MatchedQuestion = resp.MatchedQuestion
		s.Source = resp.Source
		s.Question = ""
	})
	if stale {
		c.logger.Debug("dropped stale answer", "seq", seq, "question", question)
	}

	if c.recorder != nil {
		ex := session.Exchange{
			Question:        question,
			Answer:          resp.Answer,
			MatchedQuestion: resp.MatchedQuestion,
			Source:          resp.Source,
			Timestamp:       time.Now(),
		}
		if err := c.recorder.Record(ctx, ex); err != nil {
			c.logger.Warn("failed to record exchange", "error", err)
		}
	}
	return true
}
