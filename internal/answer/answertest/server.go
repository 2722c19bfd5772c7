// Package answertest provides an in-process fake Answer Service for tests.
package answertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"AskChat/internal/answer"
)

// HistoryLimit mirrors the service's rolling window of past exchanges.
const HistoryLimit = 10

// Server is a fake Answer Service. By default /ask answers every question as
// openrouter and records it; /history returns the last HistoryLimit exchanges.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	history         []answer.Entry
	askHandler      http.HandlerFunc
	historyHandler  http.HandlerFunc
	askCalls        int
	historyCalls    int
	lastQuestion    string
	lastContentType string
}

// NewServer starts a fake service that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{}

	r := chi.NewRouter()
	r.Get("/history", s.handleHistory)
	r.Post("/ask", s.handleAsk)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// SetHistory replaces the recorded exchanges.
func (s *Server) SetHistory(entries []answer.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]answer.Entry(nil), entries...)
}

// OnAsk overrides the /ask handler. Calls are still counted.
func (s *Server) OnAsk(h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.askHandler = h
}

// OnHistory overrides the /history handler. Calls are still counted.
func (s *Server) OnHistory(h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyHandler = h
}

func (s *Server) AskCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.askCalls
}

func (s *Server) HistoryCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyCalls
}

// LastQuestion is the question field of the most recent /ask body.
func (s *Server) LastQuestion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuestion
}

// LastContentType is the Content-Type header of the most recent /ask.
func (s *Server) LastContentType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastContentType
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.historyCalls++
	override := s.historyHandler
	entries := s.history
	if len(entries) > HistoryLimit {
		entries = entries[len(entries)-HistoryLimit:]
	}
	entries = append([]answer.Entry{}, entries...)
	s.mu.Unlock()

	if override != nil {
		override(w, r)
		return
	}
	WriteJSON(w, http.StatusOK, answer.HistoryResponse{History: entries})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req answer.AskRequest
	decodeErr := json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	s.askCalls++
	s.lastQuestion = req.Question
	s.lastContentType = r.Header.Get("Content-Type")
	override := s.askHandler
	s.mu.Unlock()

	if override != nil {
		override(w, r)
		return
	}
	if decodeErr != nil {
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": decodeErr.Error()})
		return
	}

	resp := answer.AskResponse{
		Answer: "Generated answer to: " + req.Question,
		Source: answer.SourceOpenRouter,
	}

	s.mu.Lock()
	s.history = append(s.history, answer.Entry{
		Question:        req.Question,
		Answer:          resp.Answer,
		MatchedQuestion: resp.MatchedQuestion,
		Source:          resp.Source,
	})
	s.mu.Unlock()

	WriteJSON(w, http.StatusOK, resp)
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
