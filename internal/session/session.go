package session

import (
	"time"

	"github.com/google/uuid"

	"AskChat/internal/answer"
)

// Exchange is one completed question/answer pair
type Exchange struct {
	Question        string        `json:"question"`
	Answer          string        `json:"answer"`
	MatchedQuestion string        `json:"matched_question"`
	Source          answer.Source `json:"source"`
	Timestamp       time.Time     `json:"timestamp"`
}

// Session represents one run of the client against a server
type Session struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"start_time"`
	ServerURL string     `json:"server_url"`
	Exchanges []Exchange `json:"exchanges"`
}

// New starts a session with a fresh random ID
func New(serverURL string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
		ServerURL: serverURL,
		Exchanges: []Exchange{},
	}
}
