package answer

import "encoding/json"

// Source classifies where an answer came from.
type Source string

const (
	SourceUnset         Source = ""
	SourceOpenRouter    Source = "openrouter"
	SourceKnowledgeBase Source = "knowledge_base"
	SourceError         Source = "error"
	SourceUnknown       Source = "unknown"
)

// ParseSource maps a service-provided tag onto a Source. The service only
// ever produces openrouter or knowledge_base; anything else is unknown, and
// error stays reserved for failures detected by the client.
func ParseSource(raw string) Source {
	switch Source(raw) {
	case SourceOpenRouter, SourceKnowledgeBase:
		return Source(raw)
	default:
		return SourceUnknown
	}
}

// UnmarshalJSON normalises the tag via ParseSource.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseSource(raw)
	return nil
}

// AskRequest is the body of POST /ask
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the body returned by POST /ask
type AskResponse struct {
	Answer          string `json:"answer"`
	MatchedQuestion string `json:"matched_question"`
	Source          Source `json:"source"`
}

// Entry is one past exchange as returned by GET /history
type Entry struct {
	Question        string `json:"question"`
	Answer          string `json:"answer"`
	MatchedQuestion string `json:"matched_question,omitempty"`
	Source          Source `json:"source"`
}

// HistoryResponse is the body returned by GET /history
type HistoryResponse struct {
	History []Entry `json:"history"`
}
