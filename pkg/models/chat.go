// Package models defines the request, candidate, and payload types shared
// across the pipeline.
package models

import "strings"

// Mode selects the response shape for a request. It is finalized by the
// router and never changes afterwards.
type Mode string

const (
	ModeChat           Mode = "CHAT"
	ModeClarify        Mode = "CLARIFY"
	ModeQueryOnly      Mode = "QUERY_ONLY"
	ModeAnswerOnly     Mode = "ANSWER_ONLY"
	ModeQueryAndAnswer Mode = "QUERY_AND_ANSWER"
)

// IsDBMode reports whether the mode implies guard validation of a candidate.
func (m Mode) IsDBMode() bool {
	switch m {
	case ModeQueryOnly, ModeAnswerOnly, ModeQueryAndAnswer:
		return true
	}
	return false
}

// ParseMode maps a model-reported mode string onto a Mode. The model's
// self-report is advisory only; unknown values fall back to
// QUERY_AND_ANSWER so an adversarial hint can never widen what is shown.
func ParseMode(s string) Mode {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeChat:
		return ModeChat
	case ModeClarify:
		return ModeClarify
	case ModeQueryOnly:
		return ModeQueryOnly
	case ModeAnswerOnly:
		return ModeAnswerOnly
	default:
		return ModeQueryAndAnswer
	}
}

// CandidateQuery is the SQL text plus parameters proposed by the untrusted
// generation step. Owned by a single pipeline invocation and discarded when
// the request completes; never executed before guard approval.
type CandidateQuery struct {
	RawText      string         `json:"sql"`
	Params       map[string]any `json:"params"`
	DeclaredMode Mode           `json:"mode"`
	Explanation  string         `json:"explanation"`
}

// ChatRequest is the inbound message for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// QueryResultPayload is the result block of a DB response.
type QueryResultPayload struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

// DBResponse is returned for the three DB mode variants. SQL is withheld
// for ANSWER_ONLY; result and answer text are withheld for QUERY_ONLY.
type DBResponse struct {
	Type        string              `json:"type"` // always "DB"
	Mode        Mode                `json:"mode"`
	SQL         string              `json:"sql,omitempty"`
	Params      map[string]any      `json:"params"`
	Explanation string              `json:"explanation"`
	Result      *QueryResultPayload `json:"result,omitempty"`
	AnswerText  string              `json:"answer_text,omitempty"`
	Warning     string              `json:"warning,omitempty"`
}

// ChatResponse is returned for conversational replies.
type ChatResponse struct {
	Type   string `json:"type"` // always "CHAT"
	Answer string `json:"answer"`
}

// ClarifyResponse asks the user for the information the message left out.
type ClarifyResponse struct {
	Type     string   `json:"type"` // always "CLARIFY"
	Question string   `json:"question"`
	Missing  []string `json:"missing"`
}

// ErrorResponse is the structured error shape for guard rejections,
// execution failures, and pool exhaustion. Distinct from the success
// payloads so callers can tell transient failures apart from terminal ones.
type ErrorResponse struct {
	Type      string `json:"type"` // always "ERROR"
	ErrorCode string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}
