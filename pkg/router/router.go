// Package router finalizes the response mode for an incoming message.
//
// Classification is a pure function of the message text plus, for DB
// modes, the model's self-reported mode. The model's report is advisory
// only: message-text rules always win when they conflict, so the untrusted
// model can never suppress a clarification or turn a chat greeting into a
// query.
package router

import (
	"regexp"
	"strings"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
)

// Decision is the router's verdict. Missing is populated iff Mode is
// CLARIFY and enumerates what the message left unresolved.
type Decision struct {
	Mode    models.Mode
	Missing []string
}

// Router classifies messages using fixed phrase lists.
type Router struct {
	queryOnlyPhrases  []string
	answerOnlyPhrases []string
	chatPhrases       []string
	dataIntentWords   []string
}

// New creates a Router with the default phrase lists.
func New() *Router {
	return &Router{
		queryOnlyPhrases: []string{
			"sql only", "only sql", "only the sql", "just the query",
			"just the sql", "query only", "command only", "raw query",
			"show me the query", "give me the sql",
		},
		answerOnlyPhrases: []string{
			"only answer", "answer only", "just the answer",
			"only the answer", "just answer", "no sql", "without sql",
		},
		chatPhrases: []string{
			"good morning", "good afternoon", "thank you", "thanks",
			"what can you do", "who are you", "how do you work",
			"what are you", "what kind of questions",
		},
		dataIntentWords: []string{
			"show", "list", "count", "how many", "average", "total",
			"salary", "salaries", "employee", "employees", "department",
			"departments", "manager", "managers", "review", "reviews",
			"hired", "highest", "lowest", "top", "find", "which", "sum",
		},
	}
}

// greetingPattern matches short openers that carry no data request.
var greetingPattern = regexp.MustCompile(`^\s*(hi|hello|hey|howdy)\b`)

// unresolvedRefPattern matches definite references ("the department") that
// name a target kind without identifying a concrete target.
var unresolvedRefPattern = regexp.MustCompile(
	`\b(?:the|that|this|my|our)\s+(department|team|manager|employee|project|review)s?\b(?:\s+(\w+))?`)

// restrictive words after a definite reference mean the target is resolved
// by the rest of the sentence ("the department with the highest budget").
var restrictiveFollowers = map[string]bool{
	"with": true, "of": true, "that": true, "which": true,
	"where": true, "having": true, "named": true, "called": true,
	"whose": true, "managed": true, "led": true,
}

// Classify finalizes the mode for a message. Tie-breaks, in order:
// explicit only-qualifiers beat everything, conversational messages with
// no data intent become CHAT, unresolved references become CLARIFY, and
// the model's hint may refine which DB variant applies but nothing more.
func (r *Router) Classify(message string, modelHint models.Mode) Decision {
	lower := strings.ToLower(message)

	if containsAny(lower, r.queryOnlyPhrases) {
		return Decision{Mode: models.ModeQueryOnly}
	}
	if containsAny(lower, r.answerOnlyPhrases) {
		return Decision{Mode: models.ModeAnswerOnly}
	}

	if !containsAny(lower, r.dataIntentWords) &&
		(greetingPattern.MatchString(lower) || containsAny(lower, r.chatPhrases)) {
		return Decision{Mode: models.ModeChat}
	}

	if missing := r.unresolvedTargets(lower); len(missing) > 0 {
		return Decision{Mode: models.ModeClarify, Missing: missing}
	}

	// The hint may pick a DB variant when the message itself did not, but
	// it can never produce CHAT or CLARIFY here: suppressing a data answer
	// is harmless, suppressing a clarification is not.
	switch modelHint {
	case models.ModeQueryOnly, models.ModeAnswerOnly:
		return Decision{Mode: modelHint}
	}
	return Decision{Mode: models.ModeQueryAndAnswer}
}

// unresolvedTargets returns what an ambiguous message failed to name.
func (r *Router) unresolvedTargets(lower string) []string {
	if !containsAny(lower, r.dataIntentWords) {
		return nil
	}
	// Digits or quoted names are concrete identifiers.
	if strings.ContainsAny(lower, "0123456789'\"") {
		return nil
	}

	seen := make(map[string]bool)
	var missing []string
	for _, m := range unresolvedRefPattern.FindAllStringSubmatch(lower, -1) {
		target, follower := m[1], m[2]
		if restrictiveFollowers[follower] {
			continue
		}
		if !seen[target] {
			seen[target] = true
			missing = append(missing, target+" name")
		}
	}
	return missing
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
