// Package sqlguard validates and sanitizes model-generated SQL before it is
// allowed anywhere near a database connection.
//
// The guard is lexical: it scans keywords and tokens with quote-aware
// masking rather than building a parse tree. Validation is pure and
// deterministic, so a Guard is safely callable from concurrent requests
// without coordination.
package sqlguard

import (
	"fmt"
	"strings"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
)

// Config fixes the guard policy at construction time. Multiple guards with
// different policies can coexist, which the tests rely on.
type Config struct {
	// ForbiddenKeywords are rejected when they appear as standalone tokens
	// outside string literals, regardless of position.
	ForbiddenKeywords []string

	// DefaultRowLimit is appended to non-aggregate queries that carry no
	// limit clause.
	DefaultRowLimit int

	// MaxRowLimit is the hard ceiling. Existing limit clauses above it are
	// rewritten down, never accepted as-is.
	MaxRowLimit int

	// CommentDelimiters are rejected outright when seen outside literals.
	// Comments are never stripped and re-validated: their presence alone is
	// disqualifying because a comment can neutralize a later check.
	CommentDelimiters []string
}

// DefaultConfig returns the production guard policy: the mutating/DDL/DCL
// denylist, LIMIT 50 by default, and a hard ceiling of 500 rows.
func DefaultConfig() Config {
	return Config{
		ForbiddenKeywords: []string{
			"insert", "update", "delete", "drop", "alter", "truncate",
			"create", "replace", "merge", "call", "exec", "execute",
			"grant", "revoke", "commit", "rollback", "savepoint",
			"set", "copy", "load", "import",
		},
		DefaultRowLimit:   50,
		MaxRowLimit:       500,
		CommentDelimiters: []string{"--", "/*", "*/", "#"},
	}
}

// Verdict is the result of validating a candidate query.
// SanitizedText is set iff Accepted. When Accepted, Reason may still carry
// a soft warning (it never blocks execution); when rejected, Reason names
// the rule violated and is safe to surface to users.
type Verdict struct {
	Accepted      bool
	Reason        string
	SanitizedText string
}

// Guard validates candidate queries against a fixed policy.
type Guard struct {
	cfg       Config
	forbidden map[string]struct{}
}

// New creates a Guard. Zero limits in cfg fall back to the defaults.
func New(cfg Config) *Guard {
	def := DefaultConfig()
	if len(cfg.ForbiddenKeywords) == 0 {
		cfg.ForbiddenKeywords = def.ForbiddenKeywords
	}
	if cfg.DefaultRowLimit == 0 {
		cfg.DefaultRowLimit = def.DefaultRowLimit
	}
	if cfg.MaxRowLimit == 0 {
		cfg.MaxRowLimit = def.MaxRowLimit
	}
	if len(cfg.CommentDelimiters) == 0 {
		cfg.CommentDelimiters = def.CommentDelimiters
	}

	forbidden := make(map[string]struct{}, len(cfg.ForbiddenKeywords))
	for _, kw := range cfg.ForbiddenKeywords {
		forbidden[strings.ToLower(kw)] = struct{}{}
	}

	return &Guard{cfg: cfg, forbidden: forbidden}
}

func reject(reason string) Verdict {
	return Verdict{Accepted: false, Reason: reason}
}

// Validate runs the full validation pipeline, short-circuiting on the first
// failure. The raw text of a rejected candidate is never executed.
func (g *Guard) Validate(candidate *models.CandidateQuery) Verdict {
	sqlText := strings.TrimSpace(candidate.RawText)
	if sqlText == "" {
		return reject("empty statement")
	}

	// A single trailing semicolon is harmless model output; strip it before
	// the separator scan so "SELECT ...;" passes but "SELECT ...; DROP ..."
	// does not.
	sqlText = stripTrailingSemicolon(sqlText)
	masked := maskLiterals(sqlText)

	// 1. Single statement.
	if strings.IndexByte(masked, ';') >= 0 {
		return reject("multiple statements")
	}

	// 2. Comment delimiters outside literals.
	for _, delim := range g.cfg.CommentDelimiters {
		if strings.Contains(masked, delim) {
			return reject("comment injection attempt")
		}
	}

	// 3. Statement kind.
	if !hasSelectPrefix(masked) {
		return reject("non-SELECT statement")
	}

	// 4. Forbidden keyword scan.
	if kw := g.findForbiddenKeyword(masked); kw != "" {
		return reject("forbidden keyword: " + kw)
	}

	// 5. Parameter discipline.
	if verdict, rejected := checkParameters(masked, candidate.Params); rejected {
		return verdict
	}

	// 6 + 7. Limit injection and the hard ceiling.
	sanitized := g.enforceLimit(sqlText, masked)

	verdict := Verdict{Accepted: true, SanitizedText: sanitized}
	if warning := literalParameterWarning(masked); warning != "" {
		verdict.Reason = warning
	}
	return verdict
}

// hasSelectPrefix reports whether the first token of the statement is the
// SELECT keyword. Leading whitespace has already been trimmed and comments
// are rejected earlier, so a direct prefix check suffices.
func hasSelectPrefix(masked string) bool {
	trimmed := strings.TrimLeft(masked, " \t\n\r")
	if len(trimmed) < len("select") {
		return false
	}
	if !strings.EqualFold(trimmed[:len("select")], "select") {
		return false
	}
	// Reject SELECTX and similar: the keyword must end the token.
	return len(trimmed) == len("select") || !isWordByte(trimmed[len("select")])
}

func (g *Guard) findForbiddenKeyword(masked string) string {
	var found string
	scanTokens(masked, func(token string) bool {
		lower := strings.ToLower(token)
		if _, ok := g.forbidden[lower]; ok {
			found = lower
			return false
		}
		return true
	})
	return found
}

// DescribePolicy returns a short human-readable summary of the guard
// limits, used in health and startup logging.
func (g *Guard) DescribePolicy() string {
	return fmt.Sprintf("default limit %d, hard ceiling %d, %d forbidden keywords",
		g.cfg.DefaultRowLimit, g.cfg.MaxRowLimit, len(g.cfg.ForbiddenKeywords))
}

// MaxRowLimit exposes the configured hard ceiling for the executor, which
// enforces it again independently of the sanitized text.
func (g *Guard) MaxRowLimit() int {
	return g.cfg.MaxRowLimit
}
