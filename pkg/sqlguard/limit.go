package sqlguard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// limitClausePattern matches a LIMIT clause together with its full
// argument: a bare integer, a parenthesized or arithmetic expression, or an
// identifier such as ALL or a named placeholder. Capturing the whole
// argument means a clause like "LIMIT 50+500" cannot smuggle an effective
// value past the ceiling, and "LIMIT ALL" is recognized as a clause rather
// than getting a second one appended. It runs against the masked text so a
// "LIMIT" inside a string literal is invisible to it.
var limitClausePattern = regexp.MustCompile(`(?i)\bLIMIT\s+(:?[A-Za-z_]\w*|[(0-9][0-9+\-*/(). ]*[0-9)]|[0-9]+)`)

// bareIntPattern accepts only limit arguments that are plain digit strings.
var bareIntPattern = regexp.MustCompile(`^[0-9]+$`)

// aggregatePattern detects aggregate functions and GROUP BY clauses, which
// already bound the result set and do not get a default limit appended.
var aggregatePattern = regexp.MustCompile(`(?i)\b(COUNT|SUM|AVG|MIN|MAX|GROUP\s+BY)\b`)

// enforceLimit guarantees the sanitized text never asks for more than the
// hard ceiling. Non-aggregate queries without a limit clause get the
// default appended. An existing argument survives only when it is a bare
// integer within the ceiling; expressions, ALL, placeholders, and oversized
// or unparseable numbers are all rewritten to the ceiling, so a malformed
// or adversarial clause cannot bypass the cap.
func (g *Guard) enforceLimit(sqlText, masked string) string {
	matches := limitClausePattern.FindAllStringSubmatchIndex(masked, -1)

	if len(matches) == 0 {
		if aggregatePattern.MatchString(masked) {
			return sqlText
		}
		return fmt.Sprintf("%s LIMIT %d", strings.TrimRight(sqlText, " \t\n\r"), g.cfg.DefaultRowLimit)
	}

	var b strings.Builder
	prev := 0
	for _, m := range matches {
		argStart, argEnd := m[2], m[3]
		b.WriteString(sqlText[prev:argStart])

		arg := masked[argStart:argEnd]
		value, err := strconv.Atoi(arg)
		if bareIntPattern.MatchString(arg) && err == nil && value <= g.cfg.MaxRowLimit {
			b.WriteString(sqlText[argStart:argEnd])
		} else {
			b.WriteString(strconv.Itoa(g.cfg.MaxRowLimit))
		}
		prev = argEnd
	}
	b.WriteString(sqlText[prev:])
	return b.String()
}
