package sqlguard

import "strings"

// maskLiterals returns a copy of the SQL with the same length where every
// character inside a single-quoted string literal or a double-quoted
// identifier is replaced by a space. The surrounding quote characters are
// kept. All lexical checks run against the masked text so that content
// inside literals can never trip (or hide from) a rule, while rewrites can
// still use the original text because indexes line up.
//
// Handles both the SQL standard escape ('') and the backslash escape (\')
// inside single-quoted literals.
func maskLiterals(sqlQuery string) string {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	out := []byte(sqlQuery)
	state := stateNormal
	prevChar := byte(0)

	for i := 0; i < len(sqlQuery); i++ {
		ch := sqlQuery[i]

		switch state {
		case stateNormal:
			switch ch {
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			if ch == '\'' && prevChar != '\\' {
				// A doubled quote ('') exits here and immediately re-enters
				// on the next character, which keeps the interior masked.
				state = stateNormal
			} else {
				out[i] = ' '
			}
		case stateDoubleQuote:
			if ch == '"' && prevChar != '\\' {
				state = stateNormal
			} else {
				out[i] = ' '
			}
		}
		prevChar = ch
	}

	return string(out)
}

// stripTrailingSemicolon removes a single trailing semicolon and any
// surrounding whitespace. A lone trailing semicolon is common model output
// and harmless; any other semicolon is treated as a statement separator.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimRight(strings.TrimSuffix(sqlQuery, ";"), " \t\n\r")
	}
	return sqlQuery
}

func isWordByte(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

// scanTokens calls fn for each bare word token in the masked SQL. Tokens
// inside literals never appear because they are masked to spaces.
func scanTokens(masked string, fn func(token string) bool) {
	start := -1
	for i := 0; i <= len(masked); i++ {
		inWord := i < len(masked) && isWordByte(masked[i])
		switch {
		case inWord && start < 0:
			start = i
		case !inWord && start >= 0:
			if !fn(masked[start:i]) {
				return
			}
			start = -1
		}
	}
}
