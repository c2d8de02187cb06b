package sqlguard

import (
	"fmt"
	"strconv"
	"strings"
)

// RewritePositional replaces :name placeholders with PostgreSQL positional
// parameters ($1, $2, ...) and returns the rewritten SQL along with the
// ordered values for binding. The same placeholder used multiple times is
// assigned a single position. Values are only ever bound through the
// driver; they are never interpolated into the statement text.
//
// Placeholders inside string literals and :: casts are left untouched,
// using the same masking as validation.
func RewritePositional(sqlText string, params map[string]any) (string, []any, error) {
	masked := maskLiterals(sqlText)

	positions := make(map[string]int)
	var ordered []any
	var b strings.Builder

	for i := 0; i < len(masked); i++ {
		ch := masked[i]
		if ch != ':' {
			b.WriteByte(sqlText[i])
			continue
		}
		if i+1 < len(masked) && masked[i+1] == ':' {
			b.WriteString(sqlText[i : i+2])
			i++
			continue
		}
		if i > 0 && masked[i-1] == ':' {
			b.WriteByte(sqlText[i])
			continue
		}

		start := i + 1
		end := start
		for end < len(masked) && isWordByte(masked[end]) {
			end++
		}
		if end == start || (masked[start] >= '0' && masked[start] <= '9') {
			b.WriteByte(sqlText[i])
			continue
		}

		name := masked[start:end]
		value, ok := params[name]
		if !ok {
			// The guard enforces parameter discipline before execution;
			// reaching this means Execute was called with an unvalidated
			// statement.
			return "", nil, fmt.Errorf("placeholder :%s has no bound value", name)
		}

		pos, assigned := positions[name]
		if !assigned {
			ordered = append(ordered, value)
			pos = len(ordered)
			positions[name] = pos
		}

		b.WriteByte('$')
		b.WriteString(strconv.Itoa(pos))
		i = end - 1
	}

	return b.String(), ordered, nil
}
