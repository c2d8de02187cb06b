package sqlguard

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ExtractPlaceholders finds all :name placeholders in the SQL and returns a
// deduplicated list in order of first appearance. PostgreSQL type casts
// (value::text) are not placeholders, and anything inside string literals
// has been masked away before this runs.
func ExtractPlaceholders(sqlQuery string) []string {
	return extractPlaceholders(maskLiterals(sqlQuery))
}

func extractPlaceholders(masked string) []string {
	seen := make(map[string]bool)
	var names []string

	for i := 0; i < len(masked); i++ {
		if masked[i] != ':' {
			continue
		}
		// Skip :: casts entirely.
		if i+1 < len(masked) && masked[i+1] == ':' {
			i++
			continue
		}
		if i > 0 && masked[i-1] == ':' {
			continue
		}

		start := i + 1
		end := start
		for end < len(masked) && isWordByte(masked[end]) {
			end++
		}
		// Placeholder names start with a letter or underscore; a bare colon
		// or :123 is not a placeholder.
		if end == start || (masked[start] >= '0' && masked[start] <= '9') {
			continue
		}

		name := masked[start:end]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i = end - 1
	}

	return names
}

// checkParameters enforces parameter discipline: every placeholder in the
// text must have a bound value, and every bound value must be referenced.
// Parameter values are additionally screened for SQL injection patterns.
// Returns the rejection verdict and true when the candidate must not run.
func checkParameters(masked string, params map[string]any) (Verdict, bool) {
	placeholders := extractPlaceholders(masked)

	referenced := make(map[string]bool, len(placeholders))
	for _, name := range placeholders {
		referenced[name] = true
	}

	var unbound []string
	for _, name := range placeholders {
		if _, ok := params[name]; !ok {
			unbound = append(unbound, name)
		}
	}
	if len(unbound) > 0 {
		return reject(fmt.Sprintf("parameter mismatch: placeholder :%s has no bound value",
			strings.Join(unbound, ", :"))), true
	}

	var unused []string
	for name := range params {
		if !referenced[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return reject(fmt.Sprintf("parameter mismatch: bound parameter %q is not referenced in the statement",
			strings.Join(unused, ", "))), true
	}

	if result := checkParamInjection(params); result != nil {
		return reject(fmt.Sprintf("parameter injection: %s", result.ParamName)), true
	}

	return Verdict{}, false
}

// literalOperandPattern flags quoted literals immediately after a
// comparison operator, where a named parameter would normally appear. It
// runs against masked text, where literal interiors are spaces but the
// surrounding quotes remain.
var literalOperandPattern = regexp.MustCompile(`(=|!=|<>|<=|>=|<|>)\s*'`)

// literalParameterWarning returns a soft warning for parameter-shaped
// literals. Deliberately not a rejection: legitimate constant comparisons
// would otherwise be false positives.
func literalParameterWarning(masked string) string {
	if literalOperandPattern.MatchString(masked) {
		return "quoted literal used where a named parameter was expected"
	}
	return ""
}
