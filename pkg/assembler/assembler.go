// Package assembler turns a finalized mode, guard output, and execution
// result into the structured payload returned to the client. It is pure
// formatting; nothing here touches the database or the model.
package assembler

import (
	"fmt"
	"strings"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/executor"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
)

// Chat wraps a conversational reply.
func Chat(answer string) *models.ChatResponse {
	return &models.ChatResponse{Type: "CHAT", Answer: answer}
}

// Clarify asks the user to fill in the pieces the router found missing.
func Clarify(missing []string) *models.ClarifyResponse {
	question := "Could you tell me more?"
	if len(missing) > 0 {
		question = fmt.Sprintf("Could you specify the %s?", strings.Join(missing, " and "))
	}
	return &models.ClarifyResponse{Type: "CLARIFY", Question: question, Missing: missing}
}

// DB builds the payload for the three DB mode variants. SQL is withheld for
// ANSWER_ONLY; the result block and the summary are withheld for QUERY_ONLY.
// Parameter values always travel with the payload so the client can show
// what was bound.
func DB(mode models.Mode, sanitizedSQL string, params map[string]any, explanation string, result *executor.Result, warning string) *models.DBResponse {
	if params == nil {
		params = map[string]any{}
	}

	resp := &models.DBResponse{
		Type:        "DB",
		Mode:        mode,
		Params:      params,
		Explanation: explanation,
		Warning:     warning,
	}

	if mode != models.ModeAnswerOnly {
		resp.SQL = sanitizedSQL
	}

	if mode != models.ModeQueryOnly && result != nil {
		resp.Result = &models.QueryResultPayload{
			Columns:  result.Columns,
			Rows:     result.Rows,
			RowCount: result.RowCount,
		}
		resp.AnswerText = AnswerText(result, explanation)
	}

	return resp
}

// AnswerText produces a short human-readable summary of a result set.
func AnswerText(result *executor.Result, explanation string) string {
	if result.RowCount == 0 {
		return "The query returned no results."
	}

	if result.RowCount == 1 && len(result.Columns) == 1 {
		return fmt.Sprintf("%s Result: %s = %v", explanation, result.Columns[0], result.Rows[0][0])
	}

	parts := []string{
		fmt.Sprintf("Found %d row(s).", result.RowCount),
		fmt.Sprintf("Columns: %s.", strings.Join(result.Columns, ", ")),
	}

	if result.RowCount <= 5 {
		for _, row := range result.Rows {
			parts = append(parts, "  • "+formatRow(result.Columns, row))
		}
	} else {
		parts = append(parts, "First 3 rows:")
		for _, row := range result.Rows[:3] {
			parts = append(parts, "  • "+formatRow(result.Columns, row))
		}
		parts = append(parts, fmt.Sprintf("  … and %d more.", result.RowCount-3))
	}

	if result.Truncated {
		parts = append(parts, "(Result set was truncated at the row ceiling.)")
	}

	return strings.Join(parts, "\n")
}

func formatRow(columns []string, row []any) string {
	pairs := make([]string, 0, len(columns))
	for i, col := range columns {
		var val any
		if i < len(row) {
			val = row[i]
		}
		pairs = append(pairs, fmt.Sprintf("%s: %v", col, val))
	}
	return strings.Join(pairs, ", ")
}
