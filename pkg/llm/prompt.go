package llm

import (
	"fmt"
	"strings"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
)

const systemMessage = `You are a PostgreSQL expert that translates natural language questions into safe, read-only SQL. You always respond with a single JSON object and nothing else.`

// BuildPrompt assembles the generation prompt from the schema summary, the
// user's question, and the requested response mode.
func BuildPrompt(schemaSummary, question string, mode models.Mode) string {
	var b strings.Builder

	b.WriteString("Database schema:\n\n")
	b.WriteString(schemaSummary)
	b.WriteString("\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("1. Generate exactly one SELECT statement. Never generate INSERT, UPDATE, DELETE, DDL, or transaction control.\n")
	b.WriteString("2. Use named parameters of the form :name for every user-supplied value. Never inline string literals from the question.\n")
	b.WriteString("3. Bind a value for every named parameter you use, and only for parameters that appear in the statement.\n")
	b.WriteString("4. Quote table and column names exactly as shown in the schema.\n")
	b.WriteString("5. Do not include comments or multiple statements.\n")
	b.WriteString("6. If the question cannot be answered from the schema, set \"sql\" to an empty string and explain why.\n\n")

	b.WriteString("Respond with a JSON object of this exact shape:\n")
	b.WriteString(`{"sql": "<the SELECT statement>", "params": {"<name>": <value>}, "mode": "<response mode>", "explanation": "<one sentence describing what the query does>"}`)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Response mode: %s\n", mode)
	fmt.Fprintf(&b, "Question: %s\n", question)

	return b.String()
}
