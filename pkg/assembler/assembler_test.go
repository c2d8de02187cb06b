package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/executor"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
)

func sampleResult() *executor.Result {
	return &executor.Result{
		Columns:  []string{"FirstName", "LastName"},
		Rows:     [][]any{{"Ada", "Lovelace"}, {"Grace", "Hopper"}},
		RowCount: 2,
	}
}

func TestDB_QueryAndAnswer(t *testing.T) {
	resp := DB(models.ModeQueryAndAnswer,
		`SELECT * FROM "employees" LIMIT 50`,
		map[string]any{"dept": "Sales"},
		"lists employees", sampleResult(), "")

	assert.Equal(t, "DB", resp.Type)
	assert.Equal(t, `SELECT * FROM "employees" LIMIT 50`, resp.SQL)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 2, resp.Result.RowCount)
	assert.NotEmpty(t, resp.AnswerText)
}

func TestDB_QueryOnlySkipsResult(t *testing.T) {
	resp := DB(models.ModeQueryOnly,
		`SELECT 1 LIMIT 50`, nil, "x", nil, "")

	assert.Equal(t, `SELECT 1 LIMIT 50`, resp.SQL)
	assert.Nil(t, resp.Result)
	assert.Empty(t, resp.AnswerText)
	assert.NotNil(t, resp.Params)
}

func TestDB_AnswerOnlyWithholdsSQL(t *testing.T) {
	resp := DB(models.ModeAnswerOnly,
		`SELECT secret FROM t LIMIT 50`, map[string]any{}, "x", sampleResult(), "")

	assert.Empty(t, resp.SQL)
	require.NotNil(t, resp.Result)
	assert.NotEmpty(t, resp.AnswerText)
}

func TestDB_CarriesWarning(t *testing.T) {
	resp := DB(models.ModeQueryAndAnswer, `SELECT 1 LIMIT 50`, nil, "x", sampleResult(),
		"quoted literal used where a named parameter was expected")
	assert.Contains(t, resp.Warning, "named parameter")
}

func TestAnswerText(t *testing.T) {
	t.Run("no rows", func(t *testing.T) {
		got := AnswerText(&executor.Result{Columns: []string{"c"}}, "x")
		assert.Equal(t, "The query returned no results.", got)
	})

	t.Run("single scalar", func(t *testing.T) {
		r := &executor.Result{Columns: []string{"count"}, Rows: [][]any{{int64(42)}}, RowCount: 1}
		got := AnswerText(r, "Counts all employees.")
		assert.Equal(t, "Counts all employees. Result: count = 42", got)
	})

	t.Run("few rows listed in full", func(t *testing.T) {
		got := AnswerText(sampleResult(), "x")
		assert.Contains(t, got, "Found 2 row(s).")
		assert.Contains(t, got, "FirstName: Ada, LastName: Lovelace")
		assert.NotContains(t, got, "more.")
	})

	t.Run("many rows show first three", func(t *testing.T) {
		r := &executor.Result{
			Columns:  []string{"n"},
			Rows:     [][]any{{1}, {2}, {3}, {4}, {5}, {6}, {7}},
			RowCount: 7,
		}
		got := AnswerText(r, "x")
		assert.Contains(t, got, "First 3 rows:")
		assert.Contains(t, got, "and 4 more.")
		assert.NotContains(t, got, "n: 4")
	})

	t.Run("truncation is called out", func(t *testing.T) {
		r := sampleResult()
		r.Truncated = true
		got := AnswerText(r, "x")
		assert.Contains(t, got, "truncated")
	})
}

func TestClarify(t *testing.T) {
	resp := Clarify([]string{"department name"})
	assert.Equal(t, "CLARIFY", resp.Type)
	assert.Contains(t, resp.Question, "department name")
	assert.Equal(t, []string{"department name"}, resp.Missing)

	vague := Clarify(nil)
	assert.NotEmpty(t, vague.Question)
}

func TestChat(t *testing.T) {
	resp := Chat("Hello! Ask me about the employee database.")
	assert.Equal(t, "CHAT", resp.Type)
	assert.NotEmpty(t, resp.Answer)
}
