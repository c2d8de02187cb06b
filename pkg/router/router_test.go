package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
)

func TestClassify(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		message  string
		hint     models.Mode
		wantMode models.Mode
	}{
		{
			name:     "explicit sql only",
			message:  "Give me the SQL only for the highest paid employee",
			wantMode: models.ModeQueryOnly,
		},
		{
			name:     "just the query",
			message:  "just the query please: employees hired in 2024",
			wantMode: models.ModeQueryOnly,
		},
		{
			name:     "answer only",
			message:  "Only answer, no sql: how many employees are there",
			wantMode: models.ModeAnswerOnly,
		},
		{
			name:     "greeting",
			message:  "Hello!",
			wantMode: models.ModeChat,
		},
		{
			name:     "capability question",
			message:  "What can you do?",
			wantMode: models.ModeChat,
		},
		{
			name:     "plain data question defaults",
			message:  "List all employees ordered by salary",
			wantMode: models.ModeQueryAndAnswer,
		},
		{
			name:     "greeting with data intent is not chat",
			message:  "Hi, show me all departments",
			wantMode: models.ModeQueryAndAnswer,
		},
		{
			name:     "unresolved department reference",
			message:  "Show me employees from the department",
			wantMode: models.ModeClarify,
		},
		{
			name:     "resolved by restrictive clause",
			message:  "Show me the department with the highest average salary",
			wantMode: models.ModeQueryAndAnswer,
		},
		{
			name:     "resolved by quoted name",
			message:  "Show me employees from the department 'Engineering'",
			wantMode: models.ModeQueryAndAnswer,
		},
		{
			name:     "hint refines db variant",
			message:  "Average salary by department please",
			hint:     models.ModeAnswerOnly,
			wantMode: models.ModeAnswerOnly,
		},
		{
			name:     "hint cannot suppress clarify",
			message:  "Show me employees from the department",
			hint:     models.ModeQueryOnly,
			wantMode: models.ModeClarify,
		},
		{
			name:     "hint cannot create chat",
			message:  "List all employees",
			hint:     models.ModeChat,
			wantMode: models.ModeQueryAndAnswer,
		},
		{
			name:     "explicit qualifier beats clarify",
			message:  "sql only: employees from the department",
			wantMode: models.ModeQueryOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Classify(tt.message, tt.hint)
			assert.Equal(t, tt.wantMode, got.Mode)
		})
	}
}

func TestClassify_ClarifyEnumeratesMissing(t *testing.T) {
	r := New()

	got := r.Classify("Show me employees from the department", "")
	assert.Equal(t, models.ModeClarify, got.Mode)
	assert.Equal(t, []string{"department name"}, got.Missing)

	got = r.Classify("Show reviews for the employee and the manager", "")
	assert.Equal(t, models.ModeClarify, got.Mode)
	assert.ElementsMatch(t, []string{"employee name", "manager name"}, got.Missing)
}
