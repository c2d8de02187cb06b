package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/apperrors"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/retry"
)

func fastRetry() *retry.Config {
	return &retry.Config{MaxRetries: 2, InitialDelay: 1, MaxDelay: 1, Multiplier: 1}
}

func newTestGenerator(client Client) *Generator {
	g := NewGenerator(client, zap.NewNop())
	g.retryCfg = fastRetry()
	return g
}

func TestGenerate_ParsesEnvelope(t *testing.T) {
	mock := &MockClient{
		Response: `{"sql": "SELECT COUNT(*) FROM employees WHERE \"DepartmentId\" = :dept", "params": {"dept": 3}, "mode": "QUERY_AND_ANSWER", "explanation": "counts employees in the department"}`,
	}
	g := newTestGenerator(mock)

	candidate, err := g.Generate(context.Background(), "schema", "how many in dept 3?", models.ModeQueryAndAnswer)
	require.NoError(t, err)
	assert.Contains(t, candidate.RawText, "SELECT COUNT(*)")
	assert.Equal(t, float64(3), candidate.Params["dept"])
	assert.Equal(t, models.ModeQueryAndAnswer, candidate.DeclaredMode)
	assert.Equal(t, "counts employees in the department", candidate.Explanation)
}

func TestGenerate_MalformedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"prose only", "I cannot help with that."},
		{"empty sql", `{"sql": "", "explanation": "nothing to run"}`},
		{"truncated object", `{"sql": "SELECT`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(&MockClient{Response: tt.response})
			_, err := g.Generate(context.Background(), "schema", "question", models.ModeQueryAndAnswer)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUpstreamMalformed)
		})
	}
}

func TestGenerate_RetriesTransientErrors(t *testing.T) {
	mock := &MockClient{
		Errs:      []error{errors.New("status 429: rate limit exceeded")},
		Responses: []string{"", `{"sql": "SELECT 1", "params": {}, "mode": "QUERY_ONLY", "explanation": "x"}`},
	}
	g := newTestGenerator(mock)

	candidate, err := g.Generate(context.Background(), "schema", "question", models.ModeQueryOnly)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", candidate.RawText)
	assert.Equal(t, 2, mock.Calls)
}

func TestGenerate_DoesNotRetryPermanentErrors(t *testing.T) {
	mock := &MockClient{Err: errors.New("status 401: invalid api key")}
	g := newTestGenerator(mock)

	_, err := g.Generate(context.Background(), "schema", "question", models.ModeQueryAndAnswer)
	require.Error(t, err)
	assert.Equal(t, 1, mock.Calls)
}

func TestGenerate_UnknownModeFallsBack(t *testing.T) {
	mock := &MockClient{
		Response: `{"sql": "SELECT 1", "params": {}, "mode": "SUPERUSER", "explanation": "x"}`,
	}
	g := newTestGenerator(mock)

	candidate, err := g.Generate(context.Background(), "schema", "question", models.ModeQueryAndAnswer)
	require.NoError(t, err)
	assert.Equal(t, models.ModeQueryAndAnswer, candidate.DeclaredMode)
}
