package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/apperrors"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/executor"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/sqlguard"
)

type stubSchema struct {
	summary string
	err     error
}

func (s *stubSchema) Summary(context.Context) (string, error) { return s.summary, s.err }

type stubGenerator struct {
	candidate *models.CandidateQuery
	err       error
	calls     int
}

func (g *stubGenerator) Generate(_ context.Context, _, _ string, _ models.Mode) (*models.CandidateQuery, error) {
	g.calls++
	return g.candidate, g.err
}

type stubExecutor struct {
	result *executor.Result
	err    error
	calls  int
	gotSQL string
}

func (e *stubExecutor) Execute(_ context.Context, sanitizedText string, _ map[string]any) (*executor.Result, error) {
	e.calls++
	e.gotSQL = sanitizedText
	return e.result, e.err
}

func newService(gen *stubGenerator, exec *stubExecutor) *ChatService {
	return NewChatService(
		&stubSchema{summary: `Table: "employees"`},
		gen,
		sqlguard.New(sqlguard.DefaultConfig()),
		exec,
		zap.NewNop(),
	)
}

func validCandidate() *models.CandidateQuery {
	return &models.CandidateQuery{
		RawText:      `SELECT "FirstName" FROM "employees" WHERE "DepartmentId" = :dept`,
		Params:       map[string]any{"dept": 3},
		DeclaredMode: models.ModeQueryAndAnswer,
		Explanation:  "lists first names in the department",
	}
}

func TestHandle_GreetingSkipsPipeline(t *testing.T) {
	gen := &stubGenerator{}
	exec := &stubExecutor{}
	svc := newService(gen, exec)

	got, err := svc.Handle(context.Background(), "Hello!")
	require.NoError(t, err)

	resp, ok := got.(*models.ChatResponse)
	require.True(t, ok)
	assert.Equal(t, "CHAT", resp.Type)
	assert.Zero(t, gen.calls)
	assert.Zero(t, exec.calls)
}

func TestHandle_AmbiguousMessageAsksForClarification(t *testing.T) {
	gen := &stubGenerator{}
	exec := &stubExecutor{}
	svc := newService(gen, exec)

	got, err := svc.Handle(context.Background(), "Show me employees from the department")
	require.NoError(t, err)

	resp, ok := got.(*models.ClarifyResponse)
	require.True(t, ok)
	assert.Equal(t, []string{"department name"}, resp.Missing)
	assert.Zero(t, gen.calls)
	assert.Zero(t, exec.calls)
}

func TestHandle_FullPipeline(t *testing.T) {
	gen := &stubGenerator{candidate: validCandidate()}
	exec := &stubExecutor{result: &executor.Result{
		Columns:  []string{"FirstName"},
		Rows:     [][]any{{"Ada"}},
		RowCount: 1,
	}}
	svc := newService(gen, exec)

	got, err := svc.Handle(context.Background(), "List employees in department 3")
	require.NoError(t, err)

	resp, ok := got.(*models.DBResponse)
	require.True(t, ok)
	assert.Equal(t, models.ModeQueryAndAnswer, resp.Mode)
	assert.Contains(t, resp.SQL, "LIMIT 50")
	require.NotNil(t, resp.Result)
	assert.Equal(t, 1, resp.Result.RowCount)
	assert.NotEmpty(t, resp.AnswerText)
	// the executor must run the sanitized text, not the raw candidate
	assert.Equal(t, resp.SQL, exec.gotSQL)
}

func TestHandle_QueryOnlyValidatesButDoesNotExecute(t *testing.T) {
	gen := &stubGenerator{candidate: validCandidate()}
	exec := &stubExecutor{}
	svc := newService(gen, exec)

	got, err := svc.Handle(context.Background(), "sql only: employees in department 3")
	require.NoError(t, err)

	resp, ok := got.(*models.DBResponse)
	require.True(t, ok)
	assert.Equal(t, models.ModeQueryOnly, resp.Mode)
	assert.NotEmpty(t, resp.SQL)
	assert.Nil(t, resp.Result)
	assert.Zero(t, exec.calls)
}

func TestHandle_GuardRejectionIsTerminal(t *testing.T) {
	gen := &stubGenerator{candidate: &models.CandidateQuery{
		RawText: `DELETE FROM "employees"`,
		Params:  map[string]any{},
	}}
	exec := &stubExecutor{}
	svc := newService(gen, exec)

	got, err := svc.Handle(context.Background(), "List all employees")
	require.NoError(t, err)

	resp, ok := got.(*models.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, "GUARD_REJECTED", resp.ErrorCode)
	assert.False(t, resp.Retryable)
	assert.Zero(t, exec.calls)
}

func TestHandle_MalformedModelOutputDowngradesToChat(t *testing.T) {
	gen := &stubGenerator{err: apperrors.ErrUpstreamMalformed}
	svc := newService(gen, &stubExecutor{})

	got, err := svc.Handle(context.Background(), "List all employees")
	require.NoError(t, err)

	resp, ok := got.(*models.ChatResponse)
	require.True(t, ok)
	assert.Contains(t, resp.Answer, "rephrase")
}

func TestHandle_PoolExhaustionIsRetryable(t *testing.T) {
	gen := &stubGenerator{candidate: validCandidate()}
	exec := &stubExecutor{err: apperrors.ErrResourceExhausted}
	svc := newService(gen, exec)

	got, err := svc.Handle(context.Background(), "List all employees")
	require.NoError(t, err)

	resp, ok := got.(*models.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, "RESOURCE_EXHAUSTED", resp.ErrorCode)
	assert.True(t, resp.Retryable)
}

func TestHandle_ExecutionFailureIsNotRetryable(t *testing.T) {
	gen := &stubGenerator{candidate: validCandidate()}
	exec := &stubExecutor{err: &apperrors.ExecutionFailure{Cause: errors.New("relation does not exist")}}
	svc := newService(gen, exec)

	got, err := svc.Handle(context.Background(), "List all employees")
	require.NoError(t, err)

	resp, ok := got.(*models.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, "EXECUTION_FAILED", resp.ErrorCode)
	assert.False(t, resp.Retryable)
}

func TestHandle_ModelHintCannotOverrideExplicitQualifier(t *testing.T) {
	candidate := validCandidate()
	candidate.DeclaredMode = models.ModeQueryAndAnswer
	gen := &stubGenerator{candidate: candidate}
	exec := &stubExecutor{}
	svc := newService(gen, exec)

	got, err := svc.Handle(context.Background(), "just the query please: employees in department 3")
	require.NoError(t, err)

	resp, ok := got.(*models.DBResponse)
	require.True(t, ok)
	assert.Equal(t, models.ModeQueryOnly, resp.Mode)
	assert.Zero(t, exec.calls)
}
