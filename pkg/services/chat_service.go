// Package services orchestrates the chat pipeline: classify, generate,
// validate, execute, assemble. Each call is an independent synchronous
// invocation; the connection pool is the only shared resource.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/apperrors"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/assembler"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/executor"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/logging"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/router"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/sqlguard"
)

// SchemaProvider supplies the schema summary embedded in generation prompts.
type SchemaProvider interface {
	Summary(ctx context.Context) (string, error)
}

// QueryGenerator produces a candidate query from a question.
type QueryGenerator interface {
	Generate(ctx context.Context, schemaSummary, question string, mode models.Mode) (*models.CandidateQuery, error)
}

// ChatService runs a user message through the full pipeline and returns
// one of the structured payload types.
type ChatService struct {
	router    *router.Router
	schema    SchemaProvider
	generator QueryGenerator
	guard     *sqlguard.Guard
	executor  executor.QueryExecutor
	logger    *zap.Logger
}

func NewChatService(schema SchemaProvider, generator QueryGenerator, guard *sqlguard.Guard, exec executor.QueryExecutor, logger *zap.Logger) *ChatService {
	return &ChatService{
		router:    router.New(),
		schema:    schema,
		generator: generator,
		guard:     guard,
		executor:  exec,
		logger:    logger.Named("chat"),
	}
}

// Handle processes one message end to end. The returned value is always one
// of *models.ChatResponse, *models.ClarifyResponse, *models.DBResponse, or
// *models.ErrorResponse; the error return is reserved for infrastructure
// failures the handler should turn into a 500.
func (s *ChatService) Handle(ctx context.Context, message string) (any, error) {
	decision := s.router.Classify(message, "")
	s.logger.Info("message classified",
		zap.String("mode", string(decision.Mode)),
		zap.String("message", logging.SanitizeQuery(message)))

	switch decision.Mode {
	case models.ModeChat:
		return assembler.Chat(s.chatReply(message)), nil
	case models.ModeClarify:
		return assembler.Clarify(decision.Missing), nil
	}

	schemaSummary, err := s.schema.Summary(ctx)
	if err != nil {
		s.logger.Warn("schema summary unavailable", zap.Error(err))
		schemaSummary = "Schema unavailable."
	}

	candidate, err := s.generator.Generate(ctx, schemaSummary, message, decision.Mode)
	if err != nil {
		if errors.Is(err, apperrors.ErrUpstreamMalformed) {
			// A garbled model response is a routing failure, not a hard
			// error: ask the user to rephrase instead of failing.
			return assembler.Chat("I wasn't able to generate a query for that question. Could you rephrase?"), nil
		}
		return nil, fmt.Errorf("generate candidate: %w", err)
	}

	// The model's self-reported mode may refine which DB variant applies,
	// never override a message-text rule.
	finalMode := s.router.Classify(message, candidate.DeclaredMode).Mode

	verdict := s.guard.Validate(candidate)
	if !verdict.Accepted {
		rejection := &apperrors.GuardRejection{Reason: verdict.Reason}
		s.logger.Warn("candidate rejected",
			zap.String("reason", rejection.Reason),
			zap.String("sql", logging.SanitizeQuery(candidate.RawText)))
		return errorResponse(rejection, rejection.Reason), nil
	}

	var result *executor.Result
	if finalMode != models.ModeQueryOnly {
		result, err = s.executor.Execute(ctx, verdict.SanitizedText, candidate.Params)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrResourceExhausted):
				return errorResponse(apperrors.ErrResourceExhausted, "no database connection became available in time"), nil
			case errors.Is(err, apperrors.ErrExecutionFailed):
				return errorResponse(apperrors.ErrExecutionFailed, logging.SanitizeError(err)), nil
			default:
				return nil, fmt.Errorf("execute query: %w", err)
			}
		}
	}

	return assembler.DB(finalMode, verdict.SanitizedText, candidate.Params, candidate.Explanation, result, verdict.Reason), nil
}

// chatReply answers capability questions and greetings without touching the
// model or the database.
func (s *ChatService) chatReply(string) string {
	return "Hi! I can answer questions about the employee database — departments, employees, managers, and performance reviews. Ask me something like \"how many employees are in Sales?\"."
}

func errorResponse(sentinel error, message string) *models.ErrorResponse {
	code := "EXECUTION_FAILED"
	retryable := false
	switch {
	case errors.Is(sentinel, apperrors.ErrGuardRejected):
		code = "GUARD_REJECTED"
	case errors.Is(sentinel, apperrors.ErrResourceExhausted):
		code = "RESOURCE_EXHAUSTED"
		retryable = true
	}
	return &models.ErrorResponse{
		Type:      "ERROR",
		ErrorCode: code,
		Message:   message,
		Retryable: retryable,
	}
}
