package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/apperrors"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/retry"
)

// envelope is the JSON shape the model is instructed to emit.
type envelope struct {
	SQL         string         `json:"sql"`
	Params      map[string]any `json:"params"`
	Mode        string         `json:"mode"`
	Explanation string         `json:"explanation"`
}

// Generator turns a natural language question plus a schema summary into a
// candidate query via an LLM client, retrying transient upstream failures.
type Generator struct {
	client   Client
	retryCfg *retry.Config
	logger   *zap.Logger
}

func NewGenerator(client Client, logger *zap.Logger) *Generator {
	return &Generator{
		client:   client,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("generator"),
	}
}

// Generate asks the model for a candidate query. A response that cannot be
// parsed into the expected envelope is reported as ErrUpstreamMalformed so
// callers can degrade gracefully instead of failing the request.
func (g *Generator) Generate(ctx context.Context, schemaSummary, question string, mode models.Mode) (*models.CandidateQuery, error) {
	prompt := BuildPrompt(schemaSummary, question, mode)

	response, err := retry.DoWithResult(ctx, g.retryCfg, IsRetryable, func() (string, error) {
		return g.client.Complete(ctx, systemMessage, prompt)
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	candidate, err := parseCandidate(response)
	if err != nil {
		g.logger.Warn("unparseable model response",
			zap.String("model", g.client.Model()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamMalformed, err)
	}

	g.logger.Debug("candidate query generated",
		zap.String("model", g.client.Model()),
		zap.String("mode", string(candidate.DeclaredMode)))

	return candidate, nil
}

func parseCandidate(response string) (*models.CandidateQuery, error) {
	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal([]byte(jsonStr), &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	if strings.TrimSpace(env.SQL) == "" {
		return nil, fmt.Errorf("envelope has empty sql field")
	}

	return &models.CandidateQuery{
		RawText:      env.SQL,
		Params:       env.Params,
		DeclaredMode: models.ParseMode(env.Mode),
		Explanation:  env.Explanation,
	}, nil
}
