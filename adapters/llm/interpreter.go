package llm

import (
	"context"
	"fmt"
	"time"

	"cladeshift/domain/combine"
	"cladeshift/ports"
)

// InterpreterAdapter implements InterpreterPort using an LLM in two
// stages: first ask which elements shift jointly and in which direction,
// then interpret only the rows whose observed direction the model's
// expectation confirmed.
type InterpreterAdapter struct {
	config    Config
	llmClient ports.LLMClient
}

// NewInterpreterAdapter creates an LLM interpreter adapter.
func NewInterpreterAdapter(config Config) (*InterpreterAdapter, error) {
	client, err := newLLMClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return &InterpreterAdapter{config: config, llmClient: client}, nil
}

// NewInterpreterAdapterWithClient injects a client directly, for tests.
func NewInterpreterAdapterWithClient(config Config, client ports.LLMClient) *InterpreterAdapter {
	return &InterpreterAdapter{config: config, llmClient: client}
}

// Interpret runs the two-stage flow for one combination table. Tables
// where no observed row survives the agreement filter get an empty-text
// interpretation rather than an error.
func (a *InterpreterAdapter) Interpret(ctx context.Context, table combine.CombinationTable) (*ports.Interpretation, error) {
	if len(table.Rows) == 0 {
		return &ports.Interpretation{Label: table.Label}, nil
	}

	jointRaw, err := a.callWithRetry(ctx, buildJointShiftPrompt(table.Rows))
	if err != nil {
		return nil, fmt.Errorf("joint-shift prompt failed for %s: %w", table.Label, err)
	}

	agreed := filterAgreement(table.Rows, parseExpectations(jointRaw))
	if len(agreed) == 0 {
		return &ports.Interpretation{Label: table.Label}, nil
	}

	text, err := a.callWithRetry(ctx, buildInterpretationPrompt(agreed))
	if err != nil {
		return nil, fmt.Errorf("interpretation prompt failed for %s: %w", table.Label, err)
	}

	return &ports.Interpretation{Label: table.Label, Text: text}, nil
}

// callWithRetry makes up to three attempts with linear backoff.
func (a *InterpreterAdapter) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		out, err := a.llmClient.ChatCompletion(ctx, a.config.Model, prompt, a.config.MaxTokens)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt < 3 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}
	}
	return "", lastErr
}
