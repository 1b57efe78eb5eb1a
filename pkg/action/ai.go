package action

import (
	"context"
	"fmt"

	"github.com/justedave0/obscopilot-sub001/pkg/integration"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// generateResponseExecutor asks the AI client for a text response and
// stores it both under the shared "ai_response" variable and under an
// action-scoped key, so chained actions can template either.
type generateResponseExecutor struct {
	deps Deps
}

func newGenerateResponseExecutor(deps Deps) *generateResponseExecutor {
	return &generateResponseExecutor{deps: deps}
}

func (e *generateResponseExecutor) Type() workflow.ActionType {
	return workflow.ActionAIGenerateResponse
}

func (e *generateResponseExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.AI == nil {
		return nil, fmt.Errorf("%w: ai", ErrClientUnavailable)
	}

	prompt := resolveConfigString(e.deps.Resolver, action.Config, "prompt", execCtx)
	if prompt == "" {
		return nil, fmt.Errorf("ai response action %q resolved to an empty prompt", action.Name)
	}

	response, err := e.deps.AI.GenerateResponse(ctx, integration.AIRequest{
		Prompt:        prompt,
		SystemMessage: resolveConfigString(e.deps.Resolver, action.Config, "system_message", execCtx),
		Temperature:   configNumber(action.Config, "temperature", 0.7),
		MaxTokens:     int(configNumber(action.Config, "max_tokens", 150)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	execCtx.SetVariable("ai_response", response)
	execCtx.SetVariable("ai_response_"+action.ID, response)
	return response, nil
}
