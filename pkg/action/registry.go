package action

import (
	"context"
	"fmt"
	"time"

	"github.com/justedave0/obscopilot-sub001/pkg/logging"
	"github.com/justedave0/obscopilot-sub001/pkg/template"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// DefaultActionTimeout bounds one execution attempt when neither the action
// nor the engine configures one.
const DefaultActionTimeout = 30 * time.Second

// Registry holds one executor per action type, built once at startup and
// immutable afterwards. Execute wraps every call with the shared timeout,
// retry and result-recording policy.
type Registry struct {
	executors      map[workflow.ActionType]Executor
	logger         logging.Logger
	defaultTimeout time.Duration
}

// NewRegistry builds the executor table from the available collaborators
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Resolver == nil {
		deps.Resolver = template.NewResolver(deps.Logger)
	}

	r := &Registry{
		executors:      make(map[workflow.ActionType]Executor),
		logger:         deps.Logger,
		defaultTimeout: DefaultActionTimeout,
	}

	for _, e := range []Executor{
		newSendChatMessageExecutor(deps),
		newTimeoutUserExecutor(deps),
		newBanUserExecutor(deps),
		newSwitchSceneExecutor(deps),
		newSetSourceVisibilityExecutor(deps),
		newStreamControlExecutor(deps, workflow.ActionOBSStartStreaming),
		newStreamControlExecutor(deps, workflow.ActionOBSStopStreaming),
		newStreamControlExecutor(deps, workflow.ActionOBSStartRecording),
		newStreamControlExecutor(deps, workflow.ActionOBSStopRecording),
		newPlaySoundExecutor(deps),
		newShowImageExecutor(deps),
		newGenerateResponseExecutor(deps),
		newDelayExecutor(deps),
		newConditionalExecutor(deps),
		newWebhookExecutor(deps),
		newRunProcessExecutor(deps),
		newSendEmailExecutor(deps),
	} {
		r.executors[e.Type()] = e
	}
	return r
}

// Register adds or replaces the executor for one action type
func (r *Registry) Register(e Executor) {
	r.executors[e.Type()] = e
}

// SetDefaultTimeout overrides the fallback per-attempt timeout
func (r *Registry) SetDefaultTimeout(timeout time.Duration) {
	if timeout > 0 {
		r.defaultTimeout = timeout
	}
}

// Execute runs one action with the shared policy: a per-attempt deadline,
// retries per the action's retry config, and the result written into the
// execution context under a key derived from the action id.
//
// Error policy: with max_attempts > 1 the last error propagates after the
// attempts are exhausted and fails the run; without retry the error is
// logged and swallowed, yielding a nil result.
func (r *Registry) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	executor, ok := r.executors[action.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActionType, action.Type)
	}

	timeout := r.defaultTimeout
	if action.TimeoutSeconds > 0 {
		timeout = time.Duration(action.TimeoutSeconds * float64(time.Second))
	}

	attempt := func() (interface{}, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return executor.Execute(attemptCtx, action, execCtx)
	}

	var result interface{}
	var err error
	if action.Retry != nil && action.Retry.MaxAttempts > 1 {
		result, err = executeWithRetry(ctx, r.logger, action, attempt)
		if err != nil {
			return nil, err
		}
	} else {
		result, err = attempt()
		if err != nil {
			r.logger.Error("action failed",
				logging.F("action_id", action.ID),
				logging.F("action_type", string(action.Type)),
				logging.F("error", err))
			result = nil
		}
	}

	execCtx.SetVariable("action_result_"+action.ID, result)
	return result, nil
}
