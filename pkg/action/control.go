package action

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/justedave0/obscopilot-sub001/pkg/utils"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// delayExecutor pauses the execution for a config-resolved duration
type delayExecutor struct {
	deps Deps
}

func newDelayExecutor(deps Deps) *delayExecutor {
	return &delayExecutor{deps: deps}
}

func (e *delayExecutor) Type() workflow.ActionType {
	return workflow.ActionDelay
}

func (e *delayExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	duration := e.resolveDuration(action, execCtx)
	if duration <= 0 {
		return true, nil
	}

	timer := time.NewTimer(time.Duration(duration * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return true, nil
	}
}

// resolveDuration accepts either a number or a template string and floor
// clamps the result to zero.
func (e *delayExecutor) resolveDuration(action *workflow.Action, execCtx *workflow.ExecutionContext) float64 {
	var duration float64
	switch v := action.Config["duration"].(type) {
	case string:
		resolved := e.deps.Resolver.Resolve(v, execCtx.Scope())
		parsed, err := strconv.ParseFloat(strings.TrimSpace(resolved), 64)
		if err != nil {
			return 0
		}
		duration = parsed
	default:
		duration = configNumber(action.Config, "duration", 0)
	}
	if duration < 0 {
		return 0
	}
	return duration
}

// conditionalExecutor evaluates an operand comparison and returns the
// boolean as its result. The engine, not this executor, decides that a
// false result skips the node's successors.
type conditionalExecutor struct {
	deps Deps
}

func newConditionalExecutor(deps Deps) *conditionalExecutor {
	return &conditionalExecutor{deps: deps}
}

func (e *conditionalExecutor) Type() workflow.ActionType {
	return workflow.ActionConditional
}

func (e *conditionalExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	condition := configMap(action.Config, "condition")
	result := e.evaluateOperands(condition, execCtx)

	execCtx.SetVariable("condition_result_"+action.ID, result)
	return result, nil
}

// evaluateOperands compares two template-resolved operands. Both sides are
// resolved against the execution scope first; with convert_to_number both
// are coerced to float64 before comparing. An empty condition is true.
func (e *conditionalExecutor) evaluateOperands(condition map[string]interface{}, execCtx *workflow.ExecutionContext) bool {
	if len(condition) == 0 {
		return true
	}

	conditionType := configString(condition, "type")
	if conditionType == "" {
		conditionType = "equals"
	}

	left := resolveValue(e.deps.Resolver, condition["left"], execCtx)
	right := resolveValue(e.deps.Resolver, condition["right"], execCtx)

	if configBool(condition, "convert_to_number", false) {
		if l, lok := coerceNumber(left); lok {
			if r, rok := coerceNumber(right); rok {
				left, right = l, r
			}
		}
	}

	switch conditionType {
	case "equals":
		return left == right
	case "not_equals":
		return left != right
	case "contains":
		return operandContains(left, right)
	case "not_contains":
		return !operandContains(left, right)
	case "greater_than":
		l, lok := asFloat(left)
		r, rok := asFloat(right)
		return lok && rok && l > r
	case "less_than":
		l, lok := asFloat(left)
		r, rok := asFloat(right)
		return lok && rok && l < r
	case "regex_match":
		pattern, ok := right.(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			e.deps.Logger.Warn("invalid pattern in conditional action")
			return false
		}
		return re.MatchString(fmt.Sprintf("%v", left))
	default:
		e.deps.Logger.Warn("unknown condition type in conditional action")
		return false
	}
}

func coerceNumber(value interface{}) (float64, bool) {
	if f, ok := asFloat(value); ok {
		return f, true
	}
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func operandContains(left, right interface{}) bool {
	switch l := left.(type) {
	case string:
		return strings.Contains(l, fmt.Sprintf("%v", right))
	case []interface{}:
		for _, item := range l {
			if item == right {
				return true
			}
		}
		return false
	case map[string]interface{}:
		_, ok := l[fmt.Sprintf("%v", right)]
		return ok
	default:
		return false
	}
}

// webhookExecutor calls an external HTTP endpoint with a template-resolved
// URL, headers and payload.
type webhookExecutor struct {
	deps Deps
}

func newWebhookExecutor(deps Deps) *webhookExecutor {
	return &webhookExecutor{deps: deps}
}

func (e *webhookExecutor) Type() workflow.ActionType {
	return workflow.ActionWebhook
}

func (e *webhookExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.HTTP == nil {
		return nil, fmt.Errorf("%w: http", ErrClientUnavailable)
	}

	url := resolveConfigString(e.deps.Resolver, action.Config, "url", execCtx)
	if url == "" {
		return nil, fmt.Errorf("webhook action %q resolved to an empty url", action.Name)
	}

	method := strings.ToUpper(configString(action.Config, "method"))
	if method == "" {
		method = http.MethodPost
	}

	headers := make(map[string]string)
	for key, value := range configMap(action.Config, "headers") {
		if s, ok := value.(string); ok {
			headers[key] = e.deps.Resolver.Resolve(s, execCtx.Scope())
		}
	}

	var payload interface{}
	if raw, ok := action.Config["payload"]; ok {
		payload = resolveValue(e.deps.Resolver, raw, execCtx)
	}

	resp, err := e.deps.HTTP.Do(ctx, &utils.HTTPRequest{
		URL:     url,
		Method:  method,
		Headers: headers,
		Body:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}

	result := map[string]interface{}{
		"status_code": resp.StatusCode,
		"body":        resp.Body,
		"success":     resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
	execCtx.SetVariable("webhook_result_"+action.ID, result)
	return result, nil
}

// sendEmailExecutor sends a notification email via the configured sender
type sendEmailExecutor struct {
	deps Deps
}

func newSendEmailExecutor(deps Deps) *sendEmailExecutor {
	return &sendEmailExecutor{deps: deps}
}

func (e *sendEmailExecutor) Type() workflow.ActionType {
	return workflow.ActionSendEmail
}

func (e *sendEmailExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.Email == nil {
		return nil, fmt.Errorf("%w: email", ErrClientUnavailable)
	}

	to := resolveConfigString(e.deps.Resolver, action.Config, "to", execCtx)
	if to == "" {
		return nil, fmt.Errorf("email action %q resolved to an empty recipient", action.Name)
	}

	recipients := strings.Split(to, ",")
	for i := range recipients {
		recipients[i] = strings.TrimSpace(recipients[i])
	}

	message := utils.EmailMessage{
		From:    resolveConfigString(e.deps.Resolver, action.Config, "from", execCtx),
		To:      recipients,
		Subject: resolveConfigString(e.deps.Resolver, action.Config, "subject", execCtx),
		Body:    resolveConfigString(e.deps.Resolver, action.Config, "body", execCtx),
		HTML:    resolveConfigString(e.deps.Resolver, action.Config, "html", execCtx),
	}

	// smtp.SendMail has no context support, so the deadline is enforced
	// around the call.
	done := make(chan error, 1)
	go func() { done <- e.deps.Email.SendEmail(message) }()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("email send timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return true, nil
	}
}
