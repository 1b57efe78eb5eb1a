package action

import (
	"context"
	"fmt"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// sendChatMessageExecutor posts a template-resolved message to chat
type sendChatMessageExecutor struct {
	deps Deps
}

func newSendChatMessageExecutor(deps Deps) *sendChatMessageExecutor {
	return &sendChatMessageExecutor{deps: deps}
}

func (e *sendChatMessageExecutor) Type() workflow.ActionType {
	return workflow.ActionTwitchSendChatMessage
}

func (e *sendChatMessageExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.Twitch == nil {
		return nil, fmt.Errorf("%w: twitch", ErrClientUnavailable)
	}

	message := resolveConfigString(e.deps.Resolver, action.Config, "message", execCtx)
	if message == "" {
		return nil, fmt.Errorf("chat message action %q resolved to an empty message", action.Name)
	}

	channel := resolveConfigString(e.deps.Resolver, action.Config, "channel", execCtx)
	if channel == "" {
		channel = e.deps.DefaultChannel
	}

	return e.deps.Twitch.SendChatMessage(ctx, channel, message)
}

// timeoutUserExecutor temporarily mutes a chat user
type timeoutUserExecutor struct {
	deps Deps
}

func newTimeoutUserExecutor(deps Deps) *timeoutUserExecutor {
	return &timeoutUserExecutor{deps: deps}
}

func (e *timeoutUserExecutor) Type() workflow.ActionType {
	return workflow.ActionTwitchTimeoutUser
}

func (e *timeoutUserExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.Twitch == nil {
		return nil, fmt.Errorf("%w: twitch", ErrClientUnavailable)
	}

	username := resolveConfigString(e.deps.Resolver, action.Config, "username", execCtx)
	if username == "" {
		return nil, fmt.Errorf("timeout action %q resolved to an empty username", action.Name)
	}

	duration := int(configNumber(action.Config, "duration", 300))
	reason := resolveConfigString(e.deps.Resolver, action.Config, "reason", execCtx)
	if reason == "" {
		reason = "Timed out by workflow"
	}
	channel := resolveConfigString(e.deps.Resolver, action.Config, "channel", execCtx)
	if channel == "" {
		channel = e.deps.DefaultChannel
	}

	return e.deps.Twitch.TimeoutUser(ctx, channel, username, duration, reason)
}

// banUserExecutor permanently bans a chat user
type banUserExecutor struct {
	deps Deps
}

func newBanUserExecutor(deps Deps) *banUserExecutor {
	return &banUserExecutor{deps: deps}
}

func (e *banUserExecutor) Type() workflow.ActionType {
	return workflow.ActionTwitchBanUser
}

func (e *banUserExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.Twitch == nil {
		return nil, fmt.Errorf("%w: twitch", ErrClientUnavailable)
	}

	username := resolveConfigString(e.deps.Resolver, action.Config, "username", execCtx)
	if username == "" {
		return nil, fmt.Errorf("ban action %q resolved to an empty username", action.Name)
	}

	reason := resolveConfigString(e.deps.Resolver, action.Config, "reason", execCtx)
	if reason == "" {
		reason = "Banned by workflow"
	}
	channel := resolveConfigString(e.deps.Resolver, action.Config, "channel", execCtx)
	if channel == "" {
		channel = e.deps.DefaultChannel
	}

	return e.deps.Twitch.BanUser(ctx, channel, username, reason)
}
