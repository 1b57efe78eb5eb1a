// Package action executes workflow actions. One executor exists per action
// type; a registry built at startup maps types to executors and applies the
// shared timeout, retry and result-recording policy around each call.
package action

import (
	"context"
	"errors"

	"github.com/justedave0/obscopilot-sub001/pkg/integration"
	"github.com/justedave0/obscopilot-sub001/pkg/logging"
	"github.com/justedave0/obscopilot-sub001/pkg/template"
	"github.com/justedave0/obscopilot-sub001/pkg/utils"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// Common action errors
var (
	// ErrUnknownActionType indicates no executor is registered for a type
	ErrUnknownActionType = errors.New("unknown action type")

	// ErrClientUnavailable indicates the external collaborator an action
	// needs was not configured
	ErrClientUnavailable = errors.New("external client not available")
)

// Executor implements the type-specific part of action execution: config
// extraction, template resolution, and delegation to an external client.
type Executor interface {
	// Type reports the action type this executor handles
	Type() workflow.ActionType

	// Execute performs the action's side effect and returns its result.
	// The context carries the per-attempt deadline.
	Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error)
}

// Deps bundles the external collaborators and cross-cutting helpers the
// executors delegate to. Nil clients disable the actions that need them.
type Deps struct {
	Twitch integration.TwitchClient
	OBS    integration.OBSClient
	Media  integration.MediaPlayer
	AI     integration.AIClient
	HTTP   *utils.HTTPClient
	Email  utils.EmailSender

	Resolver *template.Resolver
	Logger   logging.Logger

	// DefaultChannel is used by Twitch actions whose config does not name
	// a channel.
	DefaultChannel string
}
