package action

import (
	"context"
	"fmt"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// switchSceneExecutor changes the active OBS scene
type switchSceneExecutor struct {
	deps Deps
}

func newSwitchSceneExecutor(deps Deps) *switchSceneExecutor {
	return &switchSceneExecutor{deps: deps}
}

func (e *switchSceneExecutor) Type() workflow.ActionType {
	return workflow.ActionOBSSwitchScene
}

func (e *switchSceneExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.OBS == nil {
		return nil, fmt.Errorf("%w: obs", ErrClientUnavailable)
	}

	sceneName := resolveConfigString(e.deps.Resolver, action.Config, "scene_name", execCtx)
	if sceneName == "" {
		return nil, fmt.Errorf("switch scene action %q resolved to an empty scene name", action.Name)
	}

	return e.deps.OBS.SetCurrentScene(ctx, sceneName)
}

// setSourceVisibilityExecutor shows or hides an OBS source
type setSourceVisibilityExecutor struct {
	deps Deps
}

func newSetSourceVisibilityExecutor(deps Deps) *setSourceVisibilityExecutor {
	return &setSourceVisibilityExecutor{deps: deps}
}

func (e *setSourceVisibilityExecutor) Type() workflow.ActionType {
	return workflow.ActionOBSSetSourceVisibility
}

func (e *setSourceVisibilityExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.OBS == nil {
		return nil, fmt.Errorf("%w: obs", ErrClientUnavailable)
	}

	sourceName := resolveConfigString(e.deps.Resolver, action.Config, "source_name", execCtx)
	if sourceName == "" {
		return nil, fmt.Errorf("source visibility action %q resolved to an empty source name", action.Name)
	}

	visible := configBool(action.Config, "visible", true)
	scene := resolveConfigString(e.deps.Resolver, action.Config, "scene_name", execCtx)

	return e.deps.OBS.SetSourceVisibility(ctx, sourceName, visible, scene)
}

// streamControlExecutor covers the four parameterless OBS state actions:
// start and stop of streaming and recording.
type streamControlExecutor struct {
	deps       Deps
	actionType workflow.ActionType
}

func newStreamControlExecutor(deps Deps, actionType workflow.ActionType) *streamControlExecutor {
	return &streamControlExecutor{deps: deps, actionType: actionType}
}

func (e *streamControlExecutor) Type() workflow.ActionType {
	return e.actionType
}

func (e *streamControlExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.OBS == nil {
		return nil, fmt.Errorf("%w: obs", ErrClientUnavailable)
	}

	switch e.actionType {
	case workflow.ActionOBSStartStreaming:
		return e.deps.OBS.StartStreaming(ctx)
	case workflow.ActionOBSStopStreaming:
		return e.deps.OBS.StopStreaming(ctx)
	case workflow.ActionOBSStartRecording:
		return e.deps.OBS.StartRecording(ctx)
	case workflow.ActionOBSStopRecording:
		return e.deps.OBS.StopRecording(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownActionType, e.actionType)
	}
}
