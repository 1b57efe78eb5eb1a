package action

import (
	"context"
	"fmt"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// playSoundExecutor plays an alert sound through the media player
type playSoundExecutor struct {
	deps Deps
}

func newPlaySoundExecutor(deps Deps) *playSoundExecutor {
	return &playSoundExecutor{deps: deps}
}

func (e *playSoundExecutor) Type() workflow.ActionType {
	return workflow.ActionPlaySound
}

func (e *playSoundExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.Media == nil {
		return nil, fmt.Errorf("%w: media player", ErrClientUnavailable)
	}

	soundPath := resolveConfigString(e.deps.Resolver, action.Config, "sound_path", execCtx)
	if soundPath == "" {
		return nil, fmt.Errorf("play sound action %q resolved to an empty path", action.Name)
	}

	volume := configNumber(action.Config, "volume", 1.0)
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	// Endless looping wins over a loop count.
	loopCount := int(configNumber(action.Config, "loop_count", 1))
	if loopCount < 1 {
		loopCount = 1
	}
	if configBool(action.Config, "loop", false) {
		loopCount = -1
	}

	return e.deps.Media.PlaySound(ctx, soundPath, volume, loopCount)
}

// showImageExecutor displays an image overlay through the media player
type showImageExecutor struct {
	deps Deps
}

func newShowImageExecutor(deps Deps) *showImageExecutor {
	return &showImageExecutor{deps: deps}
}

func (e *showImageExecutor) Type() workflow.ActionType {
	return workflow.ActionShowImage
}

func (e *showImageExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	if e.deps.Media == nil {
		return nil, fmt.Errorf("%w: media player", ErrClientUnavailable)
	}

	imagePath := resolveConfigString(e.deps.Resolver, action.Config, "image_path", execCtx)
	if imagePath == "" {
		return nil, fmt.Errorf("show image action %q resolved to an empty path", action.Name)
	}

	duration := configNumber(action.Config, "duration", 5.0)
	if duration < 0 {
		duration = 0
	}
	position := configString(action.Config, "position")

	return e.deps.Media.ShowImage(ctx, imagePath, duration, position)
}
