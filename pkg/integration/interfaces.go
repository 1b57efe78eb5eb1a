// Package integration declares the contracts of the external collaborators
// the engine delegates side effects to. Real implementations (Twitch API,
// OBS WebSocket, media playback, AI providers) live outside the engine
// core; the engine only depends on these interfaces.
package integration

import "context"

// TwitchClient performs chat and moderation calls against Twitch
type TwitchClient interface {
	// SendChatMessage posts a message to the channel's chat
	SendChatMessage(ctx context.Context, channel, message string) (bool, error)

	// TimeoutUser temporarily mutes a user for the given number of seconds
	TimeoutUser(ctx context.Context, channel, username string, durationSeconds int, reason string) (bool, error)

	// BanUser permanently bans a user from the channel
	BanUser(ctx context.Context, channel, username, reason string) (bool, error)
}

// OBSClient controls OBS Studio scenes, sources, streaming and recording
type OBSClient interface {
	// SetCurrentScene switches the active program scene
	SetCurrentScene(ctx context.Context, sceneName string) (bool, error)

	// SetSourceVisibility shows or hides a source. Scene is optional; an
	// empty scene targets the source's own scene.
	SetSourceVisibility(ctx context.Context, sourceName string, visible bool, scene string) (bool, error)

	StartStreaming(ctx context.Context) (bool, error)
	StopStreaming(ctx context.Context) (bool, error)
	StartRecording(ctx context.Context) (bool, error)
	StopRecording(ctx context.Context) (bool, error)
}

// MediaPlayer plays local media files for stream alerts
type MediaPlayer interface {
	// PlaySound plays an audio file at a 0..1 volume, loopCount times.
	// A loopCount of -1 loops until the player is stopped.
	PlaySound(ctx context.Context, filePath string, volume float64, loopCount int) (bool, error)

	// ShowImage displays an image overlay for the given number of seconds
	ShowImage(ctx context.Context, filePath string, durationSeconds float64, position string) (bool, error)
}

// AIRequest carries one text-generation request
type AIRequest struct {
	Prompt string

	// SystemMessage primes the model before the prompt; empty means none
	SystemMessage string

	Temperature float64
	MaxTokens   int
}

// AIClient generates text responses from a prompt
type AIClient interface {
	GenerateResponse(ctx context.Context, req AIRequest) (string, error)
}
