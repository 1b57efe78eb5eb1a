package integration

import (
	"context"
	"sync"
)

// Call records one invocation on a fake client
type Call struct {
	Method string
	Args   []interface{}
}

// FakeTwitchClient is an in-memory TwitchClient for tests
type FakeTwitchClient struct {
	mu    sync.Mutex
	calls []Call

	// Err, when set, is returned by every method
	Err error
}

// NewFakeTwitchClient creates a fake Twitch client
func NewFakeTwitchClient() *FakeTwitchClient {
	return &FakeTwitchClient{}
}

func (f *FakeTwitchClient) record(method string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of every recorded invocation
func (f *FakeTwitchClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *FakeTwitchClient) SendChatMessage(ctx context.Context, channel, message string) (bool, error) {
	f.record("SendChatMessage", channel, message)
	if f.Err != nil {
		return false, f.Err
	}
	return true, nil
}

func (f *FakeTwitchClient) TimeoutUser(ctx context.Context, channel, username string, durationSeconds int, reason string) (bool, error) {
	f.record("TimeoutUser", channel, username, durationSeconds, reason)
	if f.Err != nil {
		return false, f.Err
	}
	return true, nil
}

func (f *FakeTwitchClient) BanUser(ctx context.Context, channel, username, reason string) (bool, error) {
	f.record("BanUser", channel, username, reason)
	if f.Err != nil {
		return false, f.Err
	}
	return true, nil
}

// FakeOBSClient is an in-memory OBSClient for tests
type FakeOBSClient struct {
	mu    sync.Mutex
	calls []Call

	Err error

	CurrentScene string
	Streaming    bool
	Recording    bool
}

// NewFakeOBSClient creates a fake OBS client
func NewFakeOBSClient() *FakeOBSClient {
	return &FakeOBSClient{}
}

func (f *FakeOBSClient) record(method string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of every recorded invocation
func (f *FakeOBSClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *FakeOBSClient) SetCurrentScene(ctx context.Context, sceneName string) (bool, error) {
	f.record("SetCurrentScene", sceneName)
	if f.Err != nil {
		return false, f.Err
	}
	f.mu.Lock()
	f.CurrentScene = sceneName
	f.mu.Unlock()
	return true, nil
}

func (f *FakeOBSClient) SetSourceVisibility(ctx context.Context, sourceName string, visible bool, scene string) (bool, error) {
	f.record("SetSourceVisibility", sourceName, visible, scene)
	if f.Err != nil {
		return false, f.Err
	}
	return true, nil
}

func (f *FakeOBSClient) StartStreaming(ctx context.Context) (bool, error) {
	f.record("StartStreaming")
	if f.Err != nil {
		return false, f.Err
	}
	f.mu.Lock()
	f.Streaming = true
	f.mu.Unlock()
	return true, nil
}

func (f *FakeOBSClient) StopStreaming(ctx context.Context) (bool, error) {
	f.record("StopStreaming")
	if f.Err != nil {
		return false, f.Err
	}
	f.mu.Lock()
	f.Streaming = false
	f.mu.Unlock()
	return true, nil
}

func (f *FakeOBSClient) StartRecording(ctx context.Context) (bool, error) {
	f.record("StartRecording")
	if f.Err != nil {
		return false, f.Err
	}
	f.mu.Lock()
	f.Recording = true
	f.mu.Unlock()
	return true, nil
}

func (f *FakeOBSClient) StopRecording(ctx context.Context) (bool, error) {
	f.record("StopRecording")
	if f.Err != nil {
		return false, f.Err
	}
	f.mu.Lock()
	f.Recording = false
	f.mu.Unlock()
	return true, nil
}

// FakeMediaPlayer is an in-memory MediaPlayer for tests
type FakeMediaPlayer struct {
	mu    sync.Mutex
	calls []Call

	Err error
}

// NewFakeMediaPlayer creates a fake media player
func NewFakeMediaPlayer() *FakeMediaPlayer {
	return &FakeMediaPlayer{}
}

// Calls returns a copy of every recorded invocation
func (f *FakeMediaPlayer) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *FakeMediaPlayer) PlaySound(ctx context.Context, filePath string, volume float64, loopCount int) (bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: "PlaySound", Args: []interface{}{filePath, volume, loopCount}})
	f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	return true, nil
}

func (f *FakeMediaPlayer) ShowImage(ctx context.Context, filePath string, durationSeconds float64, position string) (bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: "ShowImage", Args: []interface{}{filePath, durationSeconds, position}})
	f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	return true, nil
}

// FakeAIClient returns a canned response for tests
type FakeAIClient struct {
	mu       sync.Mutex
	requests []AIRequest

	Response string
	Err      error
}

// NewFakeAIClient creates a fake AI client with a canned response
func NewFakeAIClient(response string) *FakeAIClient {
	return &FakeAIClient{Response: response}
}

// Requests returns every request the fake was asked to answer
func (f *FakeAIClient) Requests() []AIRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AIRequest(nil), f.requests...)
}

// Prompts returns the prompt of every recorded request
func (f *FakeAIClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	prompts := make([]string, len(f.requests))
	for i, req := range f.requests {
		prompts[i] = req.Prompt
	}
	return prompts
}

func (f *FakeAIClient) GenerateResponse(ctx context.Context, req AIRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}
