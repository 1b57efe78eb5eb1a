// Package events provides the in-process event bus the workflow engine
// subscribes to. Adapters (Twitch EventSub, OBS WebSocket, the GUI) emit
// events onto the bus; the engine consumes them.
package events

import (
	"context"
	"sync"
)

// Type identifies a kind of event on the bus
type Type string

// Event types emitted by the external adapters
const (
	// Twitch events
	TwitchChatMessage         Type = "twitch_chat_message"
	TwitchFollow              Type = "twitch_follow"
	TwitchSubscription        Type = "twitch_subscription"
	TwitchBits                Type = "twitch_bits"
	TwitchRaid                Type = "twitch_raid"
	TwitchChannelPointsRedeem Type = "twitch_channel_points_redeem"
	TwitchStreamOnline        Type = "twitch_stream_online"
	TwitchStreamOffline       Type = "twitch_stream_offline"

	// OBS events
	OBSSceneChanged      Type = "obs_scene_changed"
	OBSStreamingStarted  Type = "obs_streaming_started"
	OBSStreamingStopped  Type = "obs_streaming_stopped"
	OBSRecordingStarted  Type = "obs_recording_started"
	OBSRecordingStopped  Type = "obs_recording_stopped"

	// Manual events
	ManualTrigger Type = "manual"
	HotkeyPressed Type = "hotkey"

	// Workflow lifecycle events emitted by the engine itself
	WorkflowStarted   Type = "workflow_started"
	WorkflowCompleted Type = "workflow_completed"
	WorkflowFailed    Type = "workflow_failed"
)

// Event is a single occurrence delivered through the bus
type Event struct {
	// Type of the event
	Type Type `json:"type"`

	// Data is the event-kind-specific payload
	Data map[string]interface{} `json:"data"`
}

// Handler processes one event. Handlers run on their own goroutine; a slow
// handler does not hold up other subscribers.
type Handler func(ctx context.Context, event Event)

// Bus is an in-process publish/subscribe event bus.
//
// Delivery is at-least-once for live subscribers and carries no persistence
// guarantee: events emitted while nothing is subscribed are dropped.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for the given event type
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Emit delivers an event to every subscriber of its type. Each handler runs
// on its own goroutine; Emit does not wait for handlers to finish.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.subscribers[event.Type]
	b.mu.RUnlock()

	for _, handler := range handlers {
		go handler(ctx, event)
	}
}

// EmitSync delivers an event and waits for all handlers to return. Used by
// tests and by emitters that need completion ordering.
func (b *Bus) EmitSync(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.subscribers[event.Type]
	b.mu.RUnlock()

	var wg sync.WaitGroup
	for _, handler := range handlers {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			h(ctx, event)
		}(handler)
	}
	wg.Wait()
}
