package events

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitSyncDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var count int32
	for i := 0; i < 3; i++ {
		bus.Subscribe(TwitchFollow, func(ctx context.Context, event Event) {
			atomic.AddInt32(&count, 1)
		})
	}

	bus.EmitSync(context.Background(), Event{
		Type: TwitchFollow,
		Data: map[string]interface{}{"username": "bob"},
	})

	assert.Equal(t, int32(3), atomic.LoadInt32(&count))
}

func TestEmitOnlyReachesMatchingType(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []Event
	bus.Subscribe(OBSSceneChanged, func(ctx context.Context, event Event) {
		mu.Lock()
		got = append(got, event)
		mu.Unlock()
	})

	bus.EmitSync(context.Background(), Event{Type: TwitchFollow})
	bus.EmitSync(context.Background(), Event{
		Type: OBSSceneChanged,
		Data: map[string]interface{}{"scene_name": "Gameplay"},
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, OBSSceneChanged, got[0].Type)
	assert.Equal(t, "Gameplay", got[0].Data["scene_name"])
}

func TestEmitDoesNotBlockOnSlowHandler(t *testing.T) {
	bus := NewBus()

	release := make(chan struct{})
	done := make(chan struct{})
	bus.Subscribe(ManualTrigger, func(ctx context.Context, event Event) {
		<-release
		close(done)
	})

	start := time.Now()
	bus.Emit(context.Background(), Event{Type: ManualTrigger})
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestEmitWithNoSubscribersIsNoop(t *testing.T) {
	bus := NewBus()
	bus.Emit(context.Background(), Event{Type: WorkflowFailed})
	bus.EmitSync(context.Background(), Event{Type: WorkflowFailed})
}
