package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

func TestChannelEventBus_DeliversTrackEnded(t *testing.T) {
	bus := NewChannelEventBus(DefaultEventBufferSize)
	defer bus.Close()

	received := make(chan domain.TrackEndedEvent, 1)
	bus.OnTrackEnded(func(_ context.Context, e domain.TrackEndedEvent) {
		received <- e
	})

	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: snowflake.ID(1), PlaybackID: 3})

	select {
	case e := <-received:
		if e.GuildID != 1 || e.PlaybackID != 3 {
			t.Errorf("unexpected event %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestChannelEventBus_PreservesOrderPerType(t *testing.T) {
	bus := NewChannelEventBus(DefaultEventBufferSize)
	defer bus.Close()

	var mu sync.Mutex
	var got []uint64
	done := make(chan struct{})

	bus.OnTrackEnded(func(_ context.Context, e domain.TrackEndedEvent) {
		mu.Lock()
		got = append(got, e.PlaybackID)
		n := len(got)
		mu.Unlock()
		if n == 10 {
			close(done)
		}
	})

	for i := range 10 {
		bus.PublishTrackEnded(domain.TrackEndedEvent{PlaybackID: uint64(i)})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, id := range got {
		if id != uint64(i) {
			t.Fatalf("expected events in publish order, got %v", got)
		}
	}
}

func TestChannelEventBus_MultipleHandlers(t *testing.T) {
	bus := NewChannelEventBus(DefaultEventBufferSize)
	defer bus.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	bus.OnPlaybackStarted(func(context.Context, domain.PlaybackStartedEvent) { wg.Done() })
	bus.OnPlaybackStarted(func(context.Context, domain.PlaybackStartedEvent) { wg.Done() })

	bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: snowflake.ID(1)})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for both handlers")
	}
}

func TestChannelEventBus_PublishAfterCloseDoesNotPanic(t *testing.T) {
	bus := NewChannelEventBus(1)
	bus.Close()

	bus.PublishTrackEnded(domain.TrackEndedEvent{})
	bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{})
	bus.PublishPlaybackStopped(domain.PlaybackStoppedEvent{})

	// Close is idempotent.
	bus.Close()
}

func TestChannelEventBus_FullBufferDropsEvent(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	bus.OnPlaybackStopped(func(context.Context, domain.PlaybackStoppedEvent) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
	})

	// First event occupies the dispatcher, second fills the buffer.
	bus.PublishPlaybackStopped(domain.PlaybackStoppedEvent{})
	<-started
	bus.PublishPlaybackStopped(domain.PlaybackStoppedEvent{})

	// Third must return immediately instead of blocking.
	returned := make(chan struct{})
	go func() {
		bus.PublishPlaybackStopped(domain.PlaybackStoppedEvent{})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full buffer")
	}

	close(block)
}
