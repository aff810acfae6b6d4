package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// topic is a buffered channel of one event type and the handlers subscribed to it.
type topic[E any] struct {
	name     string
	events   chan E
	handlers []func(context.Context, E)
}

func newTopic[E any](name string, bufferSize int) *topic[E] {
	return &topic[E]{
		name:   name,
		events: make(chan E, bufferSize),
	}
}

// ChannelEventBus provides a channel-based event bus for async event handling.
// Each event type has its own dispatcher goroutine, so handlers of one type
// run sequentially in publish order.
type ChannelEventBus struct {
	trackEnded      *topic[domain.TrackEndedEvent]
	playbackStarted *topic[domain.PlaybackStartedEvent]
	playbackStopped *topic[domain.PlaybackStoppedEvent]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		trackEnded:      newTopic[domain.TrackEndedEvent]("TrackEnded", bufferSize),
		playbackStarted: newTopic[domain.PlaybackStartedEvent]("PlaybackStarted", bufferSize),
		playbackStopped: newTopic[domain.PlaybackStoppedEvent]("PlaybackStopped", bufferSize),
		ctx:             ctx,
		cancel:          cancel,
	}

	bus.wg.Add(3)
	go dispatch(bus, bus.trackEnded)
	go dispatch(bus, bus.playbackStarted)
	go dispatch(bus, bus.playbackStopped)

	return bus
}

// dispatch delivers events of one topic to its handlers until the bus closes.
func dispatch[E any](b *ChannelEventBus, t *topic[E]) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-t.events:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := t.handlers
			b.mu.RUnlock()
			for _, handler := range handlers {
				handler(b.ctx, event)
			}
		}
	}
}

// publish enqueues an event without blocking.
// If the channel buffer is full, the event is dropped with a warning.
func publish[E any](b *ChannelEventBus, t *topic[E], event E) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", t.name)
		return
	}

	select {
	case t.events <- event:
		slog.Debug("published event", "type", t.name)
	default:
		slog.Warn("event buffer full, dropping event", "type", t.name)
	}
}

func subscribe[E any](b *ChannelEventBus, t *topic[E], handler func(context.Context, E)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t.handlers = append(t.handlers, handler)
}

// --- EventPublisher interface ---

// PublishTrackEnded publishes a TrackEndedEvent.
func (b *ChannelEventBus) PublishTrackEnded(event domain.TrackEndedEvent) {
	publish(b, b.trackEnded, event)
}

// PublishPlaybackStarted publishes a PlaybackStartedEvent.
func (b *ChannelEventBus) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	publish(b, b.playbackStarted, event)
}

// PublishPlaybackStopped publishes a PlaybackStoppedEvent.
func (b *ChannelEventBus) PublishPlaybackStopped(event domain.PlaybackStoppedEvent) {
	publish(b, b.playbackStopped, event)
}

// --- EventSubscriber interface ---

// OnTrackEnded registers a handler for TrackEndedEvent.
func (b *ChannelEventBus) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	subscribe(b, b.trackEnded, handler)
}

// OnPlaybackStarted registers a handler for PlaybackStartedEvent.
func (b *ChannelEventBus) OnPlaybackStarted(
	handler func(context.Context, domain.PlaybackStartedEvent),
) {
	subscribe(b, b.playbackStarted, handler)
}

// OnPlaybackStopped registers a handler for PlaybackStoppedEvent.
func (b *ChannelEventBus) OnPlaybackStopped(
	handler func(context.Context, domain.PlaybackStoppedEvent),
) {
	subscribe(b, b.playbackStopped, handler)
}

// Close closes all event channels and stops dispatchers.
// After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()

	close(b.trackEnded.events)
	close(b.playbackStarted.events)
	close(b.playbackStopped.events)

	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
