package infrastructure

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"golang.org/x/time/rate"
)

// Ensure Presence implements ports.PresenceUpdater.
var _ ports.PresenceUpdater = (*Presence)(nil)

// DefaultPresenceInterval is the minimum time between two gateway status updates.
const DefaultPresenceInterval = 4 * time.Second

// maxActivityNameLength is the longest activity name Discord accepts.
const maxActivityNameLength = 128

// statusUpdater is the subset of *discordgo.Session used by Presence.
type statusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Presence keeps the bot's "Listening to" status in sync with playback.
// Callers only record the desired status; a worker goroutine applies the
// latest one, throttled so that bursts of track changes collapse into a
// single gateway update.
type Presence struct {
	updater statusUpdater
	limiter *rate.Limiter

	mu      sync.Mutex
	pending *discordgo.UpdateStatusData

	notify chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPresence creates a Presence and starts its worker.
// A non-positive interval falls back to DefaultPresenceInterval.
func NewPresence(updater statusUpdater, interval time.Duration) *Presence {
	if interval <= 0 {
		interval = DefaultPresenceInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Presence{
		updater: updater,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		notify:  make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go p.run()

	return p
}

// SetListening shows "Listening to <title>" linked to url.
func (p *Presence) SetListening(title, url string) {
	p.set(&discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{
			{
				Name: truncateRunes(title, maxActivityNameLength),
				Type: discordgo.ActivityTypeListening,
				URL:  url,
			},
		},
	})
}

// Clear removes the activity.
func (p *Presence) Clear() {
	p.set(&discordgo.UpdateStatusData{
		Status:     string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{},
	})
}

// Close stops the worker. Pending updates are discarded.
func (p *Presence) Close() {
	p.cancel()
	<-p.done
}

func (p *Presence) set(status *discordgo.UpdateStatusData) {
	p.mu.Lock()
	p.pending = status
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *Presence) run() {
	defer close(p.done)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.notify:
		}

		if err := p.limiter.Wait(p.ctx); err != nil {
			return
		}

		p.mu.Lock()
		status := p.pending
		p.pending = nil
		p.mu.Unlock()

		if status == nil {
			continue
		}

		if err := p.updater.UpdateStatusComplex(*status); err != nil {
			slog.Warn("failed to update presence", "error", err)
		}
	}
}

// truncateRunes cuts s to at most n characters without splitting a multi-byte character.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
