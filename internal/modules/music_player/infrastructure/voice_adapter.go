package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// Ensure VoiceAdapter implements the voice ports.
var (
	_ ports.AudioPlayer     = (*VoiceAdapter)(nil)
	_ ports.VoiceConnection = (*VoiceAdapter)(nil)
)

var (
	// ErrNoVoiceConnection is returned when the guild has no voice connection.
	ErrNoVoiceConnection = errors.New("no voice connection for guild")
	// ErrNoActivePlayback is returned when the guild has nothing streaming.
	ErrNoActivePlayback = ports.ErrNoActivePlayback
)

// DefaultStopTimeout bounds how long Stop waits for the stream goroutine to exit.
const DefaultStopTimeout = 5 * time.Second

// voiceSession is the part of a Discord voice connection used for playback.
type voiceSession interface {
	OpusSender() chan<- []byte
	Speaking(speaking bool) error
	ChangeChannel(channelID string) error
	Disconnect() error
}

type audioSource interface {
	Open(ctx context.Context, url string) (PCMStream, error)
}

type discordVoice struct {
	vc *discordgo.VoiceConnection
}

func (d discordVoice) OpusSender() chan<- []byte     { return d.vc.OpusSend }
func (d discordVoice) Speaking(speaking bool) error  { return d.vc.Speaking(speaking) }
func (d discordVoice) ChangeChannel(id string) error { return d.vc.ChangeChannel(id, false, true) }
func (d discordVoice) Disconnect() error             { return d.vc.Disconnect() }

// playback is one running stream in a guild.
type playback struct {
	track    *domain.Track
	stop     chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool
	done     chan struct{}
	paused   atomic.Bool
	cancel   context.CancelFunc
}

func (p *playback) signalStop() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		close(p.stop)
	})
}

// VoiceAdapter owns the guilds' Discord voice connections and streams tracks into them.
type VoiceAdapter struct {
	join        func(guildID, channelID string) (voiceSession, error)
	source      audioSource
	streamer    *OpusStreamer
	stopTimeout time.Duration

	mu        sync.Mutex
	voices    map[snowflake.ID]voiceSession
	playbacks map[snowflake.ID]*playback
}

// NewVoiceAdapter creates a VoiceAdapter joining voice channels through session.
func NewVoiceAdapter(
	session *discordgo.Session,
	source *FFmpegSource,
	streamer *OpusStreamer,
) *VoiceAdapter {
	join := func(guildID, channelID string) (voiceSession, error) {
		vc, err := session.ChannelVoiceJoin(guildID, channelID, false, true)
		if err != nil {
			return nil, err
		}
		return discordVoice{vc: vc}, nil
	}
	return newVoiceAdapter(join, source, streamer)
}

func newVoiceAdapter(
	join func(guildID, channelID string) (voiceSession, error),
	source audioSource,
	streamer *OpusStreamer,
) *VoiceAdapter {
	return &VoiceAdapter{
		join:        join,
		source:      source,
		streamer:    streamer,
		stopTimeout: DefaultStopTimeout,
		voices:      make(map[snowflake.ID]voiceSession),
		playbacks:   make(map[snowflake.ID]*playback),
	}
}

// --- VoiceConnection ---

// JoinChannel connects to the voice channel, or moves there if already connected.
func (a *VoiceAdapter) JoinChannel(_ context.Context, guildID, channelID snowflake.ID) error {
	a.mu.Lock()
	voice, ok := a.voices[guildID]
	a.mu.Unlock()

	if ok {
		if err := voice.ChangeChannel(channelID.String()); err != nil {
			return fmt.Errorf("failed to move voice connection: %w", err)
		}
		return nil
	}

	voice, err := a.join(guildID.String(), channelID.String())
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	a.mu.Lock()
	a.voices[guildID] = voice
	a.mu.Unlock()

	slog.Info("joined voice channel", "guild", guildID, "channel", channelID)
	return nil
}

// MoveChannel moves the guild's voice connection to another channel.
func (a *VoiceAdapter) MoveChannel(_ context.Context, guildID, channelID snowflake.ID) error {
	a.mu.Lock()
	voice, ok := a.voices[guildID]
	a.mu.Unlock()

	if !ok {
		return ErrNoVoiceConnection
	}

	if err := voice.ChangeChannel(channelID.String()); err != nil {
		return fmt.Errorf("failed to move voice connection: %w", err)
	}
	return nil
}

// LeaveChannel stops any playback and disconnects from voice.
// Leaving a guild without a connection is a no-op.
func (a *VoiceAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if err := a.Stop(ctx, guildID); err != nil {
		slog.Warn("failed to stop playback before leaving", "guild", guildID, "error", err)
	}

	a.mu.Lock()
	voice, ok := a.voices[guildID]
	delete(a.voices, guildID)
	a.mu.Unlock()

	if !ok {
		return nil
	}

	if err := voice.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	slog.Info("left voice channel", "guild", guildID)
	return nil
}

// --- AudioPlayer ---

// Play stops whatever the guild is streaming and starts streaming track.
func (a *VoiceAdapter) Play(
	ctx context.Context,
	guildID snowflake.ID,
	track *domain.Track,
	onEnd ports.TrackEndFunc,
) error {
	if err := a.Stop(ctx, guildID); err != nil {
		return err
	}

	a.mu.Lock()
	voice, ok := a.voices[guildID]
	a.mu.Unlock()
	if !ok {
		return ErrNoVoiceConnection
	}

	// The stream outlives the request that started it.
	streamCtx, cancel := context.WithCancel(context.Background())

	src, err := a.source.Open(streamCtx, track.Source)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to open audio source: %w", err)
	}

	p := &playback{
		track:  track,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	a.mu.Lock()
	a.playbacks[guildID] = p
	a.mu.Unlock()

	go a.run(guildID, voice, src, p, onEnd)

	slog.Debug("started playback", "guild", guildID, "track", track.Title)
	return nil
}

func (a *VoiceAdapter) run(
	guildID snowflake.ID,
	voice voiceSession,
	src PCMStream,
	p *playback,
	onEnd ports.TrackEndFunc,
) {
	defer close(p.done)

	if err := voice.Speaking(true); err != nil {
		slog.Debug("failed to set speaking state", "guild", guildID, "error", err)
	}

	err := a.streamer.Stream(src, voice.OpusSender(), p.stop, &p.paused)

	if err == nil && !p.stopped.Load() {
		err = src.Wait()
	} else {
		_ = src.Close()
	}
	p.cancel()

	if p.stopped.Load() {
		err = nil
	}

	if serr := voice.Speaking(false); serr != nil {
		slog.Debug("failed to clear speaking state", "guild", guildID, "error", serr)
	}

	a.mu.Lock()
	if a.playbacks[guildID] == p {
		delete(a.playbacks, guildID)
	}
	a.mu.Unlock()

	if onEnd != nil {
		onEnd(err)
	}
}

// Stop ends the guild's playback and waits for its stream to wind down.
// Stopping a guild with nothing streaming is a no-op.
func (a *VoiceAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	a.mu.Lock()
	p, ok := a.playbacks[guildID]
	a.mu.Unlock()

	if !ok {
		return nil
	}

	p.signalStop()

	timer := time.NewTimer(a.stopTimeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
		return fmt.Errorf("timed out stopping playback in guild %d", guildID)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause holds the guild's playback at its current position.
func (a *VoiceAdapter) Pause(_ context.Context, guildID snowflake.ID) error {
	p, err := a.current(guildID)
	if err != nil {
		return err
	}
	p.paused.Store(true)
	return nil
}

// Resume continues the guild's paused playback.
func (a *VoiceAdapter) Resume(_ context.Context, guildID snowflake.ID) error {
	p, err := a.current(guildID)
	if err != nil {
		return err
	}
	p.paused.Store(false)
	return nil
}

func (a *VoiceAdapter) current(guildID snowflake.ID) (*playback, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.playbacks[guildID]
	if !ok {
		return nil, ErrNoActivePlayback
	}
	return p, nil
}

// Close stops every stream and disconnects from every voice channel.
func (a *VoiceAdapter) Close(ctx context.Context) {
	a.mu.Lock()
	guildIDs := make([]snowflake.ID, 0, len(a.voices))
	for guildID := range a.voices {
		guildIDs = append(guildIDs, guildID)
	}
	a.mu.Unlock()

	for _, guildID := range guildIDs {
		if err := a.LeaveChannel(ctx, guildID); err != nil {
			slog.Warn("failed to leave voice channel", "guild", guildID, "error", err)
		}
	}
}
