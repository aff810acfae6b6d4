package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// PauseInput contains the input for the Pause use case.
type PauseInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// ResumeInput contains the input for the Resume use case.
type ResumeInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack *domain.Track
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
}

// PlaybackService drives the per-guild playback state machine.
// Every state transition happens inside PlayerStateRepository.Update, so
// commands and track completions for one guild are applied one at a time.
type PlaybackService struct {
	repo            domain.PlayerStateRepository
	audioPlayer     ports.AudioPlayer
	voiceConnection ports.VoiceConnection
	presence        ports.PresenceUpdater
	publisher       ports.EventPublisher
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	repo domain.PlayerStateRepository,
	audioPlayer ports.AudioPlayer,
	voiceConnection ports.VoiceConnection,
	presence ports.PresenceUpdater,
	publisher ports.EventPublisher,
) *PlaybackService {
	return &PlaybackService{
		repo:            repo,
		audioPlayer:     audioPlayer,
		voiceConnection: voiceConnection,
		presence:        presence,
		publisher:       publisher,
	}
}

// Pause pauses the current playback.
func (p *PlaybackService) Pause(ctx context.Context, input PauseInput) error {
	return p.repo.Update(ctx, input.GuildID, func(state *domain.PlayerState) error {
		if !state.IsConnected() {
			return ErrNotConnected
		}

		if input.NotificationChannelID != 0 {
			state.SetNotificationChannelID(input.NotificationChannelID)
		}

		if !state.IsPlaying() {
			return ErrNotPlaying
		}

		if err := p.audioPlayer.Pause(ctx, input.GuildID); err != nil {
			if errors.Is(err, ports.ErrNoActivePlayback) {
				return ErrNotPlaying
			}
			return err
		}

		state.SetPaused()

		return nil
	})
}

// Resume resumes the paused playback.
func (p *PlaybackService) Resume(ctx context.Context, input ResumeInput) error {
	return p.repo.Update(ctx, input.GuildID, func(state *domain.PlayerState) error {
		if !state.IsConnected() {
			return ErrNotConnected
		}

		if input.NotificationChannelID != 0 {
			state.SetNotificationChannelID(input.NotificationChannelID)
		}

		if !state.IsPaused() {
			return ErrNotPaused
		}

		if err := p.audioPlayer.Resume(ctx, input.GuildID); err != nil {
			if errors.Is(err, ports.ErrNoActivePlayback) {
				return ErrNotPaused
			}
			return err
		}

		state.SetResumed()

		return nil
	})
}

// Skip stops the current track. The completion of the stopped track advances
// the queue exactly once through HandleTrackEnded.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	var output *SkipOutput

	err := p.repo.Update(ctx, input.GuildID, func(state *domain.PlayerState) error {
		if input.NotificationChannelID != 0 {
			state.SetNotificationChannelID(input.NotificationChannelID)
		}

		if state.IsIdle() {
			return ErrNothingToSkip
		}

		skipped := state.CurrentTrack()

		if err := p.audioPlayer.Stop(ctx, input.GuildID); err != nil {
			return err
		}

		output = &SkipOutput{SkippedTrack: skipped}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// Stop clears the queue, stops playback and leaves the voice channel.
// The queue is cleared even when the bot is not connected.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) error {
	return p.repo.Update(ctx, input.GuildID, func(state *domain.PlayerState) error {
		state.Queue.Clear()

		if !state.IsConnected() {
			return ErrNotConnected
		}

		if !state.IsIdle() {
			if err := p.audioPlayer.Stop(ctx, input.GuildID); err != nil {
				slog.Warn("failed to stop audio playback", "guild", input.GuildID, "error", err)
			}
		}

		p.disconnect(ctx, state)

		return nil
	})
}

// HandleTrackEnded advances the queue after a playback attempt ends.
// Completions that belong to an earlier attempt, or that arrive after the
// player went idle, are ignored.
func (p *PlaybackService) HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) error {
	return p.repo.Update(ctx, event.GuildID, func(state *domain.PlayerState) error {
		if event.Failed() {
			slog.Error(
				"failed to play track",
				"guild", event.GuildID,
				"playback", event.PlaybackID,
				"error", event.Err,
			)
		}

		if state.IsIdle() || state.PlaybackID() != event.PlaybackID {
			slog.Debug(
				"ignoring stale track end",
				"guild", event.GuildID,
				"playback", event.PlaybackID,
				"current", state.PlaybackID(),
			)
			return nil
		}

		p.advance(ctx, state)

		return nil
	})
}

// advance starts the next playable track in the queue.
// Tracks without a stream source, and tracks that fail to start, are logged and skipped. When the queue is drained
// the bot leaves voice and the player goes idle.
// Must be called inside PlayerStateRepository.Update.
func (p *PlaybackService) advance(ctx context.Context, state *domain.PlayerState) *domain.Track {
	guildID := state.GetGuildID()

	for {
		track := state.Queue.PopFront()
		if track == nil {
			slog.Info("queue drained, leaving voice channel", "guild", guildID)
			p.disconnect(ctx, state)
			return nil
		}

		if !track.HasSource() {
			slog.Warn("skipping track without a stream source", "guild", guildID, "track", track.Title)
			continue
		}

		playbackID := state.BeginPlayback(track)

		err := p.audioPlayer.Play(ctx, guildID, track, p.trackEndCallback(guildID, playbackID))
		if err != nil {
			slog.Error(
				"failed to start track",
				"guild", guildID,
				"track", track.Title,
				"error", err,
			)
			continue
		}

		state.MarkPlaying()
		p.presence.SetListening(track.Title, track.LinkURL())
		p.publisher.PublishPlaybackStarted(domain.PlaybackStartedEvent{
			GuildID:               guildID,
			Track:                 track,
			NotificationChannelID: state.GetNotificationChannelID(),
		})

		slog.Info(
			"started track",
			"guild", guildID,
			"track", track.Title,
			"playback", playbackID,
			"pending", state.Queue.Len(),
		)

		return track
	}
}

// disconnect leaves the voice channel and resets the player.
func (p *PlaybackService) disconnect(ctx context.Context, state *domain.PlayerState) {
	guildID := state.GetGuildID()

	if state.IsConnected() {
		if err := p.voiceConnection.LeaveChannel(ctx, guildID); err != nil {
			slog.Warn("failed to leave voice channel", "guild", guildID, "error", err)
		}
	}

	state.Reset()
	p.presence.Clear()
	p.publisher.PublishPlaybackStopped(domain.PlaybackStoppedEvent{GuildID: guildID})
}

// trackEndCallback returns the completion callback for a playback attempt.
// It only publishes an event; the coordinator reacts on the bus goroutine.
func (p *PlaybackService) trackEndCallback(guildID snowflake.ID, playbackID uint64) ports.TrackEndFunc {
	return func(err error) {
		p.publisher.PublishTrackEnded(domain.TrackEndedEvent{
			GuildID:    guildID,
			PlaybackID: playbackID,
			Err:        err,
		})
	}
}
