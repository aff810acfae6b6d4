package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
	Moved          bool // true if an existing session switched channels
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceChannelService handles voice channel operations.
type VoiceChannelService struct {
	repo            domain.PlayerStateRepository
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	audioPlayer     ports.AudioPlayer
	presence        ports.PresenceUpdater
	publisher       ports.EventPublisher
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	repo domain.PlayerStateRepository,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	audioPlayer ports.AudioPlayer,
	presence ports.PresenceUpdater,
	publisher ports.EventPublisher,
) *VoiceChannelService {
	return &VoiceChannelService{
		repo:            repo,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		audioPlayer:     audioPlayer,
		presence:        presence,
		publisher:       publisher,
	}
}

// Join makes sure the bot is in the caller's voice channel.
// It connects when there is no session and moves an existing session to the
// caller's channel otherwise.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	voiceChannelID, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	if voiceChannelID == 0 {
		return nil, ErrUserNotInVoice
	}

	output := &JoinOutput{VoiceChannelID: voiceChannelID}

	err = v.repo.Update(ctx, input.GuildID, func(state *domain.PlayerState) error {
		if input.NotificationChannelID != 0 {
			state.SetNotificationChannelID(input.NotificationChannelID)
		}

		switch current := state.GetVoiceChannelID(); {
		case current == voiceChannelID:
			return nil
		case current == 0:
			if err := v.voiceConnection.JoinChannel(ctx, input.GuildID, voiceChannelID); err != nil {
				return err
			}
		default:
			if err := v.voiceConnection.MoveChannel(ctx, input.GuildID, voiceChannelID); err != nil {
				return err
			}
			output.Moved = true
		}

		state.SetVoiceChannelID(voiceChannelID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// HandleBotVoiceStateChange keeps the player state in sync when the bot is
// moved or disconnected by someone else.
func (v *VoiceChannelService) HandleBotVoiceStateChange(
	ctx context.Context,
	input BotVoiceStateChangeInput,
) error {
	return v.repo.Update(ctx, input.GuildID, func(state *domain.PlayerState) error {
		if input.NewChannelID != nil {
			if state.IsConnected() {
				state.SetVoiceChannelID(*input.NewChannelID)
			}
			return nil
		}

		if !state.IsConnected() {
			return nil
		}

		slog.Info("bot was disconnected from voice, resetting player", "guild", input.GuildID)

		if !state.IsIdle() {
			if err := v.audioPlayer.Stop(ctx, input.GuildID); err != nil {
				slog.Warn("failed to stop audio playback", "guild", input.GuildID, "error", err)
			}
		}

		// Drops the stale voice connection so the next join starts fresh.
		if err := v.voiceConnection.LeaveChannel(ctx, input.GuildID); err != nil {
			slog.Debug("failed to release voice connection", "guild", input.GuildID, "error", err)
		}

		state.Reset()
		v.presence.Clear()
		v.publisher.PublishPlaybackStopped(domain.PlaybackStoppedEvent{GuildID: input.GuildID})

		return nil
	})
}
