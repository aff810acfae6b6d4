package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/usecases"
)

// botVoiceStateHandler is the use case invoked for the bot's own voice state changes.
type botVoiceStateHandler interface {
	HandleBotVoiceStateChange(ctx context.Context, input usecases.BotVoiceStateChangeInput) error
}

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	voiceChannel botVoiceStateHandler
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(voiceChannel botVoiceStateHandler) *EventHandlers {
	return &EventHandlers{
		voiceChannel: voiceChannel,
	}
}

// HandleVoiceStateUpdate handles VoiceStateUpdate events for the bot.
func (h *EventHandlers) HandleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	// The bot user is only known once the session is ready.
	if s == nil || s.State == nil || s.State.User == nil {
		return
	}
	h.handleVoiceStateUpdate(s.State.User.ID, event)
}

func (h *EventHandlers) handleVoiceStateUpdate(botID string, event *discordgo.VoiceStateUpdate) {
	// Only handle updates for the bot itself
	if event.VoiceState == nil || event.UserID != botID {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// Parse the channel ID - nil means disconnected
	var newChannelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		newChannelID = &id
	}

	err = h.voiceChannel.HandleBotVoiceStateChange(context.Background(), usecases.BotVoiceStateChangeInput{
		GuildID:      guildID,
		NewChannelID: newChannelID,
	})
	if err != nil {
		slog.Error("failed to handle bot voice state change", "guild", guildID, "error", err)
	}
}
