package infrastructure

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
)

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)

// voiceStateCache is the part of *discordgo.State the provider reads.
type voiceStateCache interface {
	VoiceState(guildID, userID string) (*discordgo.VoiceState, error)
}

// VoiceStateProvider answers which voice channel a member is in, from the gateway cache.
// The cache is fed by VoiceStateUpdate events, so it needs the GuildVoiceStates intent.
type VoiceStateProvider struct {
	cache voiceStateCache
}

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{cache: session.State}
}

// GetUserVoiceChannel returns the user's current voice channel, or 0 when they are not in one.
func (v *VoiceStateProvider) GetUserVoiceChannel(
	guildID, userID snowflake.ID,
) (snowflake.ID, error) {
	vs, err := v.cache.VoiceState(guildID.String(), userID.String())
	switch {
	case errors.Is(err, discordgo.ErrStateNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to read voice state: %w", err)
	case vs.ChannelID == "":
		return 0, nil
	}

	channelID, err := snowflake.Parse(vs.ChannelID)
	if err != nil {
		return 0, fmt.Errorf("invalid voice channel id %q: %w", vs.ChannelID, err)
	}
	return channelID, nil
}
