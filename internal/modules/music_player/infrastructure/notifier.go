package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
)

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)

// Embed colors.
const (
	colorNowPlaying = 0x2ECC71
)

// messageSender is the subset of *discordgo.Session used by Notifier.
type messageSender interface {
	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// Notifier sends notifications to Discord channels.
type Notifier struct {
	sender messageSender
}

// NewNotifier creates a new Notifier.
func NewNotifier(sender messageSender) *Notifier {
	return &Notifier{sender: sender}
}

// SendNowPlaying sends a "Now Playing" embed to the channel and returns the message ID.
func (n *Notifier) SendNowPlaying(
	channelID snowflake.ID,
	info *ports.NowPlayingInfo,
) (snowflake.ID, error) {
	msg, err := n.sender.ChannelMessageSendEmbed(channelID.String(), nowPlayingEmbed(info))
	if err != nil {
		return 0, err
	}
	return snowflake.Parse(msg.ID)
}

// nowPlayingEmbed builds the "Now Playing" embed for a track.
func nowPlayingEmbed(info *ports.NowPlayingInfo) *discordgo.MessageEmbed {
	description := fmt.Sprintf("**%s**", info.Title)
	if info.URL != "" {
		description = fmt.Sprintf("[%s](%s)", info.Title, info.URL)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Now Playing:",
		Description: description,
		Color:       colorNowPlaying,
	}

	if info.ThumbnailURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: info.ThumbnailURL}
	}

	if info.RequesterName != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", info.RequesterName),
			IconURL: info.RequesterAvatarURL,
		}
	}

	return embed
}
