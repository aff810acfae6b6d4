package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// NotificationSender defines the interface for sending notifications to Discord channels.
type NotificationSender interface {
	// SendNowPlaying sends a "Now Playing" embed to the channel and returns the message ID.
	SendNowPlaying(channelID snowflake.ID, info *NowPlayingInfo) (messageID snowflake.ID, err error)
}

// PresenceUpdater controls the bot's global "Listening to" status.
// Implementations must not block the caller.
type PresenceUpdater interface {
	SetListening(title, url string)
	Clear()
}
