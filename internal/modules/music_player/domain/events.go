package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndedEvent is published by the audio goroutine when a playback attempt ends,
// whether it finished, was stopped, or failed.
type TrackEndedEvent struct {
	GuildID    snowflake.ID
	PlaybackID uint64
	Err        error // non-nil if the stream failed
}

// Failed returns true if the track ended because of an error.
func (e TrackEndedEvent) Failed() bool {
	return e.Err != nil
}

// PlaybackStartedEvent is published when a track starts playing.
type PlaybackStartedEvent struct {
	GuildID               snowflake.ID
	Track                 *Track
	NotificationChannelID snowflake.ID
}

// PlaybackStoppedEvent is published when the player goes idle and leaves voice,
// either because the queue drained or because playback was stopped.
type PlaybackStoppedEvent struct {
	GuildID snowflake.ID
}
