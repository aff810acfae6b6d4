package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackInfo contains information about a resolved track.
type TrackInfo struct {
	Identifier   string // Extractor id (e.g., YouTube video ID)
	StreamURL    string // Direct media URL, may be empty
	Title        string
	WebpageURL   string
	ThumbnailURL string
}

// NowPlayingInfo contains information for the "Now Playing" notification.
type NowPlayingInfo struct {
	Title              string
	URL                string
	ThumbnailURL       string
	RequesterID        snowflake.ID
	RequesterName      string
	RequesterAvatarURL string
}
