package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// DefaultTrackTitle is used when the resolver returns a track without a title.
const DefaultTrackTitle = "Untitled"

// Track represents a playable audio track.
// A Track is never mutated after it is created; it is shared by pointer
// between the queue, the player and notifications.
type Track struct {
	Identifier   string // Extractor-specific id (e.g. a YouTube video id)
	Source       string // Direct stream locator handed to the encoder, may be empty
	Title        string
	WebpageURL   string // Human-facing page for the track, may be empty
	ThumbnailURL string
	RequesterID  snowflake.ID // Discord user who added the track
	EnqueuedAt   time.Time
}

// NewTrack creates a new Track with the given parameters.
func NewTrack(
	identifier string,
	source string,
	title string,
	webpageURL string,
	thumbnailURL string,
	requesterID snowflake.ID,
) *Track {
	if title == "" {
		title = DefaultTrackTitle
	}

	return &Track{
		Identifier:   identifier,
		Source:       source,
		Title:        title,
		WebpageURL:   webpageURL,
		ThumbnailURL: thumbnailURL,
		RequesterID:  requesterID,
		EnqueuedAt:   time.Now().UTC(),
	}
}

// HasSource returns true if the track carries a stream locator.
func (t *Track) HasSource() bool {
	return t.Source != ""
}

// LinkURL returns the best URL to show to users for this track.
// It prefers the webpage URL and falls back to the stream locator.
func (t *Track) LinkURL() string {
	if t.WebpageURL != "" {
		return t.WebpageURL
	}
	return t.Source
}
