package ports

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// ErrNoActivePlayback is returned by Pause and Resume when the guild has
// nothing streaming, such as after a track ended but before the queue advanced.
var ErrNoActivePlayback = errors.New("no active playback for guild")

// TrackEndFunc is invoked exactly once when a playback attempt ends.
// err is nil when the stream finished or was stopped, and non-nil when it failed.
// It runs on the audio goroutine and must not block.
type TrackEndFunc func(err error)

// AudioPlayer defines the interface for audio playback operations.
type AudioPlayer interface {
	// Play starts playback of the given track on the guild's voice connection.
	// Any playback already running in the guild is stopped first.
	// onEnd is not called when Play itself returns an error.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track, onEnd TrackEndFunc) error

	// Stop stops the current playback. Its onEnd callback still fires.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current playback.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes the paused playback.
	Resume(ctx context.Context, guildID snowflake.ID) error
}
