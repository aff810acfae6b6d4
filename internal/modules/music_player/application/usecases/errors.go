package usecases

import "errors"

// Domain errors for the music player module.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrNothingToSkip is returned when skip is requested while idle.
	ErrNothingToSkip = errors.New("not playing anything to skip")

	// ErrEmptyQuery is returned when a play request has no query.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrLoadFailed is returned when loading or starting tracks fails.
	ErrLoadFailed = errors.New("failed to load track")
)
