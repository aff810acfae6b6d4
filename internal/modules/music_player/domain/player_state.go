package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// PlaybackStatus is the explicit playback status of a guild's player.
type PlaybackStatus int

const (
	// StatusIdle means nothing is playing. The bot may or may not hold a voice session.
	StatusIdle PlaybackStatus = iota
	// StatusPlaying means a track is being streamed.
	StatusPlaying
	// StatusPaused means a track is loaded but its stream is paused.
	StatusPaused
)

// String returns the lowercase name of the status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}

// PlayerState represents the state of a music player for a guild.
type PlayerState struct {
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID // 0 when the bot holds no voice session
	notificationChannelID snowflake.ID // Text channel for "Now Playing" messages
	Queue                 Queue        // Pending tracks, the current one excluded
	status                PlaybackStatus
	current               *Track
	playbackID            uint64 // Incremented on every playback start
}

// NewPlayerState creates a new idle PlayerState for the given guild and channels.
func NewPlayerState(guildID, voiceChannelID, notificationChannelID snowflake.ID) *PlayerState {
	return &PlayerState{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		Queue:                 NewQueue(),
		status:                StatusIdle,
	}
}

// GetGuildID returns the guild ID.
func (p *PlayerState) GetGuildID() snowflake.ID {
	return p.guildID
}

// GetVoiceChannelID returns the current voice channel ID, or 0 if disconnected.
func (p *PlayerState) GetVoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (p *PlayerState) SetVoiceChannelID(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// IsConnected returns true if the bot holds a voice session in this guild.
func (p *PlayerState) IsConnected() bool {
	return p.voiceChannelID != 0
}

// GetNotificationChannelID returns the text channel used for notifications.
func (p *PlayerState) GetNotificationChannelID() snowflake.ID {
	return p.notificationChannelID
}

// SetNotificationChannelID updates the notification channel ID.
func (p *PlayerState) SetNotificationChannelID(channelID snowflake.ID) {
	p.notificationChannelID = channelID
}

// Status returns the playback status.
func (p *PlayerState) Status() PlaybackStatus {
	return p.status
}

// IsIdle returns true if nothing is playing or paused.
func (p *PlayerState) IsIdle() bool {
	return p.status == StatusIdle
}

// IsPlaying returns true if a track is streaming.
func (p *PlayerState) IsPlaying() bool {
	return p.status == StatusPlaying
}

// IsPaused returns true if playback is paused.
func (p *PlayerState) IsPaused() bool {
	return p.status == StatusPaused
}

// CurrentTrack returns the track being played or paused, or nil when idle.
func (p *PlayerState) CurrentTrack() *Track {
	return p.current
}

// PlaybackID returns the id of the latest playback attempt.
func (p *PlayerState) PlaybackID() uint64 {
	return p.playbackID
}

// BeginPlayback records an attempt to play track and returns its playback id.
// The status is not changed until the attempt is confirmed with MarkPlaying.
func (p *PlayerState) BeginPlayback(track *Track) uint64 {
	p.playbackID++
	p.current = track
	return p.playbackID
}

// MarkPlaying sets the status to playing.
func (p *PlayerState) MarkPlaying() {
	p.status = StatusPlaying
}

// SetPaused sets the status to paused.
func (p *PlayerState) SetPaused() {
	p.status = StatusPaused
}

// SetResumed sets the status back to playing.
func (p *PlayerState) SetResumed() {
	p.status = StatusPlaying
}

// StopPlayback forgets the current track and goes idle.
// The playback id is bumped so that completions of the stopped attempt are ignored.
func (p *PlayerState) StopPlayback() {
	p.status = StatusIdle
	p.current = nil
	p.playbackID++
}

// Reset returns the state to a disconnected, idle player with an empty queue.
func (p *PlayerState) Reset() {
	p.StopPlayback()
	p.Queue.Clear()
	p.voiceChannelID = 0
}
