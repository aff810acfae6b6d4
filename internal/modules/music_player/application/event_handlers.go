package application

import (
	"context"
	"log/slog"

	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// TrackEndedHandler reacts to the end of a playback attempt.
// It is implemented by usecases.PlaybackService.
type TrackEndedHandler interface {
	HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) error
}

// PlaybackEventHandler feeds track completions back into the playback coordinator.
// Completions are published from the audio goroutine; this handler runs them on
// the bus goroutine so that the audio side never touches player state.
type PlaybackEventHandler struct {
	playback   TrackEndedHandler
	subscriber ports.EventSubscriber
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playback TrackEndedHandler,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playback:   playback,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() {
	h.subscriber.OnTrackEnded(h.handleTrackEnded)

	slog.Debug("playback event handlers registered")
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	if err := h.playback.HandleTrackEnded(ctx, event); err != nil {
		slog.Error(
			"failed to advance queue after track ended",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

// NotificationEventHandler posts "Now Playing" messages.
type NotificationEventHandler struct {
	subscriber ports.EventSubscriber
	notifier   ports.NotificationSender
	userInfo   ports.UserInfoProvider
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
	userInfo ports.UserInfoProvider,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		subscriber: subscriber,
		notifier:   notifier,
		userInfo:   userInfo,
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() {
	h.subscriber.OnPlaybackStarted(h.handlePlaybackStarted)

	slog.Debug("notification event handlers registered")
}

func (h *NotificationEventHandler) handlePlaybackStarted(
	_ context.Context,
	event domain.PlaybackStartedEvent,
) {
	if event.NotificationChannelID == 0 || event.Track == nil {
		return
	}

	track := event.Track
	info := &ports.NowPlayingInfo{
		Title:        track.Title,
		URL:          track.LinkURL(),
		ThumbnailURL: track.ThumbnailURL,
		RequesterID:  track.RequesterID,
	}

	if track.RequesterID != 0 {
		userInfo, err := h.userInfo.GetUserInfo(event.GuildID, track.RequesterID)
		if err != nil {
			slog.Warn(
				"failed to fetch requester info",
				"guild", event.GuildID,
				"user", track.RequesterID,
				"error", err,
			)
		} else {
			info.RequesterName = userInfo.DisplayName
			info.RequesterAvatarURL = userInfo.AvatarURL
		}
	}

	if _, err := h.notifier.SendNowPlaying(event.NotificationChannelID, info); err != nil {
		slog.Error(
			"failed to send now playing message",
			"guild", event.GuildID,
			"channel", event.NotificationChannelID,
			"error", err,
		)
	}
}
