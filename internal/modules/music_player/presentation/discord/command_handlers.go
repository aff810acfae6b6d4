package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/bot"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess      = 0x08c404
	colorError        = 0xE74C3C
	colorQueue        = 0x2ECC71
	colorAddedToQueue = 0xE67E22
)

const genericErrorText = "An error occurred while processing your command."

// userErrorMessages maps use case errors to the text shown to the user.
// Errors not listed here are unexpected and reported generically.
var userErrorMessages = []struct {
	err     error
	message string
}{
	{usecases.ErrNotConnected, "I'm not in a voice channel."},
	{usecases.ErrUserNotInVoice, "You must be in a voice channel."},
	{usecases.ErrNotPlaying, "Nothing is currently playing."},
	{usecases.ErrNotPaused, "I’m not paused right now."},
	{usecases.ErrNothingToSkip, "Not playing anything to skip."},
	{usecases.ErrNoResults, "No results found."},
	{usecases.ErrEmptyQuery, "Please provide a song name or URL."},
	{usecases.ErrLoadFailed, "Couldn't load that track. Please try again."},
}

func userErrorMessage(err error) (string, bool) {
	for _, m := range userErrorMessages {
		if errors.Is(err, m.err) {
			return m.message, true
		}
	}
	return "", false
}

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	queue        *usecases.QueueService
	trackLoader  *usecases.TrackLoaderService
	queueViews   *QueueViews
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	trackLoader *usecases.TrackLoaderService,
	queueViews *QueueViews,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		queue:        queue,
		trackLoader:  trackLoader,
		queueViews:   queueViews,
	}
}

// HandlePlay handles the /play command.
// Resolution can take a while, so the response is deferred and completed with a followup.
func (h *CommandHandlers) HandlePlay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	userID, err := snowflake.Parse(interactionUserID(i))
	if err != nil {
		return respondError(r, "Invalid user")
	}

	notificationChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid notification channel")
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	if err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	// 1. Join the requester's voice channel (or move there)
	join := func() error {
		_, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
			GuildID:               guildID,
			UserID:                userID,
			NotificationChannelID: notificationChannelID,
		})
		return err
	}
	if err := join(); err != nil {
		return followupFailure(r, "join voice channel", guildID, err)
	}

	// 2. Resolve the query (may be a single track or a playlist)
	resolved, err := h.trackLoader.Resolve(ctx, usecases.ResolveInput{
		Query:       query,
		RequesterID: userID,
	})
	if err != nil {
		return followupFailure(r, "resolve query", guildID, err)
	}

	// 3. Enqueue, starting playback if idle
	addInput := usecases.QueueAddInput{
		GuildID: guildID,
		Tracks:  resolved.Tracks,
	}
	added, err := h.queue.Add(ctx, addInput)
	if errors.Is(err, usecases.ErrNotConnected) {
		// The queue drained and the bot left while the query was resolving.
		if err := join(); err != nil {
			return followupFailure(r, "rejoin voice channel", guildID, err)
		}
		added, err = h.queue.Add(ctx, addInput)
	}
	if err != nil {
		return followupFailure(r, "add to queue", guildID, err)
	}

	if added.Started != nil {
		return r.Followup(&discordgo.WebhookParams{
			Content: fmt.Sprintf("Playing: **%s**", added.Started.Title),
			Flags:   discordgo.MessageFlagsEphemeral,
		})
	}

	return r.Followup(&discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{addedToQueueEmbed(resolved.Tracks, i.Member)},
	})
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	notificationChannelID, _ := snowflake.Parse(i.ChannelID)

	if err := h.playback.Pause(ctx, usecases.PauseInput{
		GuildID:               guildID,
		NotificationChannelID: notificationChannelID,
	}); err != nil {
		return respondFailure(r, "pause", err)
	}

	return respondSuccess(r, "Playback paused!")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	notificationChannelID, _ := snowflake.Parse(i.ChannelID)

	if err := h.playback.Resume(ctx, usecases.ResumeInput{
		GuildID:               guildID,
		NotificationChannelID: notificationChannelID,
	}); err != nil {
		return respondFailure(r, "resume", err)
	}

	return respondSuccess(r, "Playback resumed!")
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	notificationChannelID, _ := snowflake.Parse(i.ChannelID)

	if _, err := h.playback.Skip(ctx, usecases.SkipInput{
		GuildID:               guildID,
		NotificationChannelID: notificationChannelID,
	}); err != nil {
		return respondFailure(r, "skip", err)
	}

	return respondSuccess(r, "Skipped the current song.")
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	err = h.playback.Stop(ctx, usecases.StopInput{GuildID: guildID})
	if errors.Is(err, usecases.ErrNotConnected) {
		return respondError(r, "I'm not connected to any voice channel.")
	}
	if err != nil {
		return respondFailure(r, "stop", err)
	}

	return respondSuccess(r, "Stopped playback and disconnected!")
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	userID, err := snowflake.Parse(interactionUserID(i))
	if err != nil {
		return respondError(r, "Invalid user")
	}

	output, err := h.queue.List(ctx, usecases.QueueListInput{GuildID: guildID})
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}

	if len(output.Tracks) == 0 {
		return respondEphemeral(r, "The queue is currently empty.")
	}

	viewID, page := h.queueViews.Open(userID, output.Tracks, r)

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{queueEmbed(page)},
			Components: queueComponents(viewID, page, false),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
}

// interactionUserID returns the invoking user's ID for guild and DM interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func addedToQueueEmbed(tracks []*domain.Track, member *discordgo.Member) *discordgo.MessageEmbed {
	first := tracks[0]

	var description string
	switch {
	case len(tracks) > 1:
		description = fmt.Sprintf("Added a playlist with **%d** tracks.", len(tracks))
	case first.LinkURL() != "":
		description = fmt.Sprintf("[%s](%s)", first.Title, first.LinkURL())
	default:
		description = fmt.Sprintf("**%s**", first.Title)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Added to Queue",
		Description: description,
		Color:       colorAddedToQueue,
	}
	if first.ThumbnailURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: first.ThumbnailURL}
	}
	if member != nil && member.User != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    "Requested by " + member.DisplayName(),
			IconURL: member.AvatarURL(""),
		}
	}
	return embed
}

// respondFailure reports a known use case error to the user, or hands an
// unexpected one back to the bot, which logs it and replies generically.
func respondFailure(r bot.Responder, action string, err error) error {
	if message, ok := userErrorMessage(err); ok {
		return respondError(r, message)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// followupFailure is respondFailure for deferred interactions.
func followupFailure(r bot.Responder, action string, guildID snowflake.ID, err error) error {
	message, ok := userErrorMessage(err)
	if !ok || errors.Is(err, usecases.ErrLoadFailed) {
		slog.Error("failed to handle play", "action", action, "guild", guildID, "error", err)
	}
	if !ok {
		message = genericErrorText
	}
	return r.Followup(&discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{errorEmbed(message)},
	})
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{errorEmbed(message)},
		},
	})
}

func respondSuccess(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: message,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func respondEphemeral(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
