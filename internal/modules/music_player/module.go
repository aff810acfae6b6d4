package music_player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/jukebox/internal/bot"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebox/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/jukebox/internal/modules/music_player/presentation/discord"
)

// shutdownTimeout bounds how long Shutdown waits for active playbacks to stop.
const shutdownTimeout = 10 * time.Second

// ErrNoSession is returned by Init when no Discord session is provided.
var ErrNoSession = errors.New("music_player requires a discord session")

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*MusicPlayerModule)(nil)
	_ bot.ComponentModule    = (*MusicPlayerModule)(nil)
)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	eventHandlers   *discord.EventHandlers
	queueViews      *discord.QueueViews

	repo         *infrastructure.MemoryRepository
	voiceAdapter *infrastructure.VoiceAdapter
	presence     *infrastructure.Presence

	// Event-driven components
	eventBus            *infrastructure.ChannelEventBus
	playbackHandler     *application.PlaybackEventHandler
	notificationHandler *application.NotificationEventHandler
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":   m.commandHandlers.HandlePlay,
		"pause":  m.commandHandlers.HandlePause,
		"resume": m.commandHandlers.HandleResume,
		"skip":   m.commandHandlers.HandleSkip,
		"stop":   m.commandHandlers.HandleStop,
		"queue":  m.commandHandlers.HandleQueue,
	}
}

// ComponentHandlers returns the handlers for the queue view's buttons.
func (m *MusicPlayerModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		discord.QueueComponentPrefix: m.queueViews.HandleComponent,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			if m.eventHandlers != nil {
				m.eventHandlers.HandleVoiceStateUpdate(s, event)
			}
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return ErrNoSession
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	// Create infrastructure
	repo := infrastructure.NewMemoryRepository()
	m.repo = repo
	m.voiceAdapter = infrastructure.NewVoiceAdapter(
		deps.Session,
		infrastructure.NewFFmpegSource(m.config.FFmpegPath),
		infrastructure.NewOpusStreamer(m.config.AudioBitrate),
	)
	m.presence = infrastructure.NewPresence(deps.Session, m.config.PresenceInterval)
	resolver := infrastructure.NewYTDLPResolver(m.config.YTDLPPath)
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	userInfo := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session)

	// Create services
	voiceChannel := usecases.NewVoiceChannelService(
		repo,
		m.voiceAdapter,
		voiceState,
		m.voiceAdapter,
		m.presence,
		m.eventBus,
	)
	playback := usecases.NewPlaybackService(
		repo,
		m.voiceAdapter,
		m.voiceAdapter,
		m.presence,
		m.eventBus,
	)
	queue := usecases.NewQueueService(repo, playback)
	trackLoader := usecases.NewTrackLoaderService(resolver, m.config.ResolveTimeout)

	// Register application event handlers
	m.playbackHandler = application.NewPlaybackEventHandler(playback, m.eventBus)
	m.notificationHandler = application.NewNotificationEventHandler(m.eventBus, notifier, userInfo)
	m.playbackHandler.Start()
	m.notificationHandler.Start()

	// Create presentation handlers
	m.queueViews = discord.NewQueueViews(m.config.QueuePageSize, m.config.QueueViewTimeout)
	m.commandHandlers = discord.NewCommandHandlers(
		voiceChannel,
		playback,
		queue,
		trackLoader,
		m.queueViews,
	)
	m.eventHandlers = discord.NewEventHandlers(voiceChannel)

	slog.Info("music_player module initialized",
		"ffmpeg", m.config.FFmpegPath,
		"ytdlp", m.config.YTDLPPath,
		"bitrate", m.config.AudioBitrate,
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.repo != nil {
		slog.Info("shutting down music_player", "active_sessions", m.repo.Count())
	}

	// Stop dispatching first so no track-end event starts a new playback.
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	if m.voiceAdapter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		m.voiceAdapter.Close(ctx)
		cancel()
	}

	if m.presence != nil {
		m.presence.Close()
	}

	if m.queueViews != nil {
		m.queueViews.Close()
	}

	return nil
}
