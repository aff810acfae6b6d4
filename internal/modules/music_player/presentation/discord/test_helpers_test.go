package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
	"github.com/sglre6355/jukebox/internal/modules/music_player/infrastructure"
)

const (
	testGuildID   = "1"
	testChannelID = "200"
	testUserID    = "42"
	testVoiceID   = snowflake.ID(100)
)

type fakeAudioPlayer struct {
	mu       sync.Mutex
	plays    []*domain.Track
	stops    int
	pauses   int
	resumes  int
	pauseErr error
}

func (f *fakeAudioPlayer) Play(_ context.Context, _ snowflake.ID, track *domain.Track, _ ports.TrackEndFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, track)
	return nil
}

func (f *fakeAudioPlayer) Stop(context.Context, snowflake.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeAudioPlayer) Pause(context.Context, snowflake.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	return f.pauseErr
}

func (f *fakeAudioPlayer) Resume(context.Context, snowflake.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
	return nil
}

func (f *fakeAudioPlayer) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.plays)
}

type fakeVoiceConnection struct {
	joins  int
	leaves int
}

func (f *fakeVoiceConnection) JoinChannel(context.Context, snowflake.ID, snowflake.ID) error {
	f.joins++
	return nil
}

func (f *fakeVoiceConnection) MoveChannel(context.Context, snowflake.ID, snowflake.ID) error {
	return nil
}

func (f *fakeVoiceConnection) LeaveChannel(context.Context, snowflake.ID) error {
	f.leaves++
	return nil
}

type fakeVoiceState struct {
	channelID snowflake.ID
}

func (f *fakeVoiceState) GetUserVoiceChannel(_, _ snowflake.ID) (snowflake.ID, error) {
	return f.channelID, nil
}

type fakeResolver struct {
	infos  []*ports.TrackInfo
	err    error
	onLoad func()
}

func (f *fakeResolver) LoadTracks(context.Context, string, bool) ([]*ports.TrackInfo, error) {
	if f.onLoad != nil {
		f.onLoad()
	}
	return f.infos, f.err
}

type nopPresence struct{}

func (nopPresence) SetListening(string, string) {}
func (nopPresence) Clear()                      {}

type nopPublisher struct{}

func (nopPublisher) PublishTrackEnded(domain.TrackEndedEvent)           {}
func (nopPublisher) PublishPlaybackStarted(domain.PlaybackStartedEvent) {}
func (nopPublisher) PublishPlaybackStopped(domain.PlaybackStoppedEvent) {}

// fakeTimers records scheduled expiries so tests can fire them by hand.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (ft *fakeTimers) afterFunc(d time.Duration, f func()) func() bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	timer := &fakeTimer{d: d, f: f}
	ft.timers = append(ft.timers, timer)
	return func() bool {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		wasActive := !timer.stopped
		timer.stopped = true
		return wasActive
	}
}

// fire runs the i-th scheduled callback, even if it was stopped.
func (ft *fakeTimers) fire(i int) {
	ft.mu.Lock()
	timer := ft.timers[i]
	ft.mu.Unlock()
	timer.f()
}

func (ft *fakeTimers) count() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.timers)
}

func newTestQueueViews(pageSize int) (*QueueViews, *fakeTimers) {
	timers := &fakeTimers{}
	views := NewQueueViews(pageSize, time.Minute)
	views.afterFunc = timers.afterFunc

	n := 0
	views.newID = func() string {
		n++
		return fmt.Sprintf("view-%d", n)
	}
	return views, timers
}

type handlerEnv struct {
	repo       *infrastructure.MemoryRepository
	audio      *fakeAudioPlayer
	voice      *fakeVoiceConnection
	voiceState *fakeVoiceState
	resolver   *fakeResolver
	views      *QueueViews
	timers     *fakeTimers
	handlers   *CommandHandlers
}

func newHandlerEnv() *handlerEnv {
	env := &handlerEnv{
		repo:       infrastructure.NewMemoryRepository(),
		audio:      &fakeAudioPlayer{},
		voice:      &fakeVoiceConnection{},
		voiceState: &fakeVoiceState{channelID: testVoiceID},
		resolver:   &fakeResolver{},
	}
	env.views, env.timers = newTestQueueViews(domain.DefaultPageSize)

	playback := usecases.NewPlaybackService(env.repo, env.audio, env.voice, nopPresence{}, nopPublisher{})
	env.handlers = NewCommandHandlers(
		usecases.NewVoiceChannelService(env.repo, env.voice, env.voiceState, env.audio, nopPresence{}, nopPublisher{}),
		playback,
		usecases.NewQueueService(env.repo, playback),
		usecases.NewTrackLoaderService(env.resolver, time.Second),
		env.views,
	)
	return env
}

// state returns a copy of the facts tests assert on.
func (e *handlerEnv) state() (status domain.PlaybackStatus, queued int, connected bool) {
	_ = e.repo.Update(context.Background(), snowflake.ID(1), func(s *domain.PlayerState) error {
		status, queued, connected = s.Status(), s.Queue.Len(), s.IsConnected()
		return nil
	})
	return status, queued, connected
}

func trackInfos(titles ...string) []*ports.TrackInfo {
	infos := make([]*ports.TrackInfo, len(titles))
	for i, title := range titles {
		infos[i] = &ports.TrackInfo{
			Identifier: title,
			StreamURL:  "https://stream.example/" + title,
			Title:      title,
			WebpageURL: "https://www.youtube.com/watch?v=" + title,
		}
	}
	return infos
}

func testTracks(n int) []*domain.Track {
	tracks := make([]*domain.Track, n)
	for i := range tracks {
		tracks[i] = domain.NewTrack(
			fmt.Sprint(i),
			"https://stream.example/"+fmt.Sprint(i),
			fmt.Sprintf("Track %d", i+1),
			"",
			"",
			snowflake.ID(42),
		)
	}
	return tracks
}

func commandInteraction(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   testGuildID,
			ChannelID: testChannelID,
			Member: &discordgo.Member{
				User: &discordgo.User{ID: testUserID, Username: "alice"},
			},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func playInteraction(query string) *discordgo.InteractionCreate {
	return commandInteraction("play", &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "query",
		Type:  discordgo.ApplicationCommandOptionString,
		Value: query,
	})
}

func componentInteraction(customID, userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionMessageComponent,
			GuildID: testGuildID,
			Member: &discordgo.Member{
				User: &discordgo.User{ID: userID},
			},
			Data: discordgo.MessageComponentInteractionData{
				CustomID:      customID,
				ComponentType: discordgo.ButtonComponent,
			},
		},
	}
}
