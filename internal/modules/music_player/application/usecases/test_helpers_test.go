package usecases

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		Identifier:  id,
		Source:      "https://stream.example/" + id,
		Title:       "Track " + id,
		WebpageURL:  "https://www.youtube.com/watch?v=" + id,
		RequesterID: snowflake.ID(123),
	}
}

type mockRepository struct {
	mu     sync.Mutex
	states map[snowflake.ID]*domain.PlayerState
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		states: make(map[snowflake.ID]*domain.PlayerState),
	}
}

func (m *mockRepository) Update(
	_ context.Context,
	guildID snowflake.ID,
	fn func(*domain.PlayerState) error,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[guildID]
	if !ok {
		state = domain.NewPlayerState(guildID, 0, 0)
		m.states[guildID] = state
	}
	return fn(state)
}

// createConnectedState creates a PlayerState with the given IDs and saves it to the mock repository.
// Returns the state for further modification (e.g., adding tracks).
func (m *mockRepository) createConnectedState(
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) *domain.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := domain.NewPlayerState(guildID, voiceChannelID, notificationChannelID)
	m.states[guildID] = state
	return state
}

// get returns the raw state for assertions.
func (m *mockRepository) get(guildID snowflake.ID) *domain.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[guildID]
}

type playCall struct {
	guildID snowflake.ID
	track   *domain.Track
	onEnd   ports.TrackEndFunc
}

type mockAudioPlayer struct {
	mu        sync.Mutex
	plays     []playCall
	stops     int
	pauses    int
	resumes   int
	playErr   error
	playErrs  map[string]error // per track identifier
	stopErr   error
	pauseErr  error
	resumeErr error
}

func (m *mockAudioPlayer) Play(
	_ context.Context,
	guildID snowflake.ID,
	track *domain.Track,
	onEnd ports.TrackEndFunc,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.playErrs[track.Identifier]; err != nil {
		return err
	}
	if m.playErr != nil {
		return m.playErr
	}
	m.plays = append(m.plays, playCall{guildID: guildID, track: track, onEnd: onEnd})
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return m.stopErr
}

func (m *mockAudioPlayer) Pause(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses++
	return m.pauseErr
}

func (m *mockAudioPlayer) Resume(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes++
	return m.resumeErr
}

func (m *mockAudioPlayer) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plays)
}

func (m *mockAudioPlayer) lastPlay() playCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays[len(m.plays)-1]
}

type mockVoiceConnection struct {
	joins    []snowflake.ID
	moves    []snowflake.ID
	leaves   int
	joinErr  error
	moveErr  error
	leaveErr error
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joins = append(m.joins, channelID)
	return nil
}

func (m *mockVoiceConnection) MoveChannel(_ context.Context, _, channelID snowflake.ID) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	m.moves = append(m.moves, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	m.leaves++
	return m.leaveErr
}

type mockTrackResolver struct {
	loadErr      error
	loadResult   []*ports.TrackInfo
	block        chan struct{}
	lastQuery    string
	lastPlaylist bool
}

func (m *mockTrackResolver) LoadTracks(
	ctx context.Context,
	query string,
	playlist bool,
) ([]*ports.TrackInfo, error) {
	m.lastQuery = query
	m.lastPlaylist = playlist

	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadResult, nil
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockPresence struct {
	mu        sync.Mutex
	listening []string
	clears    int
}

func (m *mockPresence) SetListening(title, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listening = append(m.listening, title)
}

func (m *mockPresence) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
}

type mockEventPublisher struct {
	mu              sync.Mutex
	trackEnded      []domain.TrackEndedEvent
	playbackStarted []domain.PlaybackStartedEvent
	playbackStopped []domain.PlaybackStoppedEvent
}

func (m *mockEventPublisher) PublishTrackEnded(event domain.TrackEndedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackEnded = append(m.trackEnded, event)
}

func (m *mockEventPublisher) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playbackStarted = append(m.playbackStarted, event)
}

func (m *mockEventPublisher) PublishPlaybackStopped(event domain.PlaybackStoppedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playbackStopped = append(m.playbackStopped, event)
}

// popTrackEnded returns and removes the oldest TrackEndedEvent.
func (m *mockEventPublisher) popTrackEnded() (domain.TrackEndedEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.trackEnded) == 0 {
		return domain.TrackEndedEvent{}, false
	}
	event := m.trackEnded[0]
	m.trackEnded = m.trackEnded[1:]
	return event, true
}

// testEnv bundles the services and their doubles.
type testEnv struct {
	repo      *mockRepository
	audio     *mockAudioPlayer
	voice     *mockVoiceConnection
	presence  *mockPresence
	publisher *mockEventPublisher
	playback  *PlaybackService
	queue     *QueueService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:      newMockRepository(),
		audio:     &mockAudioPlayer{},
		voice:     &mockVoiceConnection{},
		presence:  &mockPresence{},
		publisher: &mockEventPublisher{},
	}
	env.playback = NewPlaybackService(env.repo, env.audio, env.voice, env.presence, env.publisher)
	env.queue = NewQueueService(env.repo, env.playback)
	return env
}

// finishCurrent simulates the audio goroutine finishing the latest playback
// and the bus delivering the resulting TrackEndedEvent.
func (e *testEnv) finishCurrent(ctx context.Context, err error) error {
	e.audio.lastPlay().onEnd(err)
	event, ok := e.publisher.popTrackEnded()
	if !ok {
		return nil
	}
	return e.playback.HandleTrackEnded(ctx, event)
}
