package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// QueueAddInput contains the input for the Add use case.
type QueueAddInput struct {
	GuildID snowflake.ID
	Tracks  []*domain.Track
}

// QueueAddOutput contains the result of the Add use case.
type QueueAddOutput struct {
	Started  *domain.Track // Non-nil if the player was idle and started playing
	Count    int           // Number of tracks added
	Position int           // 1-based queue position of the first added track
}

// QueueListInput contains the input for the List use case.
type QueueListInput struct {
	GuildID snowflake.ID
}

// QueueListOutput contains the result of the List use case.
type QueueListOutput struct {
	Current *domain.Track   // nil when idle
	Tracks  []*domain.Track // Pending tracks in play order
}

// QueueService handles queue operations.
type QueueService struct {
	repo     domain.PlayerStateRepository
	playback *PlaybackService
}

// NewQueueService creates a new QueueService.
func NewQueueService(repo domain.PlayerStateRepository, playback *PlaybackService) *QueueService {
	return &QueueService{
		repo:     repo,
		playback: playback,
	}
}

// Add appends tracks to the guild's queue. If the player is idle the queue is
// advanced immediately and the started track is returned.
func (q *QueueService) Add(ctx context.Context, input QueueAddInput) (*QueueAddOutput, error) {
	if len(input.Tracks) == 0 {
		return nil, ErrNoResults
	}

	var output *QueueAddOutput

	err := q.repo.Update(ctx, input.GuildID, func(state *domain.PlayerState) error {
		if !state.IsConnected() {
			return ErrNotConnected
		}

		position := state.Queue.Len() + 1
		state.Queue.Append(input.Tracks...)

		output = &QueueAddOutput{
			Count:    len(input.Tracks),
			Position: position,
		}

		if !state.IsIdle() {
			return nil
		}

		output.Started = q.playback.advance(ctx, state)
		if output.Started == nil {
			return ErrLoadFailed
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// List returns a snapshot of the current track and the pending queue.
func (q *QueueService) List(ctx context.Context, input QueueListInput) (*QueueListOutput, error) {
	var output *QueueListOutput

	err := q.repo.Update(ctx, input.GuildID, func(state *domain.PlayerState) error {
		output = &QueueListOutput{
			Current: state.CurrentTrack(),
			Tracks:  state.Queue.List(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}
