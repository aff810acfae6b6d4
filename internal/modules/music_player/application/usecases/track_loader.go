package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// DefaultResolveTimeout bounds how long a single query may take to resolve.
const DefaultResolveTimeout = 45 * time.Second

// ResolveInput contains the input for the Resolve use case.
type ResolveInput struct {
	Query       string
	RequesterID snowflake.ID
}

// ResolveOutput contains the result of the Resolve use case.
type ResolveOutput struct {
	Tracks     []*domain.Track
	IsPlaylist bool
}

// TrackLoaderService turns user queries into tracks.
type TrackLoaderService struct {
	trackResolver ports.TrackResolver
	timeout       time.Duration
}

// NewTrackLoaderService creates a new TrackLoaderService.
// A non-positive timeout falls back to DefaultResolveTimeout.
func NewTrackLoaderService(
	trackResolver ports.TrackResolver,
	timeout time.Duration,
) *TrackLoaderService {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}

	return &TrackLoaderService{
		trackResolver: trackResolver,
		timeout:       timeout,
	}
}

type resolveResult struct {
	infos []*ports.TrackInfo
	err   error
}

// Resolve runs the resolver off the caller's goroutine and waits for it,
// giving up when ctx is done or the timeout expires.
func (s *TrackLoaderService) Resolve(ctx context.Context, input ResolveInput) (*ResolveOutput, error) {
	query := domain.NewSearchQuery(input.Query)
	if !query.IsValid() {
		return nil, ErrEmptyQuery
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan resolveResult, 1)
	go func() {
		infos, err := s.trackResolver.LoadTracks(ctx, query.ExtractorQuery(), query.IsPlaylist)
		done <- resolveResult{infos: infos, err: err}
	}()

	var result resolveResult
	select {
	case result = <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, ctx.Err())
	}

	if result.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, result.err)
	}

	tracks := make([]*domain.Track, 0, len(result.infos))
	for _, info := range result.infos {
		if info == nil {
			continue
		}
		tracks = append(tracks, domain.NewTrack(
			info.Identifier,
			info.StreamURL,
			info.Title,
			info.WebpageURL,
			info.ThumbnailURL,
			input.RequesterID,
		))
	}

	if len(tracks) == 0 {
		return nil, ErrNoResults
	}

	return &ResolveOutput{
		Tracks:     tracks,
		IsPlaylist: query.IsPlaylist,
	}, nil
}
