package ports

import (
	"context"
)

// TrackResolver defines the interface for loading/searching tracks.
type TrackResolver interface {
	// LoadTracks resolves the query into zero or more tracks, in order.
	// An empty result with a nil error means nothing matched.
	LoadTracks(ctx context.Context, query string, playlist bool) ([]*TrackInfo, error)
}
