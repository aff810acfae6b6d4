package infrastructure

import (
	"context"
	"fmt"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
)

// Ensure YTDLPResolver implements ports.TrackResolver.
var _ ports.TrackResolver = (*YTDLPResolver)(nil)

// ytdlpAudioFormat prefers a low-bitrate audio stream, matching what voice can carry.
const ytdlpAudioFormat = "bestaudio[abr<=96]/bestaudio"

// extractFunc runs an extraction and returns the top-level info objects.
type extractFunc func(ctx context.Context, query string, playlist bool) ([]*ytdlp.ExtractedInfo, error)

// YTDLPResolver resolves search terms and URLs into playable tracks using yt-dlp.
type YTDLPResolver struct {
	extract extractFunc
}

// NewYTDLPResolver creates a resolver that runs the yt-dlp binary at executable.
// An empty executable uses "yt-dlp" from PATH.
func NewYTDLPResolver(executable string) *YTDLPResolver {
	return &YTDLPResolver{
		extract: func(ctx context.Context, query string, playlist bool) ([]*ytdlp.ExtractedInfo, error) {
			cmd := ytdlp.New().
				Format(ytdlpAudioFormat).
				Quiet().
				NoWarnings().
				IgnoreErrors().
				SkipDownload().
				DumpSingleJSON()
			if playlist {
				cmd.YesPlaylist()
			} else {
				cmd.NoPlaylist()
			}
			if executable != "" {
				cmd.SetExecutable(executable)
			}

			result, err := cmd.Run(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("yt-dlp: %w", err)
			}

			infos, err := result.GetExtractedInfo()
			if err != nil {
				return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
			}
			return infos, nil
		},
	}
}

// LoadTracks implements ports.TrackResolver.
// Playlists and search results are flattened into their entries, in order.
func (r *YTDLPResolver) LoadTracks(
	ctx context.Context,
	query string,
	playlist bool,
) ([]*ports.TrackInfo, error) {
	infos, err := r.extract(ctx, query, playlist)
	if err != nil {
		return nil, err
	}

	var tracks []*ports.TrackInfo
	for _, info := range infos {
		tracks = appendTrackInfos(tracks, info)
	}
	return tracks, nil
}

// appendTrackInfos appends info, or its entries when it is a playlist.
// A container is never a track itself, so an empty search result adds nothing.
// Entries that failed to extract come back as nil and are skipped.
func appendTrackInfos(tracks []*ports.TrackInfo, info *ytdlp.ExtractedInfo) []*ports.TrackInfo {
	if info == nil {
		return tracks
	}

	if isContainer(info) {
		for _, entry := range info.Entries {
			tracks = appendTrackInfos(tracks, entry)
		}
		return tracks
	}

	return append(tracks, &ports.TrackInfo{
		Identifier:   info.ID,
		StreamURL:    deref(info.URL),
		Title:        deref(info.Title),
		WebpageURL:   deref(info.WebpageURL),
		ThumbnailURL: deref(info.Thumbnail),
	})
}

// isContainer reports whether info is a playlist or search result rather than a video.
func isContainer(info *ytdlp.ExtractedInfo) bool {
	switch info.Type {
	case ytdlp.ExtractedTypePlaylist, ytdlp.ExtractedTypeMultiVideo:
		return true
	}
	return info.Entries != nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
