package domain

import (
	"strings"
)

// SearchSource represents the source for searching tracks.
type SearchSource string

const (
	// SourceYouTube searches YouTube and keeps the single best match.
	SourceYouTube SearchSource = "ytsearch1"
	// SourceDirect indicates a URL handed to the extractor as is.
	SourceDirect SearchSource = ""
)

// playlistMarkers are substrings that identify a playlist URL.
var playlistMarkers = []string{
	"youtube.com/playlist",
	"&list=",
	"?list=",
}

// SearchQuery represents a query for resolving tracks.
type SearchQuery struct {
	Query      string       // The search term or URL
	Source     SearchSource // The search source
	IsURL      bool         // Whether the query is a direct URL
	IsPlaylist bool         // Whether the query should expand to every playlist entry
}

// NewSearchQuery creates a SearchQuery from user input.
// Playlist URLs are passed through unchanged so every entry is loaded.
// Anything else, single-video URLs included, becomes a single-result YouTube search.
func NewSearchQuery(input string) *SearchQuery {
	input = strings.TrimSpace(input)

	if isPlaylist(input) {
		return &SearchQuery{
			Query:      input,
			Source:     SourceDirect,
			IsURL:      true,
			IsPlaylist: true,
		}
	}

	return &SearchQuery{
		Query:  input,
		Source: SourceYouTube,
		IsURL:  isURL(input),
	}
}

// ExtractorQuery returns the query string formatted for the extractor.
func (q *SearchQuery) ExtractorQuery() string {
	if q.Source == SourceDirect {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// IsValid returns true if the query is not empty.
func (q *SearchQuery) IsValid() bool {
	return q.Query != ""
}

func isPlaylist(input string) bool {
	for _, marker := range playlistMarkers {
		if strings.Contains(input, marker) {
			return true
		}
	}
	return false
}

// isURL checks if the input looks like a URL.
func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
