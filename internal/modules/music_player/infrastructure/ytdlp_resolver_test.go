package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/lrstanley/go-ytdlp"
)

func ptr(s string) *string { return &s }

func newStubResolver(infos []*ytdlp.ExtractedInfo, err error) (*YTDLPResolver, *[]bool) {
	var playlistFlags []bool
	return &YTDLPResolver{
		extract: func(_ context.Context, _ string, playlist bool) ([]*ytdlp.ExtractedInfo, error) {
			playlistFlags = append(playlistFlags, playlist)
			return infos, err
		},
	}, &playlistFlags
}

func TestYTDLPResolver_LoadTracks(t *testing.T) {
	tests := []struct {
		name       string
		infos      []*ytdlp.ExtractedInfo
		wantTitles []string
	}{
		{
			name: "single video",
			infos: []*ytdlp.ExtractedInfo{
				{ID: "a", Title: ptr("Song A"), URL: ptr("https://stream/a")},
			},
			wantTitles: []string{"Song A"},
		},
		{
			name: "search result wraps one entry",
			infos: []*ytdlp.ExtractedInfo{
				{
					ID:      "ytsearch1:song",
					Entries: []*ytdlp.ExtractedInfo{{ID: "a", Title: ptr("Song A")}},
				},
			},
			wantTitles: []string{"Song A"},
		},
		{
			name: "playlist keeps order and skips failed entries",
			infos: []*ytdlp.ExtractedInfo{
				{
					ID: "PL",
					Entries: []*ytdlp.ExtractedInfo{
						{ID: "a", Title: ptr("Song A")},
						nil,
						{ID: "b", Title: ptr("Song B")},
					},
				},
			},
			wantTitles: []string{"Song A", "Song B"},
		},
		{
			name: "search with no match",
			infos: []*ytdlp.ExtractedInfo{
				{
					ID:      "ytsearch1:zzqq",
					Type:    ytdlp.ExtractedTypePlaylist,
					Title:   ptr("zzqq"),
					Entries: []*ytdlp.ExtractedInfo{},
				},
			},
			wantTitles: nil,
		},
		{
			name: "playlist type without entries",
			infos: []*ytdlp.ExtractedInfo{
				{ID: "PL", Type: ytdlp.ExtractedTypePlaylist, Title: ptr("Empty playlist")},
			},
			wantTitles: nil,
		},
		{
			name: "nested playlist with only failed entries",
			infos: []*ytdlp.ExtractedInfo{
				{
					ID:      "PL",
					Type:    ytdlp.ExtractedTypeMultiVideo,
					Entries: []*ytdlp.ExtractedInfo{nil, {ID: "inner", Entries: []*ytdlp.ExtractedInfo{}}},
				},
			},
			wantTitles: nil,
		},
		{
			name:       "nothing found",
			infos:      nil,
			wantTitles: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, _ := newStubResolver(tt.infos, nil)

			tracks, err := resolver.LoadTracks(t.Context(), "query", false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(tracks) != len(tt.wantTitles) {
				t.Fatalf("expected %d tracks, got %d", len(tt.wantTitles), len(tracks))
			}
			for i, want := range tt.wantTitles {
				if tracks[i].Title != want {
					t.Errorf("track %d: expected title %q, got %q", i, want, tracks[i].Title)
				}
			}
		})
	}
}

func TestYTDLPResolver_MapsFields(t *testing.T) {
	resolver, _ := newStubResolver([]*ytdlp.ExtractedInfo{
		{
			ID:         "abc",
			Title:      ptr("Song"),
			URL:        ptr("https://stream/abc"),
			WebpageURL: ptr("https://www.youtube.com/watch?v=abc"),
			Thumbnail:  ptr("https://i.ytimg.com/vi/abc/hqdefault.jpg"),
		},
	}, nil)

	tracks, err := resolver.LoadTracks(t.Context(), "query", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := tracks[0]
	if got.Identifier != "abc" ||
		got.StreamURL != "https://stream/abc" ||
		got.WebpageURL != "https://www.youtube.com/watch?v=abc" ||
		got.ThumbnailURL != "https://i.ytimg.com/vi/abc/hqdefault.jpg" {
		t.Errorf("unexpected track info %+v", got)
	}
}

func TestYTDLPResolver_MissingFieldsAreEmpty(t *testing.T) {
	resolver, _ := newStubResolver([]*ytdlp.ExtractedInfo{{ID: "abc"}}, nil)

	tracks, err := resolver.LoadTracks(t.Context(), "query", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tracks[0].Title != "" || tracks[0].StreamURL != "" {
		t.Errorf("expected empty fields, got %+v", tracks[0])
	}
}

func TestYTDLPResolver_PassesPlaylistFlag(t *testing.T) {
	resolver, flags := newStubResolver(nil, nil)

	_, _ = resolver.LoadTracks(t.Context(), "a", false)
	_, _ = resolver.LoadTracks(t.Context(), "b", true)

	if len(*flags) != 2 || (*flags)[0] || !(*flags)[1] {
		t.Errorf("unexpected playlist flags %v", *flags)
	}
}

func TestYTDLPResolver_PropagatesError(t *testing.T) {
	expected := errors.New("exit status 1")
	resolver, _ := newStubResolver(nil, expected)

	_, err := resolver.LoadTracks(t.Context(), "query", false)
	if !errors.Is(err, expected) {
		t.Errorf("expected %v, got %v", expected, err)
	}
}
