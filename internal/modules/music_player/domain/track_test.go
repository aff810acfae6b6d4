package domain

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestNewTrack(t *testing.T) {
	requesterID := snowflake.ID(123456789)
	track := NewTrack(
		"dQw4w9WgXcQ",
		"https://rr1.googlevideo.com/audio",
		"Test Song",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		requesterID,
	)

	if track.Identifier != "dQw4w9WgXcQ" {
		t.Errorf("expected Identifier 'dQw4w9WgXcQ', got %q", track.Identifier)
	}
	if track.Source != "https://rr1.googlevideo.com/audio" {
		t.Errorf("unexpected Source %q", track.Source)
	}
	if track.Title != "Test Song" {
		t.Errorf("expected Title 'Test Song', got %q", track.Title)
	}
	if track.RequesterID != requesterID {
		t.Errorf("expected RequesterID %d, got %d", requesterID, track.RequesterID)
	}
	if track.EnqueuedAt.IsZero() {
		t.Error("expected EnqueuedAt to be set")
	}
}

func TestNewTrack_DefaultTitle(t *testing.T) {
	track := NewTrack("id", "src", "", "", "", snowflake.ID(1))

	if track.Title != DefaultTrackTitle {
		t.Errorf("expected Title %q, got %q", DefaultTrackTitle, track.Title)
	}
}

func TestTrack_HasSource(t *testing.T) {
	if !NewTrack("id", "src", "t", "", "", 0).HasSource() {
		t.Error("expected track with source to report HasSource")
	}
	if NewTrack("id", "", "t", "", "", 0).HasSource() {
		t.Error("expected track without source to not report HasSource")
	}
}

func TestTrack_LinkURL(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		webpage  string
		expected string
	}{
		{
			name:     "prefers webpage",
			source:   "https://stream",
			webpage:  "https://page",
			expected: "https://page",
		},
		{
			name:     "falls back to source",
			source:   "https://stream",
			expected: "https://stream",
		},
		{
			name:     "empty",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := NewTrack("id", tt.source, "t", tt.webpage, "", 0)
			if got := track.LinkURL(); got != tt.expected {
				t.Errorf("LinkURL() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
