package domain

import (
	"strconv"
	"testing"
)

func makeTracks(n int) []*Track {
	tracks := make([]*Track, n)
	for i := range n {
		tracks[i] = testTrack(strconv.Itoa(i))
	}
	return tracks
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		count    int
		expected int
	}{
		{0, 1},
		{1, 1},
		{10, 1},
		{11, 2},
		{20, 2},
		{23, 3},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.count), func(t *testing.T) {
			if got := PageCount(tt.count, DefaultPageSize); got != tt.expected {
				t.Errorf("PageCount(%d) = %d, expected %d", tt.count, got, tt.expected)
			}
		})
	}
}

func TestPaginate_TwentyThreeTracks(t *testing.T) {
	tracks := makeTracks(23)

	tests := []struct {
		page          int
		expectedStart int
		expectedLen   int
		expectedPrev  bool
		expectedNext  bool
	}{
		{page: 0, expectedStart: 0, expectedLen: 10, expectedPrev: false, expectedNext: true},
		{page: 1, expectedStart: 10, expectedLen: 10, expectedPrev: true, expectedNext: true},
		{page: 2, expectedStart: 20, expectedLen: 3, expectedPrev: true, expectedNext: false},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.page), func(t *testing.T) {
			p := Paginate(tracks, tt.page, DefaultPageSize)

			if p.TotalPages != 3 {
				t.Errorf("expected 3 pages, got %d", p.TotalPages)
			}
			if p.Start != tt.expectedStart {
				t.Errorf("expected start %d, got %d", tt.expectedStart, p.Start)
			}
			if len(p.Tracks) != tt.expectedLen {
				t.Errorf("expected %d tracks, got %d", tt.expectedLen, len(p.Tracks))
			}
			if p.HasPrevious() != tt.expectedPrev {
				t.Errorf("HasPrevious() = %v, expected %v", p.HasPrevious(), tt.expectedPrev)
			}
			if p.HasNext() != tt.expectedNext {
				t.Errorf("HasNext() = %v, expected %v", p.HasNext(), tt.expectedNext)
			}
		})
	}
}

func TestPaginate_LabelsAreContinuous(t *testing.T) {
	tracks := makeTracks(23)
	p := Paginate(tracks, 2, DefaultPageSize)

	for i := range p.Tracks {
		if got := p.Position(i); got != 21+i {
			t.Errorf("expected label %d, got %d", 21+i, got)
		}
		if p.Tracks[i] != tracks[20+i] {
			t.Errorf("track %d does not match snapshot", i)
		}
	}
}

func TestPaginate_ClampsPage(t *testing.T) {
	tracks := makeTracks(5)

	if p := Paginate(tracks, 7, DefaultPageSize); p.Page != 0 {
		t.Errorf("expected page clamped to 0, got %d", p.Page)
	}
	if p := Paginate(tracks, -1, DefaultPageSize); p.Page != 0 {
		t.Errorf("expected page clamped to 0, got %d", p.Page)
	}
}

func TestPaginate_EmptyQueue(t *testing.T) {
	p := Paginate(nil, 0, DefaultPageSize)

	if p.TotalPages != 1 {
		t.Errorf("expected 1 page, got %d", p.TotalPages)
	}
	if len(p.Tracks) != 0 {
		t.Errorf("expected no tracks, got %d", len(p.Tracks))
	}
	if p.HasPrevious() || p.HasNext() {
		t.Error("expected both navigation directions disabled")
	}
}

func TestPaginate_SinglePageDisablesNavigation(t *testing.T) {
	p := Paginate(makeTracks(10), 0, DefaultPageSize)

	if p.HasPrevious() || p.HasNext() {
		t.Error("expected both navigation directions disabled for a single page")
	}
}
