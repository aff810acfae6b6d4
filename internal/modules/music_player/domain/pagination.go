package domain

// DefaultPageSize is the number of tracks shown per queue page.
const DefaultPageSize = 10

// QueuePage is one page of a queue snapshot.
type QueuePage struct {
	Page       int      // 0-based page index
	TotalPages int      // Always at least 1
	Start      int      // Index of the first track of this page in the snapshot
	Tracks     []*Track // Tracks on this page
}

// HasPrevious returns true if there is a page before this one.
func (p QueuePage) HasPrevious() bool {
	return p.Page > 0
}

// HasNext returns true if there is a page after this one.
func (p QueuePage) HasNext() bool {
	return p.Page < p.TotalPages-1
}

// Position returns the 1-based queue position of the i-th track on the page.
func (p QueuePage) Position(i int) int {
	return p.Start + i + 1
}

// PageCount returns the number of pages needed for count tracks.
// An empty queue still has one (empty) page.
func PageCount(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count-1)/pageSize + 1
}

// Paginate slices tracks into the requested page.
// The page index is clamped into [0, PageCount-1]. The input slice is not modified.
func Paginate(tracks []*Track, page, pageSize int) QueuePage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := PageCount(len(tracks), pageSize)
	page = max(0, min(page, total-1))

	start := page * pageSize
	end := min(start+pageSize, len(tracks))
	if start > end {
		start = end
	}

	return QueuePage{
		Page:       page,
		TotalPages: total,
		Start:      start,
		Tracks:     tracks[start:end],
	}
}
