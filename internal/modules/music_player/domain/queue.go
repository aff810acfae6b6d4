package domain

// Queue is a FIFO of tracks waiting to be played.
// Tracks are appended at the back and popped from the front; entries are
// never reordered. The track that is currently playing is not part of the queue.
type Queue struct {
	tracks []*Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		tracks: make([]*Track, 0),
	}
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Append adds track(s) to the end of the queue, preserving their order.
func (q *Queue) Append(tracks ...*Track) {
	q.tracks = append(q.tracks, tracks...)
}

// PopFront removes and returns the track at the front of the queue.
// Returns nil if the queue is empty.
func (q *Queue) PopFront() *Track {
	if q.IsEmpty() {
		return nil
	}

	track := q.tracks[0]
	q.tracks[0] = nil
	q.tracks = q.tracks[1:]

	return track
}

// List returns a copy of all pending tracks in play order.
func (q *Queue) List() []*Track {
	result := make([]*Track, q.Len())
	copy(result, q.tracks)
	return result
}

// Clear removes all tracks from the queue.
func (q *Queue) Clear() {
	q.tracks = make([]*Track, 0)
}
