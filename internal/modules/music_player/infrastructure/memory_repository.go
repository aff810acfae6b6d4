package infrastructure

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// Ensure MemoryRepository implements PlayerStateRepository.
var _ domain.PlayerStateRepository = (*MemoryRepository)(nil)

// guildEntry pairs a guild's state with the lock that serializes access to it.
// The lock is a one-slot channel so that waiting for it respects ctx.
type guildEntry struct {
	lock  chan struct{}
	state *domain.PlayerState
}

// MemoryRepository is an in-memory implementation of PlayerStateRepository.
// The map itself is guarded by mu; each guild's state is guarded by its own entry lock.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[snowflake.ID]*guildEntry
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[snowflake.ID]*guildEntry),
	}
}

// entry returns the guild's entry, creating it on first use.
func (r *MemoryRepository) entry(guildID snowflake.ID) *guildEntry {
	r.mu.RLock()
	e, ok := r.entries[guildID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[guildID]; ok {
		return e
	}
	e = &guildEntry{
		lock:  make(chan struct{}, 1),
		state: domain.NewPlayerState(guildID, 0, 0),
	}
	r.entries[guildID] = e
	return e
}

// Update runs fn with exclusive access to the guild's PlayerState.
func (r *MemoryRepository) Update(
	ctx context.Context,
	guildID snowflake.ID,
	fn func(state *domain.PlayerState) error,
) error {
	e := r.entry(guildID)

	select {
	case e.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.lock }()

	return fn(e.state)
}

// Count returns the number of guilds with an active voice session.
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	entries := make([]*guildEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	count := 0
	for _, e := range entries {
		e.lock <- struct{}{}
		if e.state.IsConnected() {
			count++
		}
		<-e.lock
	}
	return count
}
