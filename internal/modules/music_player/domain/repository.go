package domain

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// PlayerStateRepository defines the interface for storing and mutating player states.
type PlayerStateRepository interface {
	// Update runs fn with exclusive access to the guild's PlayerState.
	// A disconnected, idle state is created on first use.
	// Calls for the same guild are serialized; different guilds never contend.
	// The error returned by fn is returned unchanged.
	Update(ctx context.Context, guildID snowflake.ID, fn func(state *PlayerState) error) error
}
