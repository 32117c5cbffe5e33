package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
)

func TestGameError_UserFacingText(t *testing.T) {
	t.Parallel()

	assert.EqualError(t, ErrGameNotFound, "Game not found")
	assert.EqualError(t, ErrNameTooLong, "Name too long (max 20 characters)")
	assert.EqualError(t, ErrNameTaken, "Name already taken in this game")
	assert.EqualError(t, ErrNotEnoughPlayers, "Need at least 1 player to start")
	assert.EqualError(t, NameTooLong(12), "Name too long (max 12 characters)")
}

func TestGameError_As(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("join ABCD: %w", ErrNameTaken)

	var gameErr *GameError
	require.True(t, errors.As(wrapped, &gameErr))
	assert.Equal(t, protocol.ErrCodeNameTaken, gameErr.Code)
	assert.True(t, errors.Is(wrapped, ErrNameTaken))
}
