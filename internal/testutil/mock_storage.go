//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/waterdeep-conspiracy/internal/server/storage"
)

// MockRoomStore implements room.RoomStore.
type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) PublishRoom(ctx context.Context, summary *storage.RoomSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockRoomStore) RemoveRoom(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
