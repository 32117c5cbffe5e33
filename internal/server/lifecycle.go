package server

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
)

const statsInterval = 30 * time.Second

func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			log.Info().
				Int("online", s.GetOnlineCount()).
				Int("rooms", s.roomManager.RoomCount()).
				Int("active_games", s.roomManager.ActiveGamesCount()).
				Int("goroutines", runtime.NumGoroutine()).
				Float64("mem_mb", float64(m.Alloc)/1024/1024).
				Msg("stats")
		}
	}
}

// EnterMaintenanceMode refuses new connections and new games. Games already
// running carry on.
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.BroadcastToLobby(codec.NewErrorMessage(protocol.ErrCodeMaintenance))
	log.Info().Msg("maintenance mode on")
}

// IsMaintenanceMode reports whether the server is draining.
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// Shutdown stops accepting connections, closes every client and room, and
// releases Redis. ctx bounds the wait for in-flight HTTP requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.EnterMaintenanceMode()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.RUnlock()

	s.roomManager.Shutdown()
	s.cancel()

	if s.store != nil {
		if cerr := s.store.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close redis")
		}
	}

	log.Info().Msg("server stopped")
	return err
}
