package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/config"
	"github.com/palemoky/waterdeep-conspiracy/internal/game/prompt"
	"github.com/palemoky/waterdeep-conspiracy/internal/game/room"
	"github.com/palemoky/waterdeep-conspiracy/internal/server/handler"
	"github.com/palemoky/waterdeep-conspiracy/internal/server/storage"
)

const redisPingTimeout = 5 * time.Second

// Server accepts websocket players and serves the small HTTP surface
// around them.
type Server struct {
	config      *config.Config
	store       *storage.RedisStore // nil when the room directory is disabled
	roomManager *room.RoomManager
	handler     *handler.Handler
	upgrader    websocket.Upgrader

	clients   map[string]*Client
	clientsMu sync.RWMutex

	connLimiter    *ConnectionLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageLimiter

	maxConnections int
	semaphore      chan struct{}

	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	httpServer *http.Server
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewServer wires a server from cfg. Redis is only contacted when the room
// directory is enabled, and an unreachable Redis is then a startup error.
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:  cfg,
		clients: make(map[string]*Client),
		connLimiter:    NewConnectionLimiter(cfg.Security.RateLimit),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageLimiter(cfg.Security.MessageLimit),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	var roomStore room.RoomStore
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		s.store = storage.NewRedisStore(rdb)
		roomStore = s.store
	}

	deck := loadDeck(cfg.Game.Prompts, log.Logger)

	s.roomManager = room.NewRoomManager(room.Options{
		Store: roomStore,
		Settings: room.Settings{
			MaxRounds:     cfg.Game.MaxRounds,
			PhaseSeconds:  cfg.Game.PhaseSeconds,
			VoteSeconds:   cfg.Game.VoteSeconds,
			MaxNameLength: cfg.Game.MaxNameLength,
			TickInterval:  time.Second,
		},
		Deck:        deck,
		RoomTimeout: cfg.Game.RoomTimeoutDuration(),
	})

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
	})

	log.Info().
		Int("conn_per_second", cfg.Security.RateLimit.MaxPerSecond).
		Int("msg_per_second", cfg.Security.MessageLimit.MaxPerSecond).
		Int("msg_max_strikes", cfg.Security.MessageLimit.MaxStrikes).
		Int("max_connections", cfg.Server.MaxConnections).
		Bool("directory", cfg.Redis.Enabled).
		Int("prompts", deck.Len()).
		Msg("server configured")

	return s, nil
}

// loadDeck builds the configured deck, or the built-in one when the
// configured list is unusable.
func loadDeck(prompts []string, logger zerolog.Logger) *prompt.Deck {
	if len(prompts) == 0 {
		return prompt.Default()
	}
	deck, err := prompt.NewDeck(prompts)
	if err != nil {
		logger.Warn().Err(err).Int("prompts", len(prompts)).Msg("unusable prompt list, using the built-in deck")
		return prompt.Default()
	}
	return deck
}

// Routes returns the HTTP handler for every endpoint.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/qr/{code}", s.handleQRCode).Methods(http.MethodGet)
	return r
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()

	go s.roomManager.RunCleanup(s.ctx)
	go s.connLimiter.Run(s.ctx)
	go s.monitorStats(s.ctx)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", addr).Int("cpus", runtime.NumCPU()).Msg("server listening on ws://" + addr + "/ws")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RoomManager exposes the room registry.
func (s *Server) RoomManager() *room.RoomManager {
	return s.roomManager
}
