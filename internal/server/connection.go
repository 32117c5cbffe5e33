package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
)

const (
	qrCodeSize        = 320
	directoryTimeout  = time.Second
	healthServiceName = "Waterdeep Conspiracy Game Server"
)

// handleWebSocket admits one connection and starts its pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	if s.IsMaintenanceMode() {
		log.Info().Str("ip", clientIP).Msg("maintenance mode, connection refused")
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Warn().Int("max", s.maxConnections).Str("ip", clientIP).Msg("connection limit reached")
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	if !s.originChecker.Check(r) {
		<-s.semaphore
		log.Warn().Str("origin", r.Header.Get("Origin")).Str("ip", clientIP).Msg("origin rejected")
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	if !s.connLimiter.Allow(clientIP) {
		<-s.semaphore
		log.Warn().Str("ip", clientIP).Msg("connection rate exceeded")
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		log.Warn().Err(err).Str("ip", clientIP).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(s, conn)
	client.IP = clientIP
	s.registerClient(client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID: client.ID,
	}))

	log.Info().Str("client", client.ID).Str("ip", clientIP).Msg("client connected")

	go client.ReadPump()
	go client.WritePump()
}

type healthResponse struct {
	Message        string `json:"message"`
	ActiveGames    int    `json:"activeGames"`
	Status         string `json:"status"`
	DirectoryGames *int   `json:"directoryGames,omitempty"`
}

// handleHealth reports liveness and how many rooms this instance holds.
// With the directory enabled it also reports rooms across all instances.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Message:     healthServiceName,
		ActiveGames: s.roomManager.RoomCount(),
		Status:      "running",
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), directoryTimeout)
		defer cancel()
		if n, err := s.store.CountRooms(ctx); err == nil {
			resp.DirectoryGames = &n
		} else {
			log.Warn().Err(err).Msg("count directory rooms failed")
		}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleQRCode renders a PNG QR code of the join link for a live room.
func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	rm := s.roomManager.GetRoom(code)
	if rm == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(JoinURL(s.config.Server.PublicURL, rm.Code), qrcode.Medium, qrCodeSize)
	if err != nil {
		log.Error().Err(err).Str("room", rm.Code).Msg("qr encode failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient forgets client and frees its connection slot.
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		<-s.semaphore
		log.Info().Str("client", client.ID).Msg("client disconnected")
	}
}

// JoinURL is the front-end link that opens the join screen for code.
func JoinURL(publicURL, code string) string {
	return strings.TrimRight(publicURL, "/") + "/?code=" + url.QueryEscape(code)
}
