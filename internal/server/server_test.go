package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/waterdeep-conspiracy/internal/config"
	"github.com/palemoky/waterdeep-conspiracy/internal/game/prompt"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
)

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}

	s, err := NewServer(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, ts
}

type wsPlayer struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dial(t *testing.T, ts *httptest.Server) *wsPlayer {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	p := &wsPlayer{t: t, conn: conn}
	var connected protocol.ConnectedPayload
	p.expect(protocol.MsgConnected, &connected)
	require.NotEmpty(t, connected.PlayerID)
	p.id = connected.PlayerID
	return p
}

func (p *wsPlayer) send(msgType protocol.MessageType, payload any) {
	p.t.Helper()
	data, err := codec.Encode(codec.MustNewMessage(msgType, payload))
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, data))
}

// expect reads until a message of msgType arrives and decodes its payload
// into out, skipping everything else.
func (p *wsPlayer) expect(msgType protocol.MessageType, out any) {
	p.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(p.t, p.conn.SetReadDeadline(deadline))
		_, data, err := p.conn.ReadMessage()
		require.NoError(p.t, err, "waiting for %s", msgType)

		var msg protocol.Message
		require.NoError(p.t, json.Unmarshal(data, &msg))
		if msg.Type != msgType {
			continue
		}
		if out != nil {
			require.NoError(p.t, json.Unmarshal(msg.Payload, out))
		}
		return
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil)
	s.RoomManager().CreateRoom()

	for _, path := range []string{"/", "/health"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.Equal(t, "Waterdeep Conspiracy Game Server", body["message"])
		assert.Equal(t, "running", body["status"])
		assert.EqualValues(t, 1, body["activeGames"])
		assert.NotContains(t, body, "directoryGames")
	}
}

func TestHealth_WithDirectory(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	s, ts := newTestServer(t, cfg)
	code := s.RoomManager().CreateRoom().Code

	assert.Eventually(t, func() bool {
		return mr.Exists("conspiracy:room:" + code)
	}, time.Second, 5*time.Millisecond)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 1, body["directoryGames"])
}

func TestNewServer_UnreachableRedis(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := NewServer(cfg)
	assert.ErrorContains(t, err, "connect redis")
}

func TestLoadDeck(t *testing.T) {
	t.Parallel()

	builtIn := prompt.Default().Len()

	tests := []struct {
		name    string
		prompts []string
		want    int
		warned  bool
	}{
		{"none configured", nil, builtIn, false},
		{"configured", []string{"Who hired the Zhents?", " ", "Why is the Yawning Portal closed?"}, 2, false},
		{"only blanks", []string{"", "   "}, builtIn, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			deck := loadDeck(tt.prompts, zerolog.New(&buf))

			assert.Equal(t, tt.want, deck.Len())
			if !tt.warned {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), `"level":"warn"`)
			assert.Contains(t, buf.String(), prompt.ErrEmptyDeck.Error())
		})
	}
}

func TestNewServer_BlankPromptsFallBack(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Game.Prompts = []string{"  "}

	s, _ := newTestServer(t, cfg)
	assert.NotNil(t, s.RoomManager())
}

func TestQRCode(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil)
	code := s.RoomManager().CreateRoom().Code

	resp, err := http.Get(ts.URL + "/qr/" + strings.ToLower(code))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	_, err = png.Decode(&buf)
	assert.NoError(t, err)

	missing, err := http.Get(ts.URL + "/qr/ZZZZ")
	require.NoError(t, err)
	_ = missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestJoinURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://localhost:3000/?code=AB12", JoinURL("http://localhost:3000", "AB12"))
	assert.Equal(t, "https://braedenpope.dev/?code=AB12", JoinURL("https://braedenpope.dev/", "AB12"))
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocket_MaintenanceRefusesConnections(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil)
	s.EnterMaintenanceMode()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebSocket_PlayThroughARound(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil)

	host := dial(t, ts)
	host.send(protocol.MsgCreateGame, nil)
	var created protocol.GameCreatedPayload
	host.expect(protocol.MsgGameCreated, &created)

	alice := dial(t, ts)
	alice.send(protocol.MsgJoinGame, protocol.JoinGamePayload{Code: strings.ToLower(created.Code), Name: "Alice"})
	alice.expect(protocol.MsgJoinedGame, nil)

	bob := dial(t, ts)
	bob.send(protocol.MsgJoinGame, protocol.JoinGamePayload{Code: created.Code, Name: "Alice"})
	var taken string
	bob.expect(protocol.MsgError, &taken)
	assert.Equal(t, "Name already taken in this game", taken)

	bob.send(protocol.MsgJoinGame, protocol.JoinGamePayload{Code: created.Code, Name: "Bob"})
	var roster protocol.PlayersUpdatePayload
	bob.expect(protocol.MsgPlayersUpdate, &roster)
	assert.Len(t, roster.Players, 2)

	host.send(protocol.MsgStartGame, protocol.RoomPayload{Code: created.Code})
	var start protocol.RoundStartPayload
	alice.expect(protocol.MsgRoundStart, &start)
	assert.Equal(t, 1, start.Round)
	assert.Equal(t, 60, start.TimeLeft)
	assert.NotEmpty(t, start.Prompt)

	alice.send(protocol.MsgSubmitTheory, protocol.SubmitTheoryPayload{Code: created.Code, Theory: "It was the Xanathar"})
	alice.expect(protocol.MsgTheorySubmitted, nil)
	bob.send(protocol.MsgSubmitTheory, protocol.SubmitTheoryPayload{Code: created.Code, Theory: "Blame the harpers"})

	var ballot protocol.VotingPhasePayload
	alice.expect(protocol.MsgVotingPhase, &ballot)
	require.Len(t, ballot.Submissions, 2)

	alice.send(protocol.MsgVote, protocol.VotePayload{Code: created.Code, VotedForID: bob.id})
	alice.expect(protocol.MsgVoteRegistered, nil)
	bob.send(protocol.MsgVote, protocol.VotePayload{Code: created.Code, VotedForID: alice.id})

	var results protocol.ResultsPayload
	bob.expect(protocol.MsgResults, &results)
	require.Len(t, results.Results, 2)
	for _, r := range results.Results {
		assert.Equal(t, 1, r.Votes)
	}
	assert.False(t, results.IsLastRound)

	// Dropping both players destroys the room.
	_ = alice.conn.Close()
	_ = bob.conn.Close()
	assert.Eventually(t, func() bool {
		return s.RoomManager().GetRoom(created.Code) == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocket_InvalidFrame(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	p := dial(t, ts)

	require.NoError(t, p.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var text string
	p.expect(protocol.MsgError, &text)
	assert.Equal(t, "Invalid message", text)
}
