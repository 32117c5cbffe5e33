package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
)

var upgrader = websocket.Upgrader{}

// greetAndEcho sends a connected greeting, then echoes every frame.
func greetAndEcho(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()

	hello, _ := codec.Encode(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{PlayerID: "p-42"}))
	_ = c.WriteMessage(websocket.TextMessage, hello)

	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			return
		}
		_ = c.WriteMessage(mt, message)
	}
}

func connect(t *testing.T) *Client {
	t.Helper()

	s := httptest.NewServer(http.HandlerFunc(greetAndEcho))
	t.Cleanup(s.Close)

	c := NewClient("ws" + strings.TrimPrefix(s.URL, "http"))
	require.NoError(t, c.Connect())
	t.Cleanup(c.Close)
	return c
}

func TestClient_ConnectAndGreeting(t *testing.T) {
	t.Parallel()

	c := connect(t)
	assert.True(t, c.IsConnected())

	msg, err := c.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgConnected, msg.Type)
	assert.Equal(t, "p-42", c.ID())
}

func TestClient_Actions(t *testing.T) {
	t.Parallel()

	c := connect(t)
	_, err := c.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)

	tests := []struct {
		name string
		send func() error
		want protocol.MessageType
		body string
	}{
		{"create", c.CreateGame, protocol.MsgCreateGame, ""},
		{"join", func() error { return c.JoinGame("AB12", "Alice") }, protocol.MsgJoinGame, `{"code":"AB12","name":"Alice"}`},
		{"start", func() error { return c.StartGame("AB12") }, protocol.MsgStartGame, `{"code":"AB12"}`},
		{"theory", func() error { return c.SubmitTheory("AB12", "<b>Xanathar</b>") }, protocol.MsgSubmitTheory, `{"code":"AB12","theory":"<b>Xanathar</b>"}`},
		{"vote", func() error { return c.Vote("AB12", "p-7") }, protocol.MsgVote, `{"code":"AB12","votedForId":"p-7"}`},
		{"next", func() error { return c.NextRound("AB12") }, protocol.MsgNextRound, `{"code":"AB12"}`},
		{"skip", func() error { return c.SkipTimer("AB12") }, protocol.MsgSkipTimer, `{"code":"AB12"}`},
	}

	for _, tt := range tests {
		require.NoError(t, tt.send(), tt.name)
		msg, err := c.ReceiveWithTimeout(time.Second)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, msg.Type, tt.name)
		if tt.body == "" {
			assert.Empty(t, msg.Payload, tt.name)
		} else {
			assert.JSONEq(t, tt.body, string(msg.Payload), tt.name)
		}
	}
}

func TestClient_SkipsGarbage(t *testing.T) {
	t.Parallel()

	c := connect(t)
	_, err := c.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)

	c.send <- []byte("not json")
	c.send <- []byte(`{"payload":{}}`)
	require.NoError(t, c.CreateGame())

	msg, err := c.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgCreateGame, msg.Type)
}

func TestClient_Close(t *testing.T) {
	t.Parallel()

	c := connect(t)
	_, err := c.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)

	c.Close()
	c.Close()

	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.CreateGame(), ErrClosed)

	_, err = c.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClient_ReceiveTimeout(t *testing.T) {
	t.Parallel()

	c := connect(t)
	_, err := c.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)

	_, err = c.ReceiveWithTimeout(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_ConnectFails(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://127.0.0.1:1/ws")
	assert.Error(t, c.Connect())
	assert.False(t, c.IsConnected())
}
