//go:build !production

package testutil

import (
	"encoding/json"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
)

// MockClient implements types.ClientInterface with testify expectations.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(code string) {
	m.Called(code)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient records everything sent to it. It is safe for use from room
// timers and test goroutines at the same time.
type SimpleClient struct {
	ID       string
	RoomCode string

	mu       sync.Mutex
	messages []*protocol.Message
	closed   bool
}

// NewSimpleClient returns a recording client with the given id.
func NewSimpleClient(id string) *SimpleClient {
	return &SimpleClient{ID: id}
}

func (c *SimpleClient) GetID() string { return c.ID }

func (c *SimpleClient) GetRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.RoomCode
}

func (c *SimpleClient) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RoomCode = code
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed reports whether Close was called.
func (c *SimpleClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// SentMessages returns a copy of everything received so far.
func (c *SimpleClient) SentMessages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Message(nil), c.messages...)
}

// Reset forgets recorded messages.
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// MessagesOfType returns the recorded messages with the given type, in order.
func (c *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, msg := range c.SentMessages() {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

// LastOfType returns the most recent message of type t, or nil.
func (c *SimpleClient) LastOfType(t protocol.MessageType) *protocol.Message {
	msgs := c.MessagesOfType(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// LastPayload decodes the most recent message of type t into T.
// ok is false when there is no such message.
func LastPayload[T any](c *SimpleClient, t protocol.MessageType) (payload T, ok bool) {
	msg := c.LastOfType(t)
	if msg == nil {
		return payload, false
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, false
	}
	return payload, true
}
