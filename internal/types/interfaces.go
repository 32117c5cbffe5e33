package types

import (
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
)

// ServerInterface is the slice of the server the message handler needs.
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
}

// MessageSender is a transient delivery handle. SendMessage must not block.
type MessageSender interface {
	SendMessage(msg *protocol.Message)
}

// ClientInterface is one websocket connection and the room it has joined.
type ClientInterface interface {
	MessageSender
	GetID() string
	GetRoom() string
	SetRoom(code string)
	Close()
}
