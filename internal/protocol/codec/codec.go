// Package codec encodes and decodes protocol envelopes.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
)

// ErrEmptyType is returned by Decode for an envelope without a type.
var ErrEmptyType = errors.New("message type is empty")

// NewMessage builds an envelope around payload. A nil payload is omitted.
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := &protocol.Message{Type: msgType}
	if payload != nil {
		data, err := marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// marshal is json.Marshal without HTML escaping, so player text such as
// "<3" or "&" reaches clients as typed.
func marshal(v any) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return append([]byte(nil), data...), nil
}

// MustNewMessage is NewMessage for payloads that cannot fail to marshal.
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode serializes an envelope. HTML characters stay unescaped, in the
// payload as well as the envelope.
func Encode(m *protocol.Message) ([]byte, error) {
	return marshal(m)
}

// Decode parses an envelope into a pooled Message.
// Release it with PutMessage once handled.
func Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrEmptyType
	}
	return msg, nil
}

// ParsePayload unmarshals the payload into T and, when T has required fields,
// validates them.
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("%s: %w", msg.Type, protocol.ErrMissingField)
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	if v, ok := any(&payload).(protocol.Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", msg.Type, err)
		}
	}
	return &payload, nil
}

// NewErrorMessage builds an error reply from a code's default text.
func NewErrorMessage(code int) *protocol.Message {
	text, ok := protocol.ErrorMessages[code]
	if !ok {
		text = protocol.ErrorMessages[protocol.ErrCodeUnknown]
	}
	return NewErrorMessageWithText(text)
}

// NewErrorMessageWithText builds an error reply whose payload is the bare string.
func NewErrorMessageWithText(text string) *protocol.Message {
	return MustNewMessage(protocol.MsgError, text)
}
