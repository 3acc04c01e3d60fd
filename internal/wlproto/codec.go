package wlproto

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxMessageSize bounds a single frame. Anything larger is protocol
// misuse and kills the connection.
const maxMessageSize = 1 << 20

// Envelope is the wire frame: a type tag plus the type's JSON payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope wraps a message struct into an envelope.
func NewEnvelope(msgType string, msg interface{}) (Envelope, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	return Envelope{Type: msgType, Payload: payload}, nil
}

// MustEnvelope is NewEnvelope for message structs that cannot fail to
// marshal. All protocol structs qualify.
func MustEnvelope(msgType string, msg interface{}) Envelope {
	env, err := NewEnvelope(msgType, msg)
	if err != nil {
		panic(err)
	}
	return env
}

// WriteMessage writes a single length-prefixed frame.
func WriteMessage(w io.Writer, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// Write message length (4 bytes, big endian)
	length := uint32(len(data))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("failed to write message length: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write message data: %w", err)
	}

	return nil
}

// ReadMessage reads a single length-prefixed frame.
func ReadMessage(r io.Reader) (Envelope, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return Envelope{}, fmt.Errorf("failed to read message length: %w", err)
	}
	if length > maxMessageSize {
		return Envelope{}, fmt.Errorf("message of %d bytes exceeds limit", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return Envelope{}, fmt.Errorf("failed to read message data: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return env, nil
}
