// Package session implements the per-connection dialogue state machine.
//
// A session is created on connect, mutated by each inbound message, and
// destroyed on disconnect. Reconnecting under the same identity yields a
// fresh session; no state carries over. Within a session messages are
// processed strictly sequentially: every inbound message yields exactly one
// outbound message, emitted before the next inbound is read.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/contentd/internal/models"
)

// State is the lifecycle state of a session.
type State string

const (
	// StateConnected is the initial state, before any message arrived.
	StateConnected State = "connected"
	// StateActive means at least one message has been processed.
	StateActive State = "active"
	// StateDisconnected is terminal.
	StateDisconnected State = "disconnected"
)

// Session tracks dialogue state for one connection identity.
type Session struct {
	clientID    string
	state       State
	lastMessage *models.DialogueMessage
	logger      *slog.Logger
}

// New creates a session in the connected state.
func New(clientID string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		clientID: clientID,
		state:    StateConnected,
		logger:   logger,
	}
}

// ClientID returns the connection identity this session belongs to.
func (s *Session) ClientID() string {
	return s.clientID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// LastMessage returns the most recent valid inbound message, or nil.
func (s *Session) LastMessage() *models.DialogueMessage {
	return s.lastMessage
}

// HandleInbound processes one raw inbound message and returns exactly one
// outbound message. It never panics outward and never closes the session:
// malformed input and internal failures both produce an error-type outbound
// message while the session stays active.
func (s *Session) HandleInbound(raw []byte) (out models.DialogueMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("message processing panicked", "client_id", s.clientID, "panic", rec)
			out = models.AgentError(fmt.Sprintf("error processing message: %v", rec))
		}
	}()

	if s.state == StateConnected {
		s.state = StateActive
	}

	var msg models.DialogueMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.Warn("unparseable session message", "client_id", s.clientID, "error", err)
		return models.AgentError(fmt.Sprintf("invalid message format: %v", err))
	}
	if err := msg.Validate(); err != nil {
		s.logger.Warn("invalid session message", "client_id", s.clientID, "error", err)
		return models.AgentError(fmt.Sprintf("invalid message format: %v", err))
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	s.lastMessage = &msg

	// Deterministic acknowledgement; the anchor point for richer dialogue
	// handling later.
	return models.AgentResponse("Received: " + msg.Message)
}

// Close moves the session to the disconnected state. Further inbound
// handling is a caller error; the session keeps no connection resources.
func (s *Session) Close() {
	s.state = StateDisconnected
}
