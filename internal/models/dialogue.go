package models

import (
	"fmt"
	"time"
)

// DialogueSender identifies who authored a dialogue message.
type DialogueSender string

const (
	SenderAgent DialogueSender = "agent"
	SenderUser  DialogueSender = "user"
)

// DialogueType classifies a dialogue message.
type DialogueType string

const (
	DialogueQuestion    DialogueType = "question"
	DialogueInstruction DialogueType = "instruction"
	DialogueResponse    DialogueType = "response"
	DialogueError       DialogueType = "error"
)

// DialogueMessage is one turn in the agent/user session channel.
type DialogueMessage struct {
	Sender           DialogueSender `json:"sender"`
	Message          string         `json:"message"`
	Timestamp        time.Time      `json:"timestamp"`
	MessageType      DialogueType   `json:"message_type"`
	RequiresResponse bool           `json:"requires_response"`
}

// Validate checks the message shape. A zero timestamp is tolerated; the
// session fills it in on receipt.
func (m DialogueMessage) Validate() error {
	switch m.Sender {
	case SenderAgent, SenderUser:
	case "":
		return fmt.Errorf("missing sender")
	default:
		return fmt.Errorf("unknown sender %q", m.Sender)
	}

	switch m.MessageType {
	case DialogueQuestion, DialogueInstruction, DialogueResponse, DialogueError:
	case "":
		return fmt.Errorf("missing message_type")
	default:
		return fmt.Errorf("unknown message_type %q", m.MessageType)
	}

	if m.Message == "" {
		return fmt.Errorf("empty message")
	}
	return nil
}

// AgentResponse builds an agent response message with the current timestamp.
func AgentResponse(text string) DialogueMessage {
	return DialogueMessage{
		Sender:      SenderAgent,
		Message:     text,
		Timestamp:   time.Now().UTC(),
		MessageType: DialogueResponse,
	}
}

// AgentError builds an agent error message with the current timestamp.
func AgentError(text string) DialogueMessage {
	return DialogueMessage{
		Sender:      SenderAgent,
		Message:     text,
		Timestamp:   time.Now().UTC(),
		MessageType: DialogueError,
	}
}
