package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/contentd/internal/models"
)

// DialogueConn is a live WebSocket dialogue with the agent. Every sent
// message is answered with exactly one reply.
type DialogueConn struct {
	conn *websocket.Conn
}

// Dialogue opens a dialogue session under the given client identity. The
// agent's greeting is returned along with the connection.
func (c *Client) Dialogue(ctx context.Context, clientID string) (*DialogueConn, *models.DialogueMessage, error) {
	wsEndpoint := c.endpoint
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	u, err := url.Parse(wsEndpoint + "/api/ws/" + url.PathEscape(clientID))
	if err != nil {
		return nil, nil, fmt.Errorf("parse endpoint: %w", err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("websocket connect: %w", err)
	}

	var greeting models.DialogueMessage
	if err := conn.ReadJSON(&greeting); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("read greeting: %w", err)
	}

	return &DialogueConn{conn: conn}, &greeting, nil
}

// Send delivers one user message and returns the agent's reply.
func (d *DialogueConn) Send(text string, msgType models.DialogueType) (*models.DialogueMessage, error) {
	msg := models.DialogueMessage{
		Sender:      models.SenderUser,
		Message:     text,
		Timestamp:   time.Now().UTC(),
		MessageType: msgType,
	}
	if err := d.conn.WriteJSON(msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	var reply models.DialogueMessage
	if err := d.conn.ReadJSON(&reply); err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return &reply, nil
}

// Close ends the dialogue session.
func (d *DialogueConn) Close() error {
	_ = d.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return d.conn.Close()
}
