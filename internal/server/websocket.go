package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/contentd/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and runs the dialogue loop for one
// session. Messages are processed strictly in order: each inbound message is
// answered before the next is read.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("client_id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "client_id", clientID, "error", err)
		return
	}
	defer conn.Close()

	sess := s.sessions.Connect(clientID)
	defer s.sessions.Disconnect(sess)

	greeting := models.DialogueMessage{
		Sender:           models.SenderAgent,
		Message:          "What information would you like to retrieve, and from which URL?",
		Timestamp:        time.Now().UTC(),
		MessageType:      models.DialogueQuestion,
		RequiresResponse: true,
	}
	if err := conn.WriteJSON(greeting); err != nil {
		s.logger.Warn("websocket greeting failed", "client_id", clientID, "error", err)
		return
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read ended", "client_id", clientID, "error", err)
			}
			return
		}

		out := sess.HandleInbound(raw)
		if err := conn.WriteJSON(out); err != nil {
			s.logger.Warn("websocket write failed", "client_id", clientID, "error", err)
			return
		}
	}
}
