package server

import (
	"context"
	"log/slog"
	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/sink"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// handleWebSocket serves one connection: a read loop feeding the
// orchestrator in frame order, and a write pump draining the outbox.
func (s *Server) handleWebSocket(conn *websocket.Conn) {
	connID := domain.ConnID(uuid.NewString())
	log := s.log.With("conn", connID)
	outbox := sink.NewConnectionSink(s.config.ConnectionBufferSize)
	s.orchestrator.Connect(connID, outbox)
	log.Info("WebSocket connected", "remote", conn.RemoteAddr().String())

	written := make(chan struct{})
	go func() {
		defer close(written)
		s.writePump(conn, outbox, log)
	}()

	s.readLoop(conn, connID, outbox, log)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
	defer cancel()
	if err := s.orchestrator.Handle(ctx, connID, domain.DisconnectCommand{}); err != nil {
		log.Debug("Disconnect failed", "error", err)
	}
	// Disconnect closed the outbox, the pump flushes and returns
	<-written
	log.Info("WebSocket disconnected")
}

func (s *Server) readLoop(conn *websocket.Conn, connID domain.ConnID, outbox *sink.ConnectionSink, log *slog.Logger) {
	pongWait := 2 * s.config.PingInterval
	if s.config.MaxMessageSize > 0 {
		conn.SetReadLimit(s.config.MaxMessageSize)
	}
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read error", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		cmd, err := DecodeCommand(raw)
		if err != nil {
			log.Debug("Frame dropped", "error", err)
			outbox.Send(event.NewError(err))
			continue
		}
		if err := s.orchestrator.Handle(context.Background(), connID, cmd); err != nil {
			log.Debug("Command rejected", "event", cmd.Kind(), "error", err)
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, outbox *sink.ConnectionSink, log *slog.Logger) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case out, ok := <-outbox.Out():
			_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(out); err != nil {
				log.Debug("WebSocket write failed", "event", out.Event, "error", err)
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("WebSocket ping failed", "error", err)
				_ = conn.Close()
				return
			}
		}
	}
}
