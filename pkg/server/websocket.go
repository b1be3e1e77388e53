package server

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// ReadLoop continuously reads messages from the WebSocket connection.
// It decodes frames, answers pings, and queues events.
// This method blocks until the connection is closed or an error occurs.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.metrics.RecordWebSocketError("read")
			}
			return
		}
		s.touch(len(msg))

		frame, err := DecodeClientFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.sendError(CodeInvalidFrame, "invalid frame")
			continue
		}

		switch frame.Type {
		case FramePing:
			s.sendFrame(controlFrame{Type: FramePong})

		case FrameEvent:
			s.handleEventFrame(frame)
		}
	}
}

// handleEventFrame applies the rate limit and queues the event.
func (s *Session) handleEventFrame(frame ClientFrame) {
	if !s.allowEvent() {
		s.logger.Debug("event rate limited", "hid", frame.HID, "event", frame.Event)
		s.metrics.RecordDropped("rate_limited")
		s.sendError(CodeRateLimited, "too many events")
		return
	}

	event := &Event{HID: frame.HID, Name: frame.Event, Value: frame.Value, Seq: frame.Seq}
	if err := s.QueueEvent(event); err != nil {
		s.sendError(CodeQueueFull, "event queue full")
	}
}

// WriteLoop sends heartbeat pings until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				s.logger.Debug("ping failed", "error", err)
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

func (s *Session) sendPing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() || s.conn == nil {
		return ErrSessionClosed
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
}

func (s *Session) sendError(code, message string) {
	s.sendFrame(ErrorFrame{Type: FrameError, Code: code, Message: message})
}

// sendFrame writes v as a JSON text message. A write failure closes the
// session.
func (s *Session) sendFrame(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("frame encode error", "error", err)
		return
	}

	s.mu.Lock()
	if s.closed.Load() || s.conn == nil {
		s.mu.Unlock()
		return
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	err = s.conn.WriteMessage(websocket.TextMessage, data)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("write error", "error", err)
		s.metrics.RecordWebSocketError("write")
		s.Close()
		return
	}
	s.bytesSent.Add(uint64(len(data)))
}
