package server

import (
	"encoding/json"
	"fmt"
)

// Frame types.
const (
	FrameEvent  = "event"
	FramePing   = "ping"
	FramePong   = "pong"
	FrameRender = "render"
	FrameError  = "error"
)

// Error codes sent in error frames.
const (
	CodeInvalidFrame = "invalid_frame"
	CodeRateLimited  = "rate_limited"
	CodeQueueFull    = "queue_full"
	CodeHandlerError = "handler_error"
)

// ClientFrame is a message received from the browser.
type ClientFrame struct {
	Type  string `json:"t"`
	HID   string `json:"hid,omitempty"`
	Event string `json:"ev,omitempty"`
	Value string `json:"v,omitempty"`
	Seq   uint64 `json:"seq,omitempty"`
}

// RenderFrame carries the full HTML of the root.
type RenderFrame struct {
	Type string `json:"t"`
	HTML string `json:"html"`
	Seq  uint64 `json:"seq"`
}

// ErrorFrame reports a problem with a client message.
type ErrorFrame struct {
	Type    string `json:"t"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type controlFrame struct {
	Type string `json:"t"`
}

// DecodeClientFrame parses and validates a client message.
func DecodeClientFrame(data []byte) (ClientFrame, error) {
	var f ClientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return ClientFrame{}, fmt.Errorf("server: decode frame: %w", err)
	}
	switch f.Type {
	case FrameEvent:
		if f.HID == "" || f.Event == "" {
			return ClientFrame{}, fmt.Errorf("server: event frame missing hid or ev")
		}
	case FramePing:
	default:
		return ClientFrame{}, fmt.Errorf("server: unknown frame type %q", f.Type)
	}
	return f, nil
}
