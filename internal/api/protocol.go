package api

import (
	"encoding/json"

	"github.com/talgya/hexboard/internal/world"
)

// Message types - Client → Server
const (
	MsgTypePick   = "pick"
	MsgTypeMove   = "move"
	MsgTypeDrop   = "drop"
	MsgTypeCancel = "cancel"
	MsgTypePing   = "ping"
)

// Message types - Server → Client
const (
	MsgTypeWelcome    = "welcome"
	MsgTypePicked     = "picked"
	MsgTypeHover      = "hover"
	MsgTypeDropped    = "dropped"
	MsgTypeReturned   = "returned"
	MsgTypePieceMoved = "piece_moved"
	MsgTypeBoardReset = "board_reset"
	MsgTypeError      = "error"
	MsgTypePong       = "pong"
)

// Error codes carried by ErrorPayload.
const (
	ErrCodeInvalidMessage  = "invalid_message"
	ErrCodeUnknownType     = "unknown_message_type"
	ErrCodePieceNotFound   = "piece_not_found"
	ErrCodeNotDragging     = "not_dragging"
	ErrCodeAlreadyDragging = "already_dragging"
	ErrCodeInternal        = "internal"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// --- Client Message Payloads ---

// PickPayload lifts a piece.
type PickPayload struct {
	PieceID string `json:"piece_id"`
}

// MovePayload is the pointer's ground-plane hit point.
type MovePayload struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent once after the socket opens.
type WelcomePayload struct {
	ClientID string      `json:"client_id"`
	Version  uint64      `json:"version"`
	Pieces   []PieceView `json:"pieces"`
}

// PickedPayload confirms a pick.
type PickedPayload struct {
	PieceID string          `json:"piece_id"`
	Origin  *world.HexCoord `json:"origin,omitempty"`
}

// HoverPayload tells the client which highlight to clear and which to set.
type HoverPayload struct {
	Prev      *world.HexCoord `json:"prev,omitempty"`
	Q         *int            `json:"q,omitempty"`
	R         *int            `json:"r,omitempty"`
	Elevation float64         `json:"elevation"`
	OffBoard  bool            `json:"off_board,omitempty"`
}

// PlacementPayload describes where a piece now rests. Used by dropped,
// returned and piece_moved.
type PlacementPayload struct {
	Piece    PieceView       `json:"piece"`
	From     *world.HexCoord `json:"from,omitempty"`
	To       *world.HexCoord `json:"to,omitempty"`
	ClientID string          `json:"client_id,omitempty"`
	Version  uint64          `json:"version"`
}

// BoardResetPayload carries every piece after a reset.
type BoardResetPayload struct {
	Version uint64      `json:"version"`
	Pieces  []PieceView `json:"pieces"`
}

// ErrorPayload reports a rejected client message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PongPayload answers a ping.
type PongPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// Position is a world-space point; y is up.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PieceView is a piece plus where the renderer should draw it.
type PieceView struct {
	ID       string          `json:"id"`
	Kind     world.PieceKind `json:"kind"`
	Color    string          `json:"color"`
	Coord    *world.HexCoord `json:"coord,omitempty"`
	Home     *world.HexCoord `json:"home,omitempty"`
	OnBoard  bool            `json:"on_board"`
	Position Position        `json:"position"`
}
