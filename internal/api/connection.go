package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hexboard/internal/interaction"
	"github.com/talgya/hexboard/internal/persistence"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Connection is one browser socket and its drag gesture.
type Connection struct {
	ws      *websocket.Conn
	server  *Server
	session *interaction.Session

	// Buffered channel for outbound messages
	send chan []byte
}

// NewConnection creates a connection with an idle drag session.
func NewConnection(ws *websocket.Conn, server *Server) *Connection {
	return &Connection{
		ws:      ws,
		server:  server,
		session: interaction.NewSession(server.Table),
		send:    make(chan []byte, 256),
	}
}

// ID returns the client identifier shared with the drag session.
func (c *Connection) ID() string {
	return c.session.ID
}

// Handle manages the connection lifecycle. It blocks until the peer leaves.
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.server.hub.add(c)
	c.SendMessage(&ServerMessage{
		Type: MsgTypeWelcome,
		Payload: WelcomePayload{
			ClientID: c.ID(),
			Version:  c.server.Table.Version(),
			Pieces:   c.server.pieceViews(),
		},
	})

	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection to the session.
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "client", c.ID(), "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendError(ErrCodeInvalidMessage, "failed to parse message")
			continue
		}
		c.handleMessage(&msg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Warn("websocket write error", "client", c.ID(), "error", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.server.done:
			return
		}
	}
}

// handleMessage routes messages to the drag session.
func (c *Connection) handleMessage(msg *ClientMessage) {
	switch msg.Type {
	case MsgTypePick:
		c.handlePick(msg.Payload)
	case MsgTypeMove:
		c.handleMove(msg.Payload)
	case MsgTypeDrop:
		c.handleDrop()
	case MsgTypeCancel:
		c.handleCancel()
	case MsgTypePing:
		c.SendMessage(&ServerMessage{
			Type:    MsgTypePong,
			Payload: PongPayload{Timestamp: time.Now().Unix()},
		})
	default:
		c.SendError(ErrCodeUnknownType, "unknown message type: "+msg.Type)
	}
}

func (c *Connection) handlePick(payload json.RawMessage) {
	var p PickPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.PieceID == "" {
		c.SendError(ErrCodeInvalidMessage, "pick needs a piece_id")
		return
	}
	piece, err := c.session.Pick(p.PieceID)
	if err != nil {
		c.sendSessionError(err)
		return
	}
	c.SendMessage(&ServerMessage{
		Type:    MsgTypePicked,
		Payload: PickedPayload{PieceID: piece.ID, Origin: piece.Coord},
	})
}

func (c *Connection) handleMove(payload json.RawMessage) {
	var p MovePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.SendError(ErrCodeInvalidMessage, "move needs x and z")
		return
	}
	h, err := c.session.Move(p.X, p.Z)
	if err != nil {
		c.sendSessionError(err)
		return
	}
	if !h.Changed {
		return
	}

	hover := HoverPayload{Prev: h.Prev, OffBoard: h.Curr == nil}
	if h.Curr != nil {
		q, r := h.Curr.Q, h.Curr.R
		hover.Q, hover.R = &q, &r
		hover.Elevation = h.Cell.Elevation
	}
	c.SendMessage(&ServerMessage{Type: MsgTypeHover, Payload: hover})
}

func (c *Connection) handleDrop() {
	res, err := c.session.Drop()
	if err != nil {
		c.sendSessionError(err)
		return
	}
	if !res.Snapped {
		c.sendReturned(res)
		return
	}

	if c.server.DB != nil {
		move := persistence.Move{PieceID: res.Piece.ID, From: res.From, To: *res.To, At: time.Now()}
		if err := c.server.DB.RecordMove(move); err != nil {
			slog.Error("record move failed", "piece", res.Piece.ID, "error", err)
		}
	}

	placement := PlacementPayload{
		Piece:    c.server.pieceView(res.Piece, res.X, res.Y, res.Z),
		From:     res.From,
		To:       res.To,
		ClientID: c.ID(),
		Version:  c.server.Table.Version(),
	}
	c.SendMessage(&ServerMessage{Type: MsgTypeDropped, Payload: placement})
	c.server.hub.BroadcastExcept(c, &ServerMessage{Type: MsgTypePieceMoved, Payload: placement})
	slog.Debug("piece dropped", "client", c.ID(), "piece", res.Piece.ID, "to", res.To.Key())
}

func (c *Connection) handleCancel() {
	res, err := c.session.Cancel()
	if err != nil {
		c.sendSessionError(err)
		return
	}
	c.sendReturned(res)
}

func (c *Connection) sendReturned(res interaction.DropResult) {
	c.SendMessage(&ServerMessage{
		Type: MsgTypeReturned,
		Payload: PlacementPayload{
			Piece:   c.server.pieceView(res.Piece, res.X, res.Y, res.Z),
			From:    res.From,
			Version: c.server.Table.Version(),
		},
	})
}

func (c *Connection) sendSessionError(err error) {
	switch {
	case errors.Is(err, interaction.ErrPieceNotFound):
		c.SendError(ErrCodePieceNotFound, err.Error())
	case errors.Is(err, interaction.ErrNotDragging):
		c.SendError(ErrCodeNotDragging, err.Error())
	case errors.Is(err, interaction.ErrAlreadyDragging):
		c.SendError(ErrCodeAlreadyDragging, err.Error())
	default:
		slog.Error("drag session error", "client", c.ID(), "error", err)
		c.SendError(ErrCodeInternal, "internal error")
	}
}

func encodeMessage(msg *ServerMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal message", "type", msg.Type, "error", err)
		return nil, err
	}
	return data, nil
}

// SendMessage sends a message to the client.
func (c *Connection) SendMessage(msg *ServerMessage) {
	data, err := encodeMessage(msg)
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *Connection) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("send buffer full, dropping message", "client", c.ID())
	}
}

// SendError sends an error message to the client.
func (c *Connection) SendError(code, message string) {
	c.SendMessage(&ServerMessage{
		Type:    MsgTypeError,
		Payload: ErrorPayload{Code: code, Message: message},
	})
}

// Close abandons any drag in progress and releases the socket.
func (c *Connection) Close() {
	if c.session.State() == interaction.StateDragging {
		c.session.Cancel()
	}
	c.server.hub.remove(c)
	c.ws.Close()
}
