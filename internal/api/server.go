// Package api serves the board over HTTP and WebSocket.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
// Dragging pieces happens over /ws.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"github.com/talgya/hexboard/internal/engine"
	"github.com/talgya/hexboard/internal/interaction"
	"github.com/talgya/hexboard/internal/persistence"
	"github.com/talgya/hexboard/internal/world"
)

const (
	defaultMovesLimit = 50
	maxMovesLimit     = 500
)

// Server serves the board state over HTTP.
type Server struct {
	Table        *interaction.Table
	DB           *persistence.DB // Optional; nil disables saving and move history
	Eng          *engine.Engine  // Optional; reported by /status
	Policy       world.LayoutPolicy
	Decorations  map[world.HexCoord]world.Decoration
	Port         int
	AdminKey     string   // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins  []string // Added to the localhost dev origins
	ResetPerHour int

	initOnce     sync.Once
	hub          *Hub
	upgrader     websocket.Upgrader
	done         chan struct{}
	httpSrv      *http.Server
	startedAt    time.Time
	savedVersion atomic.Uint64
	saveMu       sync.Mutex
}

func (s *Server) init() {
	s.initOnce.Do(func() {
		s.hub = NewHub()
		s.done = make(chan struct{})
		s.startedAt = time.Now()
		s.upgrader = websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || s.allowedOrigins()[origin]
			},
		}
		if s.ResetPerHour <= 0 {
			s.ResetPerHour = 10
		}
	})
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	s.init()
	resetLimiter := NewRateLimiter(s.ResetPerHour, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/board", s.handleBoardRoutes)
	mux.HandleFunc("/api/v1/board/", s.handleBoardRoutes)
	mux.HandleFunc("/api/v1/resolve", s.handleResolve)
	mux.HandleFunc("/api/v1/pieces", s.handlePieces)
	mux.HandleFunc("/api/v1/moves", s.handleMoves)

	// Drag protocol.
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/reset", s.adminOnly(RateLimitMiddleware(resetLimiter, s.handleReset)))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(s.allowedOrigins(), mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	handler := s.Handler()
	addr := fmt.Sprintf(":%d", s.Port)
	s.httpSrv = &http.Server{Addr: addr, Handler: handler}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown closes every socket and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.init()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Clients returns the number of open sockets.
func (s *Server) Clients() int {
	s.init()
	return s.hub.Count()
}

// SaveState writes piece positions when the table changed since the last
// save, or unconditionally with force.
func (s *Server) SaveState(force bool) error {
	if s.DB == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	version := s.Table.Version()
	if !force && version == s.savedVersion.Load() {
		return nil
	}
	if err := s.DB.SaveBoardState(s.Table.Pieces(), version, time.Now()); err != nil {
		return err
	}
	s.savedVersion.Store(version)
	return nil
}

func (s *Server) allowedOrigins() map[string]bool {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range s.CORSOrigins {
		allowed[origin] = true
	}
	return allowed
}

// corsMiddleware adds CORS headers for allowed frontend origins.
func corsMiddleware(allowedOrigins map[string]bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a POST handler to require bearer token auth. Other methods
// are refused before next runs, so they never reach a rate limiter.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no HEXBOARD_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	layout := s.Table.Layout()
	pieces := s.Table.Pieces()
	onBoard := 0
	for _, p := range pieces {
		if p.OnBoard() {
			onBoard++
		}
	}

	var cells, maxRing int
	s.Table.ViewBoard(func(b *world.Board) {
		cells, maxRing = b.Len(), b.MaxRing()
	})

	lastSave := "never"
	if s.DB != nil {
		if t, ok := s.DB.LastSaved(); ok {
			lastSave = humanize.Time(t)
		}
	}

	status := map[string]any{
		"name":        "hexboard",
		"layout":      s.Policy,
		"orientation": layout.Orientation,
		"hex_radius":  layout.Radius,
		"cells":       cells,
		"max_ring":    maxRing,
		"pieces":      len(pieces),
		"on_board":    onBoard,
		"version":     s.Table.Version(),
		"clients":     s.Clients(),
		"started":     humanize.Time(s.startedAt),
		"last_save":   lastSave,
	}
	if s.Eng != nil {
		status["engine_tick"] = s.Eng.Tick()
		status["engine_running"] = s.Eng.Running()
	}
	writeJSON(w, status)
}

// cellView is a board cell as the renderer consumes it.
type cellView struct {
	Q          int               `json:"q"`
	R          int               `json:"r"`
	Key        string            `json:"key"`
	X          float64           `json:"x"`
	Z          float64           `json:"z"`
	Elevation  float64           `json:"elevation"`
	Terrain    world.Terrain     `json:"terrain"`
	Color      string            `json:"color"`
	Icon       world.Icon        `json:"icon,omitempty"`
	Ring       int               `json:"ring"`
	Occupant   string            `json:"occupant,omitempty"`
	Decoration *world.Decoration `json:"decoration,omitempty"`
}

func (s *Server) cellView(l world.Layout, c world.Cell) cellView {
	x, z := l.AxialToPixel(c.Coord)
	v := cellView{
		Q:         c.Coord.Q,
		R:         c.Coord.R,
		Key:       c.Coord.Key(),
		X:         x,
		Z:         z,
		Elevation: c.Elevation,
		Terrain:   c.Terrain,
		Color:     colorHex(world.TerrainColor(c.Terrain)),
		Icon:      c.Icon,
		Ring:      c.Ring,
		Occupant:  c.Occupant,
	}
	if d, ok := s.Decorations[c.Coord]; ok {
		v.Decoration = &d
	}
	return v
}

// handleBoardRoutes dispatches between the whole board (GET /api/v1/board)
// and cell detail (GET /api/v1/board/:q/:r).
func (s *Server) handleBoardRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/board")
	if path == "" || path == "/" {
		s.handleBoard(w, r)
		return
	}
	s.handleCellDetail(w, r)
}

// handleBoard returns every cell for the renderer.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	layout := s.Table.Layout()

	var cells []cellView
	var maxRing int
	s.Table.ViewBoard(func(b *world.Board) {
		cells = make([]cellView, 0, b.Len())
		for _, c := range b.Cells() {
			cells = append(cells, s.cellView(layout, c))
		}
		maxRing = b.MaxRing()
	})

	writeJSON(w, map[string]any{
		"layout":   layout,
		"policy":   s.Policy,
		"corners":  layout.Corners(),
		"max_ring": maxRing,
		"cells":    cells,
	})
}

// handleCellDetail returns one cell with its on-board neighbors.
func (s *Server) handleCellDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/board/:q/:r → parts[0]="" [1]="api" [2]="v1" [3]="board" [4]=q [5]=r
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/board/:q/:r", http.StatusBadRequest)
		return
	}
	q, err1 := strconv.Atoi(parts[4])
	rr, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	coord := world.HexCoord{Q: q, R: rr}
	layout := s.Table.Layout()

	var (
		found     bool
		cell      cellView
		neighbors []cellView
		pos       Position
	)
	s.Table.ViewBoard(func(b *world.Board) {
		c, ok := b.Get(coord)
		if !ok {
			return
		}
		found = true
		cell = s.cellView(layout, c)
		for _, n := range b.Neighbors(coord) {
			neighbors = append(neighbors, s.cellView(layout, n))
		}
		pos.X, pos.Y, pos.Z, _ = b.WorldPosition(layout, coord)
	})
	if !found {
		http.Error(w, "hex not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]any{
		"cell":      cell,
		"neighbors": neighbors,
		"position":  pos,
	})
}

// handleResolve maps a ground-plane point to the cell under it.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	z, errZ := strconv.ParseFloat(r.URL.Query().Get("z"), 64)
	if errX != nil || errZ != nil || !finite(x) || !finite(z) {
		http.Error(w, "usage: /api/v1/resolve?x=&z= (finite numbers)", http.StatusBadRequest)
		return
	}

	target, ok := s.Table.Resolve(x, z)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"off_board": true,
			"nearest":   target.Coord,
		})
		return
	}
	writeJSON(w, map[string]any{
		"coord": target.Coord,
		"cell":  s.cellView(s.Table.Layout(), target.Cell),
	})
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func colorHex(c uint32) string {
	return fmt.Sprintf("#%06x", c&0xFFFFFF)
}

func (s *Server) pieceView(p *world.Piece, x, y, z float64) PieceView {
	return PieceView{
		ID:       p.ID,
		Kind:     p.Kind,
		Color:    colorHex(p.Color),
		Coord:    p.Coord,
		Home:     p.Home,
		OnBoard:  p.OnBoard(),
		Position: Position{X: x, Y: y, Z: z},
	}
}

func (s *Server) pieceViews() []PieceView {
	pieces := s.Table.Pieces()
	views := make([]PieceView, 0, len(pieces))
	for _, p := range pieces {
		x, y, z, err := s.Table.RestingPosition(p.ID)
		if err != nil {
			continue
		}
		views = append(views, s.pieceView(p, x, y, z))
	}
	return views
}

func (s *Server) handlePieces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"version": s.Table.Version(),
		"pieces":  s.pieceViews(),
	})
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := defaultMovesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxMovesLimit)
	}
	moves, err := s.DB.RecentMoves(limit)
	if err != nil {
		slog.Error("load moves failed", "error", err)
		http.Error(w, "failed to load moves", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"moves": moves})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Table.Reset()
	if s.DB != nil {
		if err := s.DB.ClearMoves(); err != nil {
			slog.Error("clear moves failed", "error", err)
		}
	}
	if err := s.SaveState(true); err != nil {
		slog.Error("save after reset failed", "error", err)
	}

	reset := BoardResetPayload{Version: s.Table.Version(), Pieces: s.pieceViews()}
	s.hub.Broadcast(&ServerMessage{Type: MsgTypeBoardReset, Payload: reset})
	slog.Info("board reset", "pieces", len(reset.Pieces), "clients", s.hub.Count())

	writeJSON(w, reset)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.SaveState(true); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"version": s.Table.Version(),
		"message": "snapshot saved",
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := NewConnection(ws, s)
	slog.Info("websocket connected", "client", conn.ID(), "remote", r.RemoteAddr)
	conn.Handle()
	slog.Info("websocket disconnected", "client", conn.ID())
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
