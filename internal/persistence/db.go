// Package persistence provides SQLite-based storage of piece positions.
// The board itself is regenerated from config on every start.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexboard/internal/world"
)

// Meta keys written by SaveBoardState.
const (
	MetaVersion = "table_version"
	MetaSavedAt = "saved_at"
	MetaLayout  = "layout_fingerprint"
)

// DB wraps a SQLite connection for board state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path, creating its
// parent directory if needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Drops and autosave write from different goroutines; one connection
	// serializes them instead of surfacing SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Pragma reads a single SQLite pragma value, e.g. "journal_mode".
func (db *DB) Pragma(name string) (string, error) {
	var v string
	err := db.conn.Get(&v, "PRAGMA "+name)
	return v, err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pieces (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		color INTEGER NOT NULL,
		pos_q INTEGER,
		pos_r INTEGER,
		home_q INTEGER,
		home_r INTEGER
	);

	CREATE TABLE IF NOT EXISTS moves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		piece_id TEXT NOT NULL,
		from_q INTEGER,
		from_r INTEGER,
		to_q INTEGER NOT NULL,
		to_r INTEGER NOT NULL,
		moved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS board_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_moves_piece ON moves(piece_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type pieceRow struct {
	ID    string        `db:"id"`
	Seq   int           `db:"seq"`
	Kind  string        `db:"kind"`
	Color int64         `db:"color"`
	PosQ  sql.NullInt64 `db:"pos_q"`
	PosR  sql.NullInt64 `db:"pos_r"`
	HomeQ sql.NullInt64 `db:"home_q"`
	HomeR sql.NullInt64 `db:"home_r"`
}

func nullCoord(c *world.HexCoord) (q, r sql.NullInt64) {
	if c == nil {
		return q, r
	}
	return sql.NullInt64{Int64: int64(c.Q), Valid: true}, sql.NullInt64{Int64: int64(c.R), Valid: true}
}

func coordOf(q, r sql.NullInt64) *world.HexCoord {
	if !q.Valid || !r.Valid {
		return nil
	}
	return &world.HexCoord{Q: int(q.Int64), R: int(r.Int64)}
}

// SavePieces writes all pieces to the database (full replace).
func (db *DB) SavePieces(pieces []*world.Piece) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pieces"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO pieces
		(id, seq, kind, color, pos_q, pos_r, home_q, home_r)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range pieces {
		posQ, posR := nullCoord(p.Coord)
		homeQ, homeR := nullCoord(p.Home)
		if _, err := stmt.Exec(p.ID, i, string(p.Kind), int64(p.Color), posQ, posR, homeQ, homeR); err != nil {
			return fmt.Errorf("insert piece %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// LoadPieces reads all pieces in their saved order.
func (db *DB) LoadPieces() ([]*world.Piece, error) {
	var rows []pieceRow
	if err := db.conn.Select(&rows, "SELECT * FROM pieces ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load pieces: %w", err)
	}

	pieces := make([]*world.Piece, 0, len(rows))
	for _, row := range rows {
		pieces = append(pieces, &world.Piece{
			ID:    row.ID,
			Kind:  world.PieceKind(row.Kind),
			Color: uint32(row.Color),
			Coord: coordOf(row.PosQ, row.PosR),
			Home:  coordOf(row.HomeQ, row.HomeR),
		})
	}
	return pieces, nil
}

// HasState reports whether a previous session saved any pieces.
func (db *DB) HasState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM pieces"); err != nil {
		return false
	}
	return count > 0
}

// Move is one landed drop.
type Move struct {
	PieceID string          `json:"piece_id"`
	From    *world.HexCoord `json:"from,omitempty"`
	To      world.HexCoord  `json:"to"`
	At      time.Time       `json:"at"`
}

type moveRow struct {
	PieceID string        `db:"piece_id"`
	FromQ   sql.NullInt64 `db:"from_q"`
	FromR   sql.NullInt64 `db:"from_r"`
	ToQ     int           `db:"to_q"`
	ToR     int           `db:"to_r"`
	MovedAt int64         `db:"moved_at"`
}

// RecordMove appends a drop to the move history.
func (db *DB) RecordMove(m Move) error {
	fromQ, fromR := nullCoord(m.From)
	_, err := db.conn.Exec(
		"INSERT INTO moves (piece_id, from_q, from_r, to_q, to_r, moved_at) VALUES (?, ?, ?, ?, ?, ?)",
		m.PieceID, fromQ, fromR, m.To.Q, m.To.R, m.At.UnixMilli(),
	)
	return err
}

// RecentMoves returns the most recent N moves, newest first.
func (db *DB) RecentMoves(limit int) ([]Move, error) {
	var rows []moveRow
	err := db.conn.Select(&rows,
		"SELECT piece_id, from_q, from_r, to_q, to_r, moved_at FROM moves ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	moves := make([]Move, 0, len(rows))
	for _, row := range rows {
		moves = append(moves, Move{
			PieceID: row.PieceID,
			From:    coordOf(row.FromQ, row.FromR),
			To:      world.HexCoord{Q: row.ToQ, R: row.ToR},
			At:      time.UnixMilli(row.MovedAt),
		})
	}
	return moves, nil
}

// ClearMoves drops the move history, e.g. after a reset.
func (db *DB) ClearMoves() error {
	_, err := db.conn.Exec("DELETE FROM moves")
	return err
}

// SaveMeta stores a key-value pair in board metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO board_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. A missing key yields sql.ErrNoRows.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM board_meta WHERE key = ?", key)
	return value, err
}

// SaveBoardState performs a full save of piece positions plus bookkeeping.
func (db *DB) SaveBoardState(pieces []*world.Piece, version uint64, at time.Time) error {
	slog.Debug("saving board state", "pieces", len(pieces), "version", version)

	if err := db.SavePieces(pieces); err != nil {
		return fmt.Errorf("save pieces: %w", err)
	}
	if err := db.SaveMeta(MetaVersion, strconv.FormatUint(version, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta(MetaSavedAt, at.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}

// LastSaved returns when SaveBoardState last ran; ok is false if never.
func (db *DB) LastSaved() (t time.Time, ok bool) {
	v, err := db.GetMeta(MetaSavedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("read last save time", "error", err)
		}
		return time.Time{}, false
	}
	t, err = time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PruneMoves keeps only the newest keep moves and returns how many were removed.
func (db *DB) PruneMoves(keep int) (int64, error) {
	res, err := db.conn.Exec(
		"DELETE FROM moves WHERE id NOT IN (SELECT id FROM moves ORDER BY id DESC LIMIT ?)",
		keep,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
