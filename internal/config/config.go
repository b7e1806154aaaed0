// Package config loads the board server settings from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexboard/internal/world"
)

// DefaultPath is read when neither the flag nor HEXBOARD_CONFIG names a file.
const DefaultPath = "config/board.yaml"

// Config holds all server configuration.
type Config struct {
	Board    BoardConfig    `yaml:"board"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BoardConfig describes the board layout and geometry.
type BoardConfig struct {
	Layout        string                    `yaml:"layout"` // "literal" or "rings"
	Orientation   world.Orientation         `yaml:"orientation"`
	HexRadius     float64                   `yaml:"hex_radius"`
	MaxRing       int                       `yaml:"max_ring"` // rings layout only
	Seed          int64                     `yaml:"seed"`     // decoration noise
	Heights       map[world.Terrain]float64 `yaml:"heights"`  // overrides on top of the printed board
	DefaultHeight float64                   `yaml:"default_height"`
	PieceLift     float64                   `yaml:"piece_lift"`

	Cells  []world.LayoutEntry `yaml:"cells"`  // literal layout; empty means the printed board
	Rings  []world.RingPattern `yaml:"rings"`  // rings layout; empty means the default pond
	Pieces []world.PieceSpec   `yaml:"pieces"` // empty means the printed starting set
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	AdminKey     string   `yaml:"admin_key"`
	CORSOrigins  []string `yaml:"cors_origins"`
	ResetPerHour int      `yaml:"reset_per_hour"`
}

// DatabaseConfig holds the sqlite location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AutosaveConfig controls how often piece positions are written.
type AutosaveConfig struct {
	Interval  time.Duration `yaml:"interval"`
	KeepMoves int           `yaml:"keep_moves"` // move history rows kept by the sweep
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Locate picks the config path: the flag value, then HEXBOARD_CONFIG, then
// DefaultPath. explicit is false only for the fallback.
func Locate(flagPath string) (path string, explicit bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if env := os.Getenv("HEXBOARD_CONFIG"); env != "" {
		return env, true
	}
	return DefaultPath, false
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. With optional set, a missing file yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
		slog.Info("no config file, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration with environment overrides.
func Default() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

func defaults() *Config {
	return &Config{
		Board: BoardConfig{
			Layout:        string(world.PolicyLiteral),
			Orientation:   world.FlatTop,
			HexRadius:     50,
			MaxRing:       5,
			Seed:          42,
			DefaultHeight: world.DefaultCellHeight,
			PieceLift:     5,
		},
		Server: ServerConfig{
			Port:         8080,
			ResetPerHour: 10,
		},
		Database: DatabaseConfig{
			Path: "data/hexboard.db",
		},
		Autosave: AutosaveConfig{
			Interval:  time.Minute,
			KeepMoves: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func (c *Config) applyEnv() {
	if key := os.Getenv("HEXBOARD_ADMIN_KEY"); key != "" {
		c.Server.AdminKey = key
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, o)
			}
		}
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	b := c.Board
	if _, err := world.ParseLayoutPolicy(b.Layout); err != nil {
		return fmt.Errorf("board.layout: %w", err)
	}
	if _, err := world.NewLayout(b.Orientation, b.HexRadius); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if b.MaxRing < 0 {
		return fmt.Errorf("board.max_ring: must not be negative, got %d", b.MaxRing)
	}
	if math.IsNaN(b.PieceLift) || b.PieceLift < 0 {
		return fmt.Errorf("board.piece_lift: must not be negative, got %v", b.PieceLift)
	}
	for i, p := range b.Rings {
		if len(p.Terrains) == 0 {
			return fmt.Errorf("board.rings[%d]: no terrains", i)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: out of range: %d", c.Server.Port)
	}
	if c.Server.ResetPerHour <= 0 {
		return fmt.Errorf("server.reset_per_hour: must be positive, got %d", c.Server.ResetPerHour)
	}
	if c.Database.Path == "" {
		return errors.New("database.path: empty")
	}
	if c.Autosave.Interval < 0 {
		return fmt.Errorf("autosave.interval: must not be negative, got %s", c.Autosave.Interval)
	}
	if c.Autosave.KeepMoves < 0 {
		return fmt.Errorf("autosave.keep_moves: must not be negative, got %d", c.Autosave.KeepMoves)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: want text or json, got %q", c.Logging.Format)
	}
	return nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return l, nil
}

// NewLogger builds the slog logger described by the logging section.
func (l LoggingConfig) NewLogger() *slog.Logger {
	level, err := ParseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// HexLayout returns the hex layout.
func (b BoardConfig) HexLayout() (world.Layout, error) {
	return world.NewLayout(b.Orientation, b.HexRadius)
}

// HeightTable returns the printed board's heights with configured overrides.
func (b BoardConfig) HeightTable() world.HeightTable {
	h := world.DefaultHeights()
	h.Default = b.DefaultHeight
	for t, v := range b.Heights {
		h.Heights[t] = v
	}
	return h
}

// GenConfig returns the layout generation parameters.
func (b BoardConfig) GenConfig() world.GenConfig {
	policy, _ := world.ParseLayoutPolicy(b.Layout)
	gen := world.DefaultGenConfig()
	gen.Policy = policy
	gen.Literal = b.Cells
	gen.Rings.MaxRing = b.MaxRing
	if len(b.Rings) > 0 {
		gen.Rings.Rings = b.Rings
	}
	return gen
}

// PieceSpecs returns the configured starting pieces.
func (b BoardConfig) PieceSpecs() []world.PieceSpec {
	if len(b.Pieces) > 0 {
		return b.Pieces
	}
	return world.InitialPieces()
}
