package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/kapitanov/chip8/internal/hal"
)

const (
	BackendSDL      = "sdl"
	BackendTerminal = "term"
	BackendEbiten   = "ebiten"
)

var ErrInvalid = errors.New("invalid config")

// Config holds host settings. Keys absent from the file keep the defaults.
type Config struct {
	Backend    string `toml:"backend"`
	Steps      int    `toml:"steps"`      // Instructions per frame
	FPS        int    `toml:"fps"`        // Frames per second, also the timer rate
	Scale      int    `toml:"scale"`      // Window pixels per CHIP-8 pixel
	Foreground string `toml:"foreground"` // Colour name or #rrggbb
	Background string `toml:"background"`
	Pixel      string `toml:"pixel"` // Terminal glyph for one pixel
	LogFile    string `toml:"log_file"`
}

func Default() Config {
	return Config{
		Backend:    BackendSDL,
		Steps:      10,
		FPS:        60,
		Scale:      16,
		Foreground: "#bea700",
		Background: "black",
		Pixel:      "█",
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config %q: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %q", ErrInvalid, undecoded[0].String(), path)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendSDL, BackendTerminal, BackendEbiten:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}

	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	}

	if c.FPS <= 0 || c.FPS > 1000 {
		return fmt.Errorf("%w: fps must be within 1..1000, got %d", ErrInvalid, c.FPS)
	}

	if c.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %d", ErrInvalid, c.Scale)
	}

	if c.Pixel == "" {
		return fmt.Errorf("%w: pixel must not be empty", ErrInvalid)
	}

	if _, err := hal.ParseColor(c.Foreground); err != nil {
		return fmt.Errorf("%w: foreground: %w", ErrInvalid, err)
	}

	if _, err := hal.ParseColor(c.Background); err != nil {
		return fmt.Errorf("%w: background: %w", ErrInvalid, err)
	}

	return nil
}
