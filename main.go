package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kapitanov/chip8/internal/config"
	"github.com/kapitanov/chip8/internal/emulator"
	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/hal/ebitenhal"
	"github.com/kapitanov/chip8/internal/hal/sdlhal"
	"github.com/kapitanov/chip8/internal/hal/termhal"
	"github.com/kapitanov/chip8/internal/vm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	cmd := newRootCommand()

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	verbose := cmd.Flags().BoolP("verbose", "v", false, "enable verbose logging")
	logFile := cmd.Flags().String("log-file", "", "write logs to file (always on for the terminal backend)")
	configPath := cmd.Flags().StringP("config", "c", "", "path to TOML config file")

	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringP("backend", "b", defaults.Backend, "host backend: sdl, term or ebiten")
	flags.Int("steps", defaults.Steps, "instructions per frame")
	flags.Int("fps", defaults.FPS, "frames per second")
	flags.Int("scale", defaults.Scale, "window scale factor")
	flags.String("fg", defaults.Foreground, "foreground colour")
	flags.String("bg", defaults.Background, "background colour")
	flags.String("pixel", defaults.Pixel, "terminal pixel glyph")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(*configPath, cmd.Flags())
		if err != nil {
			return err
		}
		if *logFile != "" {
			cfg.LogFile = *logFile
		}

		closeLog, err := setupLogger(cfg, *verbose)
		if err != nil {
			return err
		}
		defer closeLog()

		path := args[0]
		bs, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to load file %q: %w", path, err)
		}

		emu := emulator.New(vm.New(), bs, cfg.Steps)

		err = run(cfg, emu)
		if errors.Is(err, hal.ErrQuit) {
			return nil
		}

		return err
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "disasm PATH_TO_ROM_FILE",
		Short: "Print disassembly of a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			bs, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("unable to load file %q: %w", path, err)
			}

			return vm.Disassemble(cmd.OutOrStdout(), bs)
		},
	})

	return cmd
}

// loadConfig layers explicitly set flags over the config file over the
// defaults.
func loadConfig(path string, flags *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}

	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}

		switch f.Name {
		case "backend":
			cfg.Backend, err = flags.GetString(f.Name)
		case "steps":
			cfg.Steps, err = flags.GetInt(f.Name)
		case "fps":
			cfg.FPS, err = flags.GetInt(f.Name)
		case "scale":
			cfg.Scale, err = flags.GetInt(f.Name)
		case "fg":
			cfg.Foreground, err = flags.GetString(f.Name)
		case "bg":
			cfg.Background, err = flags.GetString(f.Name)
		case "pixel":
			cfg.Pixel, err = flags.GetString(f.Name)
		}
		if err != nil {
			err = fmt.Errorf("invalid flag --%s: %w", f.Name, err)
		}
	})
	if err != nil {
		return config.Config{}, err
	}

	return cfg, cfg.Validate()
}

// setupLogger installs the default logger. The terminal backend owns
// stdout and stderr, so its logs go to the log file or nowhere.
func setupLogger(cfg config.Config, verbose bool) (func(), error) {
	loggerOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if verbose {
		loggerOpts.Level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file %q: %w", cfg.LogFile, err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case cfg.Backend == config.BackendTerminal:
		w = io.Discard
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, loggerOpts)))
	return closeFn, nil
}

func run(cfg config.Config, emu *emulator.Emulator) error {
	fg, err := hal.ParseColor(cfg.Foreground)
	if err != nil {
		return err
	}
	bg, err := hal.ParseColor(cfg.Background)
	if err != nil {
		return err
	}

	switch cfg.Backend {
	case config.BackendTerminal:
		h, err := termhal.New(termhal.Options{FPS: cfg.FPS, Pixel: cfg.Pixel, Foreground: fg, Background: bg})
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		return emu.Run(h)

	case config.BackendEbiten:
		h := ebitenhal.New(ebitenhal.Options{Scale: cfg.Scale, FPS: cfg.FPS, Foreground: fg, Background: bg})
		if err := emu.Boot(); err != nil {
			return err
		}

		return h.Run(func() error { return emu.Step(h) })

	default:
		h, err := sdlhal.New(sdlhal.Options{Scale: cfg.Scale, FPS: cfg.FPS, Foreground: fg, Background: bg})
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		return emu.Run(h)
	}
}
