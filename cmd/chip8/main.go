package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/timing"
	"golang.org/x/term"
)

const (
	backendTerminal = "terminal"
	backendSDL2     = "sdl2"
	backendHeadless = "headless"
)

func main() {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 interpreter"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Output backend: terminal, sdl2 or headless",
			Value: backendTerminal,
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save PNG snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.IntFlag{
			Name:  "speed",
			Usage: "Instructions executed per 60Hz frame",
			Value: chip8.DefaultStepsPerFrame,
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for the random number instruction (0 = random)",
		},
		cli.IntFlag{
			Name:  "max-faults",
			Usage: "Stop after this many CPU faults (0 = never)",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window pixels per CHIP-8 pixel (sdl2 only)",
			Value: 10,
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging, including an instruction trace",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

type options struct {
	romPath          string
	backend          string
	frames           int
	snapshotInterval int
	snapshotDir      string
	stepsPerFrame    int
	seed             uint64
	maxFaults        int
	scale            int
	debug            bool
}

func optionsFromContext(c *cli.Context) options {
	opts := options{
		romPath:          c.String("rom"),
		backend:          c.String("backend"),
		frames:           c.Int("frames"),
		snapshotInterval: c.Int("snapshot-interval"),
		snapshotDir:      c.String("snapshot-dir"),
		stepsPerFrame:    c.Int("speed"),
		seed:             c.Uint64("seed"),
		maxFaults:        c.Int("max-faults"),
		scale:            c.Int("scale"),
		debug:            c.Bool("debug"),
	}
	if opts.romPath == "" && c.NArg() > 0 {
		opts.romPath = c.Args().Get(0)
	}
	return opts
}

func (o options) validate(isTerminal bool) error {
	if o.romPath == "" {
		return errors.New("no ROM path provided")
	}
	if o.stepsPerFrame <= 0 {
		return fmt.Errorf("speed must be positive, got %d", o.stepsPerFrame)
	}
	if o.maxFaults < 0 {
		return fmt.Errorf("max-faults cannot be negative, got %d", o.maxFaults)
	}

	switch o.backend {
	case backendHeadless:
		if o.frames <= 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}
		if o.snapshotInterval < 0 {
			return fmt.Errorf("snapshot-interval cannot be negative, got %d", o.snapshotInterval)
		}
	case backendTerminal:
		if !isTerminal {
			return errors.New("terminal backend requires an interactive terminal, use --backend headless")
		}
	case backendSDL2:
	default:
		return fmt.Errorf("unknown backend %q", o.backend)
	}

	return nil
}

func (o options) config() chip8.Config {
	return chip8.Config{
		StepsPerFrame: o.stepsPerFrame,
		Seed:          o.seed,
		MaxFaults:     o.maxFaults,
	}
}

// newBackend creates the selected backend with its frame limiter. Headless
// runs as fast as possible.
func newBackend(o options, romName string) (backend.Backend, timing.Limiter, error) {
	switch o.backend {
	case backendHeadless:
		snapshotConfig, err := headless.CreateSnapshotConfig(o.snapshotInterval, o.snapshotDir, romName)
		if err != nil {
			return nil, nil, err
		}
		return headless.New(o.frames, snapshotConfig), timing.NewNoOpLimiter(), nil
	case backendSDL2:
		return sdl2.New(), timing.NewAdaptiveLimiter(), nil
	case backendTerminal:
		return terminal.New(), timing.NewTickerLimiter(), nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", o.backend)
	}
}

func runEmulator(c *cli.Context) error {
	opts := optionsFromContext(c)

	if opts.debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := opts.validate(term.IsTerminal(int(os.Stdout.Fd()))); err != nil {
		if opts.romPath == "" {
			cli.ShowAppHelp(c)
		}
		return err
	}

	emu, err := chip8.NewWithFile(opts.romPath, opts.config())
	if err != nil {
		return err
	}
	slog.Info("Machine ready", "rom", emu.ROM().Name(), "seed", emu.Seed(), "steps_per_frame", opts.stepsPerFrame)

	b, limiter, err := newBackend(opts, emu.ROM().Name())
	if err != nil {
		return err
	}
	if stopper, ok := limiter.(interface{ Stop() }); ok {
		defer stopper.Stop()
	}

	if err := b.Init(backend.BackendConfig{
		Title: emu.ROM().Name(),
		Scale: opts.scale,
		Debug: opts.debug,
	}); err != nil {
		return err
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			slog.Error("Backend cleanup failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := chip8.Run(ctx, emu, b, limiter); err != nil {
		return err
	}

	slog.Info("Emulation finished", "frames", emu.GetFrameCount(), "instructions", emu.GetInstructionCount(), "faults", emu.GetFaultCount())
	return nil
}
