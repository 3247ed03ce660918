package chip8

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/timing"
)

// Run drives emu until ctx is cancelled, the backend reports a quit or the
// emulator fails. The backend must already be initialized, cleaning it up is
// left to the caller.
//
// Each iteration runs one frame, hands it to the backend, routes the
// returned input events and waits for the limiter.
func Run(ctx context.Context, emu Emulator, b backend.Backend, limiter timing.Limiter) error {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}

	running := true
	manager := newInputManager(emu, b, func() { running = false })

	for running {
		select {
		case <-ctx.Done():
			slog.Info("Emulation stopped", "reason", ctx.Err())
			return nil
		default:
		}

		if err := emu.RunUntilFrame(); err != nil {
			return err
		}

		frame := emu.GetCurrentFrame()
		events, err := b.Update(frame)
		if err != nil {
			return fmt.Errorf("backend update failed: %w", err)
		}
		frame.ClearDirty()

		for _, evt := range events {
			manager.Trigger(evt.Action, evt.Type)
		}

		if running {
			limiter.WaitForNextFrame()
		}
	}

	slog.Info("Emulation stopped", "reason", "quit")
	return nil
}

// newInputManager latches keypad actions into the emulator keypad and binds
// the emulator controls.
func newInputManager(emu Emulator, b backend.Backend, quit func()) *input.Manager {
	manager := input.NewManager(emu.Keypad())

	for _, act := range []action.Action{action.EmulatorPauseToggle, action.EmulatorStepFrame, action.EmulatorReset} {
		manager.On(act, event.Press, func() {
			emu.HandleAction(act, true)
		})
	}

	manager.On(action.EmulatorSnapshot, event.Press, func() {
		if handler, ok := b.(backend.ActionHandler); ok {
			handler.HandleAction(action.EmulatorSnapshot)
			return
		}
		backend.TakeSnapshot(emu.GetCurrentFrame())
	})

	manager.On(action.EmulatorQuit, event.Press, quit)

	return manager
}
