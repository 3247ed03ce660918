package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestBackend(t *testing.T) (*Backend, tcell.SimulationScreen, *testClock) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	clock := &testClock{t: time.Unix(1000, 0)}
	b := newWithScreen(screen)
	b.now = clock.now

	require.NoError(t, b.Init(backend.BackendConfig{Title: "test"}))
	screen.SetSize(120, 30)
	t.Cleanup(func() { _ = b.Cleanup() })

	return b, screen, clock
}

func cellAt(screen tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := screen.GetContents()
	runes := cells[y*w+x].Runes
	if len(runes) == 0 {
		return ' '
	}
	return runes[0]
}

func TestTerminal_RendersHalfBlocks(t *testing.T) {
	b, screen, _ := newTestBackend(t)

	frame := video.NewFrameBuffer()
	frame.SetPixel(0, 0, 1)
	frame.SetPixel(0, 1, 1)
	frame.SetPixel(2, 0, 1)
	frame.SetPixel(4, 1, 1)

	_, err := b.Update(frame)
	require.NoError(t, err)

	// the screen starts at column 1, row 1 inside the border
	assert.Equal(t, '█', cellAt(screen, 1, 1))
	assert.Equal(t, ' ', cellAt(screen, 2, 1))
	assert.Equal(t, '▀', cellAt(screen, 3, 1))
	assert.Equal(t, '▄', cellAt(screen, 5, 1))
	assert.Equal(t, '┌', cellAt(screen, 0, 0))
}

func TestTerminal_KeypadPressHoldRelease(t *testing.T) {
	b, screen, clock := newTestBackend(t)
	frame := video.NewFrameBuffer()

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.Key0, Type: event.Press}}, events)

	clock.t = clock.t.Add(50 * time.Millisecond)
	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.Key0, Type: event.Hold}}, events)

	clock.t = clock.t.Add(keyTimeout)
	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.Key0, Type: event.Release}}, events)

	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTerminal_EmulatorControls(t *testing.T) {
	tests := []struct {
		desc string
		key  tcell.Key
		r    rune
		want action.Action
	}{
		{desc: "space pauses", key: tcell.KeyRune, r: ' ', want: action.EmulatorPauseToggle},
		{desc: "o steps", key: tcell.KeyRune, r: 'o', want: action.EmulatorStepFrame},
		{desc: "F5 resets", key: tcell.KeyF5, want: action.EmulatorReset},
		{desc: "F9 snapshots", key: tcell.KeyF9, want: action.EmulatorSnapshot},
		{desc: "escape quits", key: tcell.KeyEscape, want: action.EmulatorQuit},
		{desc: "ctrl-c quits", key: tcell.KeyCtrlC, want: action.EmulatorQuit},
	}
	for _, tC := range tests {
		t.Run(tC.desc, func(t *testing.T) {
			b, screen, _ := newTestBackend(t)

			screen.InjectKey(tC.key, tC.r, tcell.ModNone)
			events, err := b.Update(video.NewFrameBuffer())
			require.NoError(t, err)

			assert.Equal(t, []backend.InputEvent{{Action: tC.want, Type: event.Press}}, events)
		})
	}
}

func TestTerminal_LogLevelKeys(t *testing.T) {
	b, screen, _ := newTestBackend(t)
	require.Equal(t, slog.LevelInfo, b.logLevel.Level())

	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	events, err := b.Update(video.NewFrameBuffer())
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, slog.LevelDebug, b.logLevel.Level())

	screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	_, err = b.Update(video.NewFrameBuffer())
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, b.logLevel.Level())
}

func TestTerminal_LogsGoToThePane(t *testing.T) {
	b, _, _ := newTestBackend(t)

	slog.Warn("CPU fault", "pc", "0x200")

	entries := b.logBuffer.GetRecent(1)
	require.Len(t, entries, 1)
	assert.Equal(t, "CPU fault pc=0x200", entries[0].Message)
}

func TestTerminal_ImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*Backend)(nil)
	var _ backend.ActionHandler = (*Backend)(nil)
}
