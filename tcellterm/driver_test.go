package tcellterm

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/syncterm/console"
	"github.com/lixenwraith/syncterm/terminal"
)

// Simulation screens always start at 80x25
const simWidth, simHeight = 80, 25

func newSim(t *testing.T) (*Driver, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	d := New(sim)
	require.NoError(t, d.Init())
	t.Cleanup(d.Fini)
	return d, sim
}

func rowText(sim tcell.SimulationScreen, row int) string {
	cells, w, _ := sim.GetContents()
	var sb strings.Builder
	for _, c := range cells[row*w : (row+1)*w] {
		if len(c.Runes) == 0 {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(sb.String(), " ")
}

func cellFg(sim tcell.SimulationScreen, col, row int) tcell.Color {
	cells, w, _ := sim.GetContents()
	fg, _, _ := cells[row*w+col].Style.Decompose()
	return fg
}

func TestDriverInit(t *testing.T) {
	d, sim := newSim(t)
	assert.Equal(t, simWidth, d.BufferWidth())
	assert.Equal(t, 0, d.CursorColumn())
	assert.Equal(t, 0, d.CursorRow())
	assert.Equal(t, terminal.ColorDefault, d.Foreground())
	assert.Equal(t, terminal.ColorDefault, d.Background())

	x, y, visible := sim.GetCursor()
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
	assert.True(t, visible)

	// Second Init is a no-op
	require.NoError(t, d.Init())
}

func TestDriverWriteWraps(t *testing.T) {
	d, sim := newSim(t)

	d.WriteText(strings.Repeat("a", simWidth))
	assert.Equal(t, 0, d.CursorColumn())
	assert.Equal(t, 1, d.CursorRow())

	d.WriteText("b\tc\nd")
	d.WriteRune('e')
	assert.Equal(t, strings.Repeat("a", simWidth), rowText(sim, 0))
	assert.Equal(t, "b       c", rowText(sim, 1))
	assert.Equal(t, "de", rowText(sim, 2))

	x, y, _ := sim.GetCursor()
	assert.Equal(t, 2, x)
	assert.Equal(t, 2, y)
}

func TestDriverSkipsControlRunes(t *testing.T) {
	d, sim := newSim(t)
	d.WriteText("a\x07b\x1bc\x7f\u0085d\u009b")
	assert.Equal(t, "abcd", rowText(sim, 0))
	assert.Equal(t, 4, d.CursorColumn())
}

func TestDriverScrolls(t *testing.T) {
	d, sim := newSim(t)

	for i := 0; i < 30; i++ {
		d.WriteText(fmt.Sprintf("line %02d\n", i))
	}

	assert.Equal(t, "line 06", rowText(sim, 0))
	assert.Equal(t, "line 29", rowText(sim, simHeight-2))
	assert.Equal(t, "", rowText(sim, simHeight-1))
	assert.Equal(t, 0, d.CursorColumn())
	assert.Equal(t, simHeight-1, d.CursorRow())
}

func TestDriverSetCursorPositionClamps(t *testing.T) {
	d, sim := newSim(t)

	d.SetCursorPosition(5, 3)
	x, y, _ := sim.GetCursor()
	assert.Equal(t, []int{5, 3}, []int{x, y})

	d.SetCursorPosition(-4, -1)
	assert.Equal(t, 0, d.CursorColumn())
	assert.Equal(t, 0, d.CursorRow())

	d.SetCursorPosition(500, 500)
	assert.Equal(t, simWidth-1, d.CursorColumn())
	assert.Equal(t, simHeight-1, d.CursorRow())
}

func TestDriverColors(t *testing.T) {
	d, sim := newSim(t)

	d.SetForeground(terminal.Red)
	d.SetBackground(terminal.DarkBlue)
	d.WriteText("x")
	d.SetForeground(terminal.ColorDefault)
	d.WriteText("y")

	assert.Equal(t, terminal.ColorDefault, d.Foreground())
	assert.Equal(t, terminal.DarkBlue, d.Background())
	assert.Equal(t, tcell.PaletteColor(9), cellFg(sim, 0, 0))
	assert.Equal(t, tcell.ColorDefault, cellFg(sim, 1, 0))

	cells, _, _ := sim.GetContents()
	_, bg, _ := cells[0].Style.Decompose()
	assert.Equal(t, tcell.PaletteColor(4), bg)
}

func TestDriverReadKey(t *testing.T) {
	d, sim := newSim(t)

	sim.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	sim.InjectKey(tcell.KeyRune, 'b', tcell.ModAlt)
	sim.InjectKey(tcell.KeyBackspace2, 0, tcell.ModNone)
	sim.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	sim.InjectKey(tcell.KeyLeft, 0, tcell.ModShift)
	sim.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)

	want := []terminal.KeyInfo{
		{Rune: 'a', Key: terminal.KeyRune},
		{Rune: 'b', Key: terminal.KeyRune, Control: true, Modifiers: terminal.ModAlt},
		{Control: true, Key: terminal.KeyBackspace},
		{Control: true, Key: terminal.KeyCtrlC, Modifiers: terminal.ModCtrl},
		{Control: true, Key: terminal.KeyLeft, Modifiers: terminal.ModShift},
		{Control: true, Key: terminal.KeyEnter},
	}
	for _, w := range want {
		got, err := d.ReadKey()
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
}

func TestDriverReadKeyAfterFini(t *testing.T) {
	d, _ := newSim(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := d.ReadKey()
		errCh <- err
	}()

	d.Fini()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, terminal.ErrInputClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadKey did not unblock")
	}
}

func TestConsoleOnSimulationScreen(t *testing.T) {
	d, sim := newSim(t)
	c := console.New(d, console.WithPrompt("> "))

	require.NoError(t, c.WriteLine("hello"))

	done := make(chan string, 1)
	go func() {
		line, err := c.ReadLine()
		assert.NoError(t, err)
		done <- line
	}()

	require.Eventually(t, c.IsReading, 2*time.Second, 5*time.Millisecond)
	for _, r := range "abc" {
		sim.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
	sim.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	sim.InjectKey(tcell.KeyBackspace2, 0, tcell.ModNone)

	require.Eventually(t, func() bool {
		return rowText(sim, 1) == "> ac"
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.WriteSegments(console.Colored("note", terminal.Yellow)))
	assert.Equal(t, "hello", rowText(sim, 0))
	assert.Equal(t, "note", rowText(sim, 1))
	assert.Equal(t, "> ac", rowText(sim, 2))
	assert.Equal(t, tcell.PaletteColor(11), cellFg(sim, 0, 1))

	x, y, _ := sim.GetCursor()
	assert.Equal(t, []int{3, 2}, []int{x, y})

	sim.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	select {
	case line := <-done:
		assert.Equal(t, "ac", line)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadLine did not return")
	}
	assert.Equal(t, "", rowText(sim, 2))
}

func TestService(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	svc := NewServiceWithScreen(sim)
	assert.Equal(t, "terminal", svc.Name())
	assert.Nil(t, svc.Driver())
	assert.Nil(t, svc.Terminal())

	require.Error(t, svc.Start())
	require.NoError(t, svc.Init())
	assert.Nil(t, svc.Terminal())
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Start())
	assert.Equal(t, simWidth, svc.Driver().BufferWidth())
	require.NotNil(t, svc.Terminal())
	assert.Equal(t, simWidth, svc.Terminal().BufferWidth())

	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
	assert.Nil(t, svc.Terminal())
}
