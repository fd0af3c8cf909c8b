// Package traceview renders a terminal dashboard of CPU register/flag
// state and APU voice status, for interactive development against
// dmgcore. There is no framebuffer to draw: this core has no PPU, so
// the dashboard shows registers and sound channel activity instead of
// pixels.
package traceview

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/carsongoodwin32/dmgcore/apu"
	"github.com/carsongoodwin32/dmgcore/cpu"
)

const (
	minTermWidth  = 60
	minTermHeight = 16
)

// Dashboard owns a tcell screen and renders one frame at a time. Callers
// drive it from their own step loop; it never runs its own loop.
type Dashboard struct {
	screen  tcell.Screen
	quit    bool
	signals chan os.Signal
}

// New initializes the terminal screen. Call Close when done. It refuses
// to start against a non-interactive stdout (piped to a file, CI log
// capture) rather than raw-mode-ing a stream nothing will read.
func New() (*Dashboard, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, fmt.Errorf("traceview: stdout is not an interactive terminal")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("traceview: failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("traceview: failed to initialize terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	d := &Dashboard{screen: screen, signals: make(chan os.Signal, 1)}
	signal.Notify(d.signals, syscall.SIGINT, syscall.SIGTERM)
	go d.handleSignals()

	return d, nil
}

func (d *Dashboard) handleSignals() {
	<-d.signals
	slog.Info("traceview: received interrupt, stopping")
	d.quit = true
}

// Close tears down the terminal screen.
func (d *Dashboard) Close() {
	if d.screen != nil {
		d.screen.Fini()
	}
}

// ShouldQuit reports whether the user asked to stop (ctrl-C, or 'q'
// seen during the last Render poll).
func (d *Dashboard) ShouldQuit() bool {
	return d.quit
}

// Render draws the current CPU and APU state to the terminal. It also
// drains pending key events, setting ShouldQuit on 'q' or ESC.
func (d *Dashboard) Render(c *cpu.CPU, a *apu.APU) {
	for d.screen.HasPendingEvent() {
		switch ev := d.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
				d.quit = true
			}
		case *tcell.EventResize:
			d.screen.Sync()
		}
	}

	d.screen.Clear()
	row := 0
	row = d.drawLine(0, row, "dmgcore trace view (q or ctrl-C to quit)")
	row++

	s := c.Snapshot()
	row = d.drawLine(0, row, fmt.Sprintf("AF=%02X%02X  BC=%02X%02X  DE=%02X%02X  HL=%02X%02X",
		s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L))
	row = d.drawLine(0, row, fmt.Sprintf("SP=%04X  PC=%04X  flags=%s", s.SP, s.PC, s.FlagString()))
	row = d.drawLine(0, row, fmt.Sprintf("IME=%t  halted=%t  stopped=%t  cycles=%d",
		s.IME, s.Halted, s.Stopped, s.Cycles))
	row = d.drawLine(0, row, fmt.Sprintf("opcode=%s", cpu.Mnemonic(c.LastOpcode())))
	row++

	row = d.drawLine(0, row, "voices: pulse-sweep  pulse  wave  noise")
	status := a.VoiceStatus()
	row = d.drawLine(0, row, fmt.Sprintf("        %-12s %-6s %-5s %-5s",
		boolLabel(status[0]), boolLabel(status[1]), boolLabel(status[2]), boolLabel(status[3])))

	d.screen.Show()
}

func boolLabel(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (d *Dashboard) drawLine(col, row int, text string) int {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, r := range text {
		d.screen.SetContent(col+i, row, r, nil, style)
	}
	return row + 1
}
