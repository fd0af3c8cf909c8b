package cpu

import "github.com/carsongoodwin32/dmgcore/bit"

// Flag is one of the four flags held in the high nibble of F.
type Flag uint8

const (
	flagZ Flag = 0x80
	flagN Flag = 0x40
	flagH Flag = 0x20
	flagC Flag = 0x10
)

func (c *CPU) setFlag(f Flag)   { c.f |= uint8(f) }
func (c *CPU) clearFlag(f Flag) { c.f &^= uint8(f) }

func (c *CPU) isSet(f Flag) bool { return c.f&uint8(f) != 0 }

func (c *CPU) setFlagIf(f Flag, condition bool) {
	if condition {
		c.setFlag(f)
	} else {
		c.clearFlag(f)
	}
}

func (c *CPU) bitOf(f Flag) uint8 {
	if c.isSet(f) {
		return 1
	}
	return 0
}

func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f) }
func (c *CPU) setAF(v uint16) {
	c.a = bit.High(v)
	c.f = bit.Low(v) & 0xF0 // low nibble of F is always zero
}

func (c *CPU) getBC() uint16  { return bit.Combine(c.b, c.c) }
func (c *CPU) setBC(v uint16) { c.b, c.c = bit.High(v), bit.Low(v) }

func (c *CPU) getDE() uint16  { return bit.Combine(c.d, c.e) }
func (c *CPU) setDE(v uint16) { c.d, c.e = bit.High(v), bit.Low(v) }

func (c *CPU) getHL() uint16  { return bit.Combine(c.h, c.l) }
func (c *CPU) setHL(v uint16) { c.h, c.l = bit.High(v), bit.Low(v) }

// State is a read-only snapshot of CPU-visible state, used by tests and
// by internal/traceview to render registers without exposing mutable
// access to the live CPU.
type State struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	IME                    bool
	Halted                 bool
	Stopped                bool
	Cycles                 uint64
}

// Snapshot returns the current CPU-visible state.
func (c *CPU) Snapshot() State {
	return State{
		A: c.a, F: c.f, B: c.b, C: c.c, D: c.d, E: c.e, H: c.h, L: c.l,
		SP: c.sp, PC: c.pc,
		IME:     c.ime,
		Halted:  c.halted,
		Stopped: c.stopped,
		Cycles:  c.cycles,
	}
}

// FlagString renders the flag register as e.g. "Z-HC" for traces.
func (s State) FlagString() string {
	out := [4]byte{'-', '-', '-', '-'}
	if s.F&uint8(flagZ) != 0 {
		out[0] = 'Z'
	}
	if s.F&uint8(flagN) != 0 {
		out[1] = 'N'
	}
	if s.F&uint8(flagH) != 0 {
		out[2] = 'H'
	}
	if s.F&uint8(flagC) != 0 {
		out[3] = 'C'
	}
	return string(out[:])
}
