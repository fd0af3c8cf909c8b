package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carsongoodwin32/dmgcore/addr"
)

type fakeBus struct {
	mem [0x10000]uint8
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (f *fakeBus) Read(a uint16) uint8      { return f.mem[a] }
func (f *fakeBus) Write(a uint16, v uint8)  { f.mem[a] = v }
func (f *fakeBus) Tick(cycles int)          {}
func (f *fakeBus) RequestInterrupt(i addr.Interrupt) {
	var bitPos uint8
	switch i {
	case addr.VBlankInterrupt:
		bitPos = 0
	case addr.LCDSTATInterrupt:
		bitPos = 1
	case addr.TimerInterrupt:
		bitPos = 2
	case addr.SerialInterrupt:
		bitPos = 3
	case addr.JoypadInterrupt:
		bitPos = 4
	}
	f.mem[addr.IF] |= 1 << bitPos
}

func newCPUAt(pc uint16, program ...uint8) (*CPU, *fakeBus) {
	bus := newFakeBus()
	for i, b := range program {
		bus.mem[pc+uint16(i)] = b
	}
	c := New(bus)
	c.pc = pc
	return c, bus
}

func TestCPU_NOP(t *testing.T) {
	c, _ := newCPUAt(0x0100, 0x00)
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0101), c.pc)
}

// concrete scenario: LD BC,d16 loads the immediate word and costs 12 T-states.
func TestCPU_LDBCImmediate(t *testing.T) {
	c, _ := newCPUAt(0x0100, 0x01, 0x34, 0x12)
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 12, cycles)
	assert.Equal(t, uint16(0x1234), c.getBC())
}

// concrete scenario: INC B on 0xFF wraps to 0x00 and sets Z and H.
func TestCPU_IncB_SetsZeroAndHalfCarry(t *testing.T) {
	c, _ := newCPUAt(0x0100, 0x04)
	c.b = 0xFF
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint8(0), c.b)
	assert.True(t, c.isSet(flagZ))
	assert.True(t, c.isSet(flagH))
	assert.False(t, c.isSet(flagN))
}

// concrete scenario: RLCA always clears Z regardless of the rotated value.
func TestCPU_RLCA(t *testing.T) {
	c, _ := newCPUAt(0x0100, 0x07)
	c.a = 0x85
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint8(0x0B), c.a)
	assert.False(t, c.isSet(flagZ))
	assert.True(t, c.isSet(flagC))
}

// concrete scenario: XOR A against itself zeroes A and sets Z.
func TestCPU_XorA(t *testing.T) {
	c, _ := newCPUAt(0x0100, 0xAF)
	c.a = 0x7F
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint8(0), c.a)
	assert.True(t, c.isSet(flagZ))
	assert.False(t, c.isSet(flagC))
}

func TestCPU_JRNZ_TakenAndNotTaken(t *testing.T) {
	c, _ := newCPUAt(0x0100, 0x20, 0x05) // JR NZ,+5
	c.clearFlag(flagZ)
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 12, cycles)
	assert.Equal(t, uint16(0x0107), c.pc)

	c2, _ := newCPUAt(0x0100, 0x20, 0x05)
	c2.setFlag(flagZ)
	cycles2, err := c2.Step()
	assert.NoError(t, err)
	assert.Equal(t, 8, cycles2)
	assert.Equal(t, uint16(0x0102), c2.pc)
}

func TestCPU_UnknownOpcode(t *testing.T) {
	c, _ := newCPUAt(0x0100, 0xD3) // unused on real hardware
	_, err := c.Step()
	var unk *UnknownOpcode
	assert.True(t, errors.As(err, &unk))
	assert.Equal(t, uint8(0xD3), unk.Opcode)
}

func TestCPU_CBOpcode_BitTest(t *testing.T) {
	c, _ := newCPUAt(0x0100, 0xCB, 0x7F) // BIT 7,A
	c.a = 0x00
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 8, cycles)
	assert.True(t, c.isSet(flagZ))
	assert.True(t, c.isSet(flagH))
}

func TestCPU_Interrupts_ServicesVBlankInPriorityOrder(t *testing.T) {
	c, bus := newCPUAt(0x0150)
	c.ime = true
	c.sp = 0xFFFE
	bus.mem[addr.IE] = 0x03 // vblank + lcd stat enabled
	c.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	c.bus.RequestInterrupt(addr.VBlankInterrupt)

	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 20, cycles)
	assert.Equal(t, uint16(0x40), c.pc) // vblank has priority over lcd stat
	assert.False(t, c.ime)
	assert.Equal(t, uint8(0x02), bus.mem[addr.IF]&0x03) // vblank bit cleared, lcd stat still pending
}

func TestCPU_Interrupts_NotServicedWithIMEClear(t *testing.T) {
	c, bus := newCPUAt(0x0100, 0x00)
	c.ime = false
	bus.mem[addr.IE] = 0x01
	c.bus.RequestInterrupt(addr.VBlankInterrupt)

	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles) // executed the NOP, not the interrupt handler
	assert.Equal(t, uint16(0x0101), c.pc)
}

func TestCPU_HaltBug_RereadsNextByteWithoutAdvancingPC(t *testing.T) {
	c, bus := newCPUAt(0x0100, 0x76, 0x3C) // HALT ; INC A
	c.ime = false
	bus.mem[addr.IE] = 0x01
	c.bus.RequestInterrupt(addr.VBlankInterrupt) // pending with IME=0 triggers the halt bug

	_, err := c.Step() // executes HALT, sets haltBug instead of actually halting
	assert.NoError(t, err)
	assert.False(t, c.halted)
	assert.True(t, c.haltBug)

	c.a = 0x00
	cycles, err := c.Step() // re-fetches INC A at the same PC
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint8(1), c.a)
}

func TestCPU_EI_DelaysByOneInstruction(t *testing.T) {
	c, _ := newCPUAt(0x0100, 0xFB, 0x00) // EI ; NOP
	c.ime = false

	_, err := c.Step() // executes EI
	assert.NoError(t, err)
	assert.False(t, c.ime, "IME must not flip until after the instruction following EI")

	_, err = c.Step() // executes the NOP
	assert.NoError(t, err)
	assert.True(t, c.ime)
}

func TestCPU_Snapshot(t *testing.T) {
	c, _ := newCPUAt(0x0100)
	c.setAF(0x01B0)
	s := c.Snapshot()
	assert.Equal(t, uint8(0x01), s.A)
	assert.Equal(t, "Z-HC", s.FlagString())
}
