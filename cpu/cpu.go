// Package cpu implements the Sharp LR35902 fetch-decode-execute engine:
// registers, flags, the interrupt and HALT/STOP state machine, and the
// 512-entry (256 base + 256 CB-prefixed) instruction dispatch table.
package cpu

import (
	"github.com/carsongoodwin32/dmgcore/addr"
)

// Bus is everything the CPU needs from the memory-mapped I/O bus. The
// cpu package never imports the bus package directly so it can be
// tested against fakes without constructing a full memory map.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	RequestInterrupt(interrupt addr.Interrupt)
	Tick(cycles int)
}

// interruptVector pairs an IE/IF bit position with the address the CPU
// jumps to when that interrupt is serviced, in priority order.
type interruptVector struct {
	bit     uint8
	address uint16
}

var interruptVectors = [5]interruptVector{
	{0, 0x40}, // V-Blank
	{1, 0x48}, // LCD STAT
	{2, 0x50}, // Timer
	{3, 0x58}, // Serial
	{4, 0x60}, // Joypad
}

// CPU holds the Sharp LR35902's full visible register and flag state
// plus the bookkeeping needed for HALT, STOP, and the EI instruction's
// one-instruction-delayed enable of interrupts.
type CPU struct {
	a, f, b, c, d, e, h, l uint8
	sp, pc                 uint16

	ime        bool // interrupt master enable
	eiPending  bool // EI was executed; IME flips true after the *next* instruction
	halted     bool
	stopped    bool
	haltBug    bool // HALT executed with IME=0 and a pending interrupt: next fetch doesn't advance PC
	cycles     uint64
	lastOpcode uint16 // base opcode 0x00-0xFF, or CB-prefixed 0x100-0x1FF

	bus Bus
}

// New creates a CPU wired to bus, with registers set to their DMG
// post-boot-ROM values.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	return c
}

// Step services any pending interrupt, advances HALT/STOP state, and
// otherwise fetches, decodes, and executes exactly one instruction. It
// returns the number of T-states (4 MHz clock units) the instruction
// consumed, or an UnknownOpcode error if the dispatch table has no
// entry for the fetched byte.
func (c *CPU) Step() (int, error) {
	// A pending EI left by the previous Step() takes effect only after
	// this call's instruction has executed, so no interrupt is serviced
	// between EI and the instruction that follows it.
	enableIME := c.eiPending

	if serviced := c.handleInterrupts(); serviced {
		c.cycles += 20
		return 20, nil
	}

	if c.halted || c.stopped {
		c.cycles += 4
		return 4, nil
	}

	opcode, isCB, err := c.fetch()
	if err != nil {
		return 0, err
	}

	var fn Opcode
	if isCB {
		fn = opcodesCB[opcode]
		c.lastOpcode = 0x100 | uint16(opcode)
	} else {
		fn = opcodes[opcode]
		c.lastOpcode = uint16(opcode)
	}
	if fn == nil {
		return 0, &UnknownOpcode{Opcode: opcode, CB: isCB, PC: c.pc}
	}

	cycles := fn(c)
	if enableIME && c.eiPending {
		c.ime = true
		c.eiPending = false
	}

	c.cycles += uint64(cycles)
	return cycles, nil
}

// fetch reads the opcode at PC, resolving the CB prefix and advancing
// PC past whatever was consumed. The HALT bug re-reads the same byte
// without advancing PC once, per the documented hardware quirk.
func (c *CPU) fetch() (opcode uint8, isCB bool, err error) {
	b := c.bus.Read(c.pc)

	if !c.haltBug {
		c.pc++
	} else {
		c.haltBug = false
	}

	if b != 0xCB {
		return b, false, nil
	}

	cbOpcode := c.bus.Read(c.pc)
	c.pc++
	return cbOpcode, true, nil
}

// handleInterrupts services the highest-priority pending interrupt, if
// IME is set and any IE&IF bit is 1. It also clears the halted flag
// whenever a requested interrupt is pending, independent of IME: real
// hardware exits HALT on a pending flag and only consults IME to decide
// whether to actually jump to the handler.
func (c *CPU) handleInterrupts() bool {
	ie := c.bus.Read(addr.IE)
	iflags := c.bus.Read(addr.IF)
	pending := ie & iflags

	if pending == 0 {
		return false
	}
	c.halted = false

	if !c.ime {
		return false
	}

	for _, v := range interruptVectors {
		if pending&(1<<v.bit) == 0 {
			continue
		}
		c.ime = false
		c.bus.Write(addr.IF, iflags&^(1<<v.bit))
		c.pushStack(c.pc)
		c.pc = v.address
		return true
	}
	return false
}

func (c *CPU) pushStack(value uint16) {
	c.sp -= 2
	c.bus.Write(c.sp, uint8(value))
	c.bus.Write(c.sp+1, uint8(value>>8))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	high := c.bus.Read(c.sp + 1)
	c.sp += 2
	return uint16(high)<<8 | uint16(low)
}

func (c *CPU) readImmediate() uint8 {
	v := c.bus.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return uint16(high)<<8 | uint16(low)
}

func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

// halt enters the HALT state. If IME is clear and an interrupt is
// already pending, hardware triggers the HALT bug instead of actually
// sleeping: the following opcode byte is fetched but PC isn't advanced,
// so it is fetched and executed a second time.
func (c *CPU) halt() {
	ie := c.bus.Read(addr.IE)
	iflags := c.bus.Read(addr.IF)
	if !c.ime && ie&iflags != 0 {
		c.haltBug = true
		return
	}
	c.halted = true
}

func (c *CPU) stop() {
	c.stopped = true
}

// LastOpcode returns the dispatch-table index of the most recently
// executed instruction, suitable for passing to Mnemonic.
func (c *CPU) LastOpcode() uint16 {
	return c.lastOpcode
}
