// Package bus implements the Game Boy (DMG) memory-mapped I/O bus: a
// uniform 16-bit address space routing reads and writes to RAM regions,
// a cartridge collaborator, and named MMIO registers.
package bus

import (
	"fmt"
	"log/slog"

	"github.com/carsongoodwin32/dmgcore/addr"
	"github.com/carsongoodwin32/dmgcore/bit"
)

type region uint8

const (
	regionROM region = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionProhibited
	regionIO
	regionHRAM
	regionIE
)

// RegisterBank exposes named MMIO register handles by address, used by
// collaborators (the APU) that need the version counter to memoize
// derived state instead of recomputing it on every tick.
type RegisterBank interface {
	Register(address uint16) *Register
}

// Bus is the DMG memory map: VRAM, work RAM, OAM, the I/O register page,
// and high RAM, plus a pluggable Cartridge for ROM and external RAM.
type Bus struct {
	cart Cartridge

	vram [0x2000]byte // 0x8000-0x9FFF
	wram [0x2000]byte // 0xC000-0xDFFF
	oam  [0xA0]byte   // 0xFE00-0xFE9F
	io   [0x80]Register
	hram [0x7F]byte // 0xFF80-0xFFFE
	ie   Register   // 0xFFFF

	regionMap [256]region
	lastFault *MemoryFault
}

// New creates a Bus with no cartridge attached; ROM/external-RAM access
// logs a warning and reads 0xFF / drops writes, matching power-on DMG
// behavior with no cartridge inserted.
func New() *Bus {
	b := &Bus{}
	b.initRegionMap()
	b.initPowerOnRegisters()
	return b
}

// NewWithCartridge creates a Bus with cart wired into the ROM and
// external-RAM windows.
func NewWithCartridge(cart Cartridge) *Bus {
	b := New()
	b.cart = cart
	return b
}

// AttachCartridge swaps in a Cartridge after construction (e.g. once a
// ROM image has been loaded).
func (b *Bus) AttachCartridge(cart Cartridge) {
	b.cart = cart
}

func (b *Bus) initRegionMap() {
	for i := 0x00; i <= 0x7F; i++ {
		b.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		b.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		b.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		b.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		b.regionMap[i] = regionEcho
	}
	b.regionMap[0xFE] = regionOAM // split further by address in Read/Write
	b.regionMap[0xFF] = regionIO  // split further by address in Read/Write
}

// initPowerOnRegisters seeds the I/O register page with DMG power-on
// values, per the official boot sequence documentation.
func (b *Bus) initPowerOnRegisters() {
	defaults := map[uint16]uint8{
		addr.P1:   0xCF,
		addr.TIMA: 0x00,
		addr.TMA:  0x00,
		addr.TAC:  0x00,
		addr.LCDC: 0x91,
		addr.SCY:  0x00,
		addr.SCX:  0x00,
		addr.LYC:  0x00,
		addr.BGP:  0xFC,
		addr.OBP0: 0xFF,
		addr.OBP1: 0xFF,
		addr.WY:   0x00,
		addr.WX:   0x00,
		addr.NR10: 0x80,
		addr.NR11: 0xBF,
		addr.NR12: 0xF3,
		addr.NR14: 0xBF,
		addr.NR21: 0x3F,
		addr.NR24: 0xBF,
		addr.NR30: 0x7F,
		addr.NR31: 0xFF,
		addr.NR32: 0x9F,
		addr.NR34: 0xBF,
		addr.NR41: 0xFF,
		addr.NR44: 0xBF,
		addr.NR50: 0x77,
		addr.NR51: 0xF3,
		addr.NR52: 0xF1,
	}
	for a, v := range defaults {
		b.io[a-0xFF00].Set(v)
	}
	b.ie.Set(0x00)
}

// Register returns the named MMIO register handle at address, which
// must be in 0xFF00-0xFF7F or be 0xFFFF (IE). High RAM (0xFF80-0xFFFE)
// has no register handle. Implements RegisterBank.
func (b *Bus) Register(address uint16) *Register {
	if address == addr.IE {
		return &b.ie
	}
	if address < 0xFF00 {
		panic(fmt.Sprintf("bus: Register() called with non-MMIO address 0x%04X", address))
	}
	return &b.io[address-0xFF00]
}

// LastFault returns the most recent MemoryFault a cartridge collaborator
// raised by refusing an access, or nil if none has occurred. It is
// cleared by nothing; callers that care about freshness should compare
// against what they last observed.
func (b *Bus) LastFault() *MemoryFault {
	return b.lastFault
}

// Read returns the byte visible at address.
func (b *Bus) Read(address uint16) uint8 {
	switch b.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if b.cart == nil {
			slog.Warn("read from cartridge window with no cartridge attached", "addr", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		if f, ok := b.cart.(FaultingCartridge); ok && f.RefusesAccess(address) {
			b.lastFault = &MemoryFault{Address: address, Op: "read"}
			return 0xFF
		}
		return b.cart.ReadByte(address)
	case regionVRAM:
		return b.vram[address-0x8000]
	case regionWRAM:
		return b.wram[address-0xC000]
	case regionEcho:
		return b.wram[address-0xE000]
	case regionOAM:
		if address <= addr.OAMEnd {
			return b.oam[address-addr.OAMStart]
		}
		return 0xFF // prohibited range 0xFEA0-0xFEFF
	case regionIO:
		return b.readIO(address)
	default:
		panic(fmt.Sprintf("bus: unmapped read at 0x%04X", address))
	}
}

func (b *Bus) readIO(address uint16) uint8 {
	if address == addr.IE {
		return b.ie.Get()
	}
	if address == addr.IF {
		// Upper 3 bits are unused and always read back as 1.
		return b.io[address-0xFF00].Get() | 0xE0
	}
	if address >= 0xFF80 && address <= 0xFFFE {
		return b.hram[address-0xFF80]
	}
	return b.io[address-0xFF00].Get()
}

// Write stores value at address, applying DMG memory-map semantics
// (echo mirroring, prohibited-range drops, IF's always-1 top bits).
func (b *Bus) Write(address uint16, value uint8) {
	switch b.regionMap[address>>8] {
	case regionROM:
		if b.cart == nil {
			slog.Warn("write to ROM window with no cartridge attached", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		if f, ok := b.cart.(FaultingCartridge); ok && f.RefusesAccess(address) {
			b.lastFault = &MemoryFault{Address: address, Op: "write"}
			return
		}
		b.cart.WriteByte(address, value)
	case regionExtRAM:
		if b.cart == nil {
			slog.Warn("write to external RAM window with no cartridge attached", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		if f, ok := b.cart.(FaultingCartridge); ok && f.RefusesAccess(address) {
			b.lastFault = &MemoryFault{Address: address, Op: "write"}
			return
		}
		b.cart.WriteByte(address, value)
	case regionVRAM:
		b.vram[address-0x8000] = value
	case regionWRAM:
		b.wram[address-0xC000] = value
	case regionEcho:
		b.wram[address-0xE000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			b.oam[address-addr.OAMStart] = value
		}
		// else: prohibited range, write silently dropped
	case regionIO:
		b.writeIO(address, value)
	default:
		panic(fmt.Sprintf("bus: unmapped write at 0x%04X", address))
	}
}

func (b *Bus) writeIO(address uint16, value uint8) {
	if address == addr.IE {
		b.ie.Set(value)
		return
	}
	if address == addr.IF {
		b.io[address-0xFF00].Set(value | 0xE0)
		return
	}
	if address == addr.DMA {
		b.runOAMDMA(value)
		return
	}
	if address >= 0xFF80 && address <= 0xFFFE {
		b.hram[address-0xFF80] = value
		return
	}
	b.io[address-0xFF00].Set(value)
}

// runOAMDMA copies 160 bytes from sourceHighByte<<8 into OAM. This is a
// whole-operation copy: sub-instruction bus-conflict timing during the
// transfer is an explicit Non-goal.
func (b *Bus) runOAMDMA(sourceHighByte uint8) {
	source := uint16(sourceHighByte) << 8
	for i := uint16(0); i < 160; i++ {
		b.oam[i] = b.Read(source + i)
	}
}

// ReadWord reads a little-endian 16-bit value at address and address+1.
func (b *Bus) ReadWord(address uint16) uint16 {
	low := b.Read(address)
	high := b.Read(address + 1)
	return bit.Combine(high, low)
}

// WriteWord stores a little-endian 16-bit value at address and address+1.
func (b *Bus) WriteWord(address uint16, value uint16) {
	b.Write(address, bit.Low(value))
	b.Write(address+1, bit.High(value))
}

// Tick exists to satisfy the CPU's Bus interface. No peripheral owned by
// this core (timer, serial, PPU) consumes bus-driven ticks: the
// scheduler advances the APU directly via apu.Run, per the cooperative
// scheduling model, so this is a deliberate no-op.
func (b *Bus) Tick(cycles int) {}

// RequestInterrupt sets the IF bit for interrupt.
func (b *Bus) RequestInterrupt(interrupt addr.Interrupt) {
	var bitPos uint8
	switch interrupt {
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
	default:
		panic(fmt.Sprintf("bus: unknown interrupt 0x%02X", uint8(interrupt)))
	}
	reg := &b.io[addr.IF-0xFF00]
	reg.SetBit(bitPos, true)
}
