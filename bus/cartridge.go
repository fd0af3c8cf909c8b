package bus

// Cartridge is the collaborator boundary for ROM/RAM bank switching.
// The bus never interprets cartridge addressing itself: reads and writes
// to 0x0000-0x7FFF and 0xA000-0xBFFF are simply forwarded here. Anything
// resembling MBC bank-select logic belongs to the implementation the
// caller supplies, not to this package.
type Cartridge interface {
	ReadByte(address uint16) uint8
	WriteByte(address uint16, value uint8)
}

// FaultingCartridge is an optional Cartridge capability: a collaborator
// that can explicitly refuse a particular address (e.g. a bank
// controller rejecting an out-of-range bank select) implements this so
// the bus can record a MemoryFault instead of silently forwarding the
// access. Checked via a type assertion on every cartridge-window
// Read/Write, so plain collaborators like FlatROM that don't implement
// it never refuse anything.
type FaultingCartridge interface {
	Cartridge
	RefusesAccess(address uint16) bool
}

// FlatROM is a minimal Cartridge that exposes a single fixed ROM image
// with no bank switching and no persistent external RAM, useful for
// tests and for the headless demo harness in cmd/dmgcore.
type FlatROM struct {
	rom []byte
	ram [0x2000]byte
}

// NewFlatROM wraps data as a read-only ROM image. If data is shorter than
// the full 0x8000 ROM window, out-of-range reads return 0xFF.
func NewFlatROM(data []byte) *FlatROM {
	return &FlatROM{rom: data}
}

func (c *FlatROM) ReadByte(address uint16) uint8 {
	if address < 0x8000 {
		if int(address) < len(c.rom) {
			return c.rom[address]
		}
		return 0xFF
	}
	// 0xA000-0xBFFF external RAM window
	return c.ram[address-0xA000]
}

func (c *FlatROM) WriteByte(address uint16, value uint8) {
	if address < 0x8000 {
		// no bank controller: ROM writes are dropped
		return
	}
	c.ram[address-0xA000] = value
}
