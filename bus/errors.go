package bus

import "fmt"

// MemoryFault is recorded by the bus (see Bus.LastFault) when a
// collaborator (the Cartridge) explicitly refuses a read or write, e.g. a
// pluggable bank controller rejecting an out-of-range bank value. The
// bus itself never raises this for RAM,
// echo, OAM, or MMIO access: those always succeed per the DMG memory
// map, with prohibited reads/writes defined to be no-ops rather than
// faults.
type MemoryFault struct {
	Address uint16
	Op      string // "read" or "write"
}

func (e *MemoryFault) Error() string {
	return fmt.Sprintf("memory fault: %s at 0x%04X", e.Op, e.Address)
}
