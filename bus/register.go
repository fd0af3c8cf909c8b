package bus

import "github.com/carsongoodwin32/dmgcore/bit"

// Register is a named MMIO register handle: a single byte with indexed
// bit access and a monotonically increasing version counter bumped on
// every write. The APU uses the version counters of the wave-RAM
// registers to invalidate a cached waveform conversion without needing
// to compare byte contents every tick, and those of the NRx4 registers
// to detect trigger writes.
type Register struct {
	value   uint8
	version uint64
}

// Get returns the register's current byte value.
func (r *Register) Get() uint8 { return r.value }

// Set stores value and bumps the version counter.
func (r *Register) Set(value uint8) {
	r.value = value
	r.version++
}

// Bit reports whether bit index (0 = LSB) is set.
func (r *Register) Bit(index uint8) bool {
	return bit.IsSet(index, r.value)
}

// SetBit sets or clears bit index, bumping the version counter.
func (r *Register) SetBit(index uint8, on bool) {
	if on {
		r.Set(bit.Set(index, r.value))
	} else {
		r.Set(bit.Reset(index, r.value))
	}
}

// Version returns the number of writes this register has observed since
// construction, used by callers that memoize derived state.
func (r *Register) Version() uint64 { return r.version }
