package apu

// waveformKey identifies a cached waveform table. version is the sum of
// the 16 wave-RAM registers' write counters, so a cache hit means "nobody has
// written to wave RAM since we last converted it," not "the bytes look
// the same" — avoiding a byte-for-byte compare on every APU tick.
type waveformKey struct {
	version     uint64
	outputShift uint8
}

// WaveformMemo caches the normalized [-1,+1] sample table derived from
// the custom wave channel's 16-byte wave RAM, so Run doesn't redo the
// nibble conversion every call when nothing has changed.
type WaveformMemo struct {
	key   waveformKey
	table [waveformSampleCount]float64
	valid bool
}

// Get returns the cached table if version and outputShift match the
// last call, otherwise recomputes it from waveRAM. changed reports
// whether the table was recomputed on this call (it is true even if the
// recomputed samples equal the previous ones).
func (m *WaveformMemo) Get(waveRAM [16]uint8, version uint64, outputShift uint8) (table [waveformSampleCount]float64, changed bool) {
	key := waveformKey{version: version, outputShift: outputShift}
	if m.valid && m.key == key {
		return m.table, false
	}
	for i := 0; i < waveformSampleCount; i++ {
		b := waveRAM[i/2]
		var nibble uint8
		if i%2 == 0 {
			nibble = b >> 4
		} else {
			nibble = b & 0x0F
		}
		m.table[i] = nibbleToSample(nibble, outputShift)
	}
	m.key = key
	m.valid = true
	return m.table, true
}

// nibbleToSample converts a 4-bit wave RAM sample to a signed [-1,+1]
// value after applying the output-level attenuation shift (0 = mute,
// 1 = full, 2 = half, 3 = quarter, encoded as a right shift of 4,0,1,2
// per NR32 — the shift amount itself is resolved by the caller).
func nibbleToSample(nibble uint8, outputShift uint8) float64 {
	attenuated := nibble >> outputShift
	return float64(attenuated)/7.5 - 1
}
