package apu

import (
	"testing"

	"github.com/carsongoodwin32/dmgcore/addr"
	"github.com/carsongoodwin32/dmgcore/bus"
	"github.com/stretchr/testify/assert"
)

// recordingSink implements Sink, PulseSink, and WaveSink in one type so
// tests can assert on the last value pushed to any of them.
type recordingSink struct {
	started     bool
	stopped     bool
	frequency   float64
	amplitude   float64
	pan         float64
	pulseWidth  float64
	wavetable   [waveformSampleCount]float64
	wavetableSet bool
}

func (s *recordingSink) Start()                                     { s.started = true }
func (s *recordingSink) Stop()                                      { s.stopped = true }
func (s *recordingSink) SetFrequency(hz float64)                    { s.frequency = hz }
func (s *recordingSink) RampFrequency(hz float64, _ float64)        { s.frequency = hz }
func (s *recordingSink) SetAmplitude(a float64)                     { s.amplitude = a }
func (s *recordingSink) RampAmplitude(a float64, _ float64)         { s.amplitude = a }
func (s *recordingSink) RampPan(p float64, _ float64)               { s.pan = p }
func (s *recordingSink) SetPulseWidth(w float64)                    { s.pulseWidth = w }
func (s *recordingSink) SetWavetable(t [waveformSampleCount]float64) {
	s.wavetable = t
	s.wavetableSet = true
}

var (
	_ PulseSink = (*recordingSink)(nil)
	_ WaveSink  = (*recordingSink)(nil)
)

func newTestAPU() (*APU, [4]*recordingSink) {
	sinks := [4]*recordingSink{{}, {}, {}, {}}
	a := New([4]Sink{sinks[0], sinks[1], sinks[2], sinks[3]})
	return a, sinks
}

func TestFrequencyRoundTrip(t *testing.T) {
	for bits := uint16(0); bits <= 2047; bits++ {
		hz := bitsToFrequency(bits)
		assert.Equal(t, bits, frequencyToBits(hz), "bits=%d", bits)
	}
}

func TestAPU_MasterDisableClears(t *testing.T) {
	b := bus.New()
	a, sinks := newTestAPU()

	b.Register(addr.NR52).Set(0x80)
	b.Register(addr.NR12).Set(0xF0) // max volume, DAC on
	b.Register(addr.NR14).Set(0x87) // trigger

	a.Run(100, b)
	assert.Greater(t, sinks[voiceIndexPulseSweep].amplitude, 0.0)

	b.Register(addr.NR52).Set(0x00)
	a.Run(100, b)

	assert.Equal(t, uint8(0), b.Register(addr.NR10).Get())
	assert.Equal(t, uint8(0), b.Register(addr.NR12).Get())
	assert.Equal(t, 0.0, sinks[voiceIndexPulseSweep].amplitude)
}

// TestAPU_SweepDeactivation exercises NR10=0x1F, NR13=0xFF, NR14=0x87:
// sweepTime=0.0078s, increasing, shifts=7, start bits=0x7FF (2047). One
// sweep step (after ~8ms) overflows the 11-bit period and deactivates
// the channel.
func TestAPU_SweepDeactivation(t *testing.T) {
	b := bus.New()
	a, sinks := newTestAPU()

	b.Register(addr.NR52).Set(0x80)
	b.Register(addr.NR10).Set(0x1F)
	b.Register(addr.NR12).Set(0xF0)
	b.Register(addr.NR13).Set(0xFF)
	b.Register(addr.NR14).Set(0x87)

	cyclesPerSecondF := float64(cyclesPerSecond)
	cycles := int(0.008 * cyclesPerSecondF)
	a.Run(cycles, b)

	assert.Equal(t, 0.0, sinks[voiceIndexPulseSweep].amplitude)
	assert.Equal(t, uint8(0), b.Register(addr.NR52).Get()&0x01)
}

func TestAPU_TriggerSameValueTwiceStillResets(t *testing.T) {
	b := bus.New()
	a, _ := newTestAPU()

	b.Register(addr.NR52).Set(0x80)
	b.Register(addr.NR12).Set(0xF1) // volume 15, decreasing one step per 1/64 s
	b.Register(addr.NR14).Set(0x87)
	a.Run(10, b)

	voice := a.voices[voiceIndexPulseSweep]
	voice.amplitudeEnv.Advance(10) // force a stale elapsed value

	b.Register(addr.NR14).Set(0x87) // same byte, written again
	a.Run(10, b)

	assert.Equal(t, 1.0, voice.amplitudeEnv.Amplitude())
}

func TestAPU_WaveChannelRespectsOutputLevel(t *testing.T) {
	b := bus.New()
	a, sinks := newTestAPU()

	b.Register(addr.NR52).Set(0x80)
	b.Register(addr.NR30).Set(0x80) // DAC on
	b.Register(addr.NR32).Set(0x20) // 100% output level
	b.Register(addr.NR34).Set(0x87)
	b.Register(addr.WaveRAMStart).Set(0xF0)

	a.Run(10, b)

	assert.True(t, sinks[voiceIndexWave].wavetableSet)
	assert.InDelta(t, 1.0, sinks[voiceIndexWave].wavetable[0], 1e-9)
}

func TestAPU_MuteAndSolo(t *testing.T) {
	b := bus.New()
	a, sinks := newTestAPU()

	b.Register(addr.NR52).Set(0x80)
	b.Register(addr.NR12).Set(0xF0)
	b.Register(addr.NR14).Set(0x87)
	b.Register(addr.NR51).Set(0x11) // voice 0 on both channels

	a.MuteVoice(voiceIndexPulseSweep, true)
	a.Run(10, b)
	assert.Equal(t, 0.0, sinks[voiceIndexPulseSweep].amplitude)

	a.UnmuteAll()
	a.SoloVoice(voiceIndexPulse)
	a.Run(10, b)
	assert.Equal(t, 0.0, sinks[voiceIndexPulseSweep].amplitude)
}
