package apu

import (
	"github.com/carsongoodwin32/dmgcore/addr"
	"github.com/carsongoodwin32/dmgcore/bus"
)

// sweepTimeTable converts NR10 bits 6-4 to seconds, per the documented
// 128 Hz sweep clock: index*7.8125ms, 0 meaning sweep disabled.
var sweepTimeTable = [8]float64{0, 0.0078, 0.0156, 0.0234, 0.0313, 0.0391, 0.0469, 0.0547}

// dutyCycleTable converts NR11/NR21 bits 7-6 to a fraction of the period
// spent high.
var dutyCycleTable = [4]float64{0.125, 0.25, 0.5, 0.75}

// noiseDivisorTable converts NR43 bits 2-0 to the divisor used in the
// noise channel's frequency formula.
var noiseDivisorTable = [8]float64{8, 16, 32, 48, 64, 80, 96, 112}

const (
	voiceIndexPulseSweep = 0
	voiceIndexPulse      = 1
	voiceIndexWave       = 2
	voiceIndexNoise      = 3
)

// APU drives four Voice oscillator parameter generators from the raw
// NRxx register bank. It never produces samples itself: Run derives
// each voice's current parameters, advances its envelopes by the
// elapsed real time, and pushes the result to that voice's Sink.
type APU struct {
	voices   [4]*Voice
	waveform WaveformMemo

	lastMasterEnabled bool
	triggerVersion    [4]uint64

	muted [4]bool
	solo  int // -1 means no solo
}

// New constructs an APU wired to the given per-voice sinks, in channel
// order: pulse-with-sweep, pulse, custom-wave, noise.
func New(sinks [4]Sink) *APU {
	a := &APU{solo: -1}
	a.voices[voiceIndexPulseSweep] = NewVoice(voicePulseSweep, sinks[voiceIndexPulseSweep])
	a.voices[voiceIndexPulse] = NewVoice(voicePulse, sinks[voiceIndexPulse])
	a.voices[voiceIndexWave] = NewVoice(voiceWave, sinks[voiceIndexWave])
	a.voices[voiceIndexNoise] = NewVoice(voiceNoise, sinks[voiceIndexNoise])
	return a
}

// checkTriggered reports whether reg's trigger bit (bit 7 of NRx4)
// was written this call, detected from the register's write counter
// rather than a level compare. A level compare would miss "the game
// wrote the same trigger byte twice in a row," which is a legal and
// common retrigger pattern.
func (a *APU) checkTriggered(idx int, reg *bus.Register) bool {
	v := reg.Version()
	changed := v != a.triggerVersion[idx]
	a.triggerVersion[idx] = v
	return changed && reg.Bit(7)
}

// Run advances every voice by the real time elapsed over cycles
// T-states, re-deriving each voice's parameters from the current
// register bank contents.
func (a *APU) Run(cycles int, regs bus.RegisterBank) {
	dt := float64(cycles) / cyclesPerSecond

	nr52 := regs.Register(addr.NR52)
	masterEnabled := nr52.Bit(7)
	if a.lastMasterEnabled && !masterEnabled {
		a.clearRegisters(regs)
	}
	a.lastMasterEnabled = masterEnabled

	stopped := [4]bool{}
	if masterEnabled {
		stopped[voiceIndexPulseSweep] = a.runPulseSweep(regs, dt)
		stopped[voiceIndexPulse] = a.runPulse(regs, dt)
		stopped[voiceIndexWave] = a.runWave(regs, dt)
		stopped[voiceIndexNoise] = a.runNoise(regs, dt)
	} else {
		stopped = [4]bool{true, true, true, true}
	}

	nr50 := regs.Register(addr.NR50).Get()
	leftVolume := float64((nr50>>4)&0x7) / 7
	rightVolume := float64(nr50&0x7) / 7
	masterVolume := (leftVolume + rightVolume) / 2

	nr51 := regs.Register(addr.NR51).Get()
	for i, v := range a.voices {
		leftOn := nr51&(1<<(4+uint(i))) != 0
		rightOn := nr51&(1<<uint(i)) != 0
		muted := !masterEnabled || a.muted[i] || (a.solo >= 0 && a.solo != i)
		v.update(leftOn, rightOn, muted, masterVolume)
	}

	status := nr52.Get() & 0xF0
	for i, s := range stopped {
		if !s {
			status |= 1 << uint(i)
		}
	}
	nr52.Set(status)
}

func (a *APU) runPulseSweep(regs bus.RegisterBank, dt float64) bool {
	nr10 := regs.Register(addr.NR10)
	nr11 := regs.Register(addr.NR11)
	nr12 := regs.Register(addr.NR12)
	nr13 := regs.Register(addr.NR13)
	nr14 := regs.Register(addr.NR14)

	triggered := a.checkTriggered(voiceIndexPulseSweep, nr14)

	period := (uint16(nr14.Get()&0x07) << 8) | uint16(nr13.Get())
	params := VoiceParams{
		Frequency:             bitsToFrequency(period),
		AmplitudeStart:        nr12.Get() >> 4,
		AmplitudeIncreasing:   nr12.Get()&0x08 != 0,
		AmplitudeStepDuration: envelopeStepDuration(nr12.Get() & 0x07),
		LengthEnabled:         nr14.Bit(6),
		LengthDuration:        (64 - float64(nr11.Get()&0x3F)) * (1.0 / 256),
		SweepIncreasing:       nr10.Get()&0x08 != 0,
		SweepShifts:           nr10.Get() & 0x07,
		SweepTime:             sweepTimeTable[(nr10.Get()>>4)&0x07],
		DutyCycle:             dutyCycleTable[(nr11.Get()>>6)&0x03],
		Triggered:             triggered,
		DACEnabled:            nr12.Get()&0xF8 != 0,
	}
	return a.voices[voiceIndexPulseSweep].sync(params, dt)
}

func (a *APU) runPulse(regs bus.RegisterBank, dt float64) bool {
	nr21 := regs.Register(addr.NR21)
	nr22 := regs.Register(addr.NR22)
	nr23 := regs.Register(addr.NR23)
	nr24 := regs.Register(addr.NR24)

	triggered := a.checkTriggered(voiceIndexPulse, nr24)

	period := (uint16(nr24.Get()&0x07) << 8) | uint16(nr23.Get())
	params := VoiceParams{
		Frequency:             bitsToFrequency(period),
		AmplitudeStart:        nr22.Get() >> 4,
		AmplitudeIncreasing:   nr22.Get()&0x08 != 0,
		AmplitudeStepDuration: envelopeStepDuration(nr22.Get() & 0x07),
		LengthEnabled:         nr24.Bit(6),
		LengthDuration:        (64 - float64(nr21.Get()&0x3F)) * (1.0 / 256),
		DutyCycle:             dutyCycleTable[(nr21.Get()>>6)&0x03],
		Triggered:             triggered,
		DACEnabled:            nr22.Get()&0xF8 != 0,
	}
	return a.voices[voiceIndexPulse].sync(params, dt)
}

func (a *APU) runWave(regs bus.RegisterBank, dt float64) bool {
	nr30 := regs.Register(addr.NR30)
	nr31 := regs.Register(addr.NR31)
	nr32 := regs.Register(addr.NR32)
	nr33 := regs.Register(addr.NR33)
	nr34 := regs.Register(addr.NR34)

	triggered := a.checkTriggered(voiceIndexWave, nr34)

	period := (uint16(nr34.Get()&0x07) << 8) | uint16(nr33.Get())
	params := VoiceParams{
		Frequency:      bitsToFrequency(period),
		AmplitudeStart: 15, // NR32's output level isn't an envelope; see outputShift below
		LengthEnabled:  nr34.Bit(6),
		LengthDuration: (256 - float64(nr31.Get())) * (1.0 / 256),
		Triggered:      triggered,
		DACEnabled:     nr30.Bit(7),
	}
	voice := a.voices[voiceIndexWave]
	stopped := voice.sync(params, dt)

	outputShift := outputShiftFromLevel((nr32.Get() >> 5) & 0x03)
	var waveRAM [16]uint8
	var waveVersion uint64
	for i := 0; i < 16; i++ {
		reg := regs.Register(addr.WaveRAMStart + uint16(i))
		waveRAM[i] = reg.Get()
		waveVersion += reg.Version()
	}
	if table, changed := a.waveform.Get(waveRAM, waveVersion, outputShift); changed || triggered {
		voice.applyWavetable(table)
	}
	return stopped
}

// outputShiftFromLevel maps NR32's 2-bit output level to the right
// shift nibbleToSample applies: 0=mute (shift 4, always 0), 1=100%
// (shift 0), 2=50% (shift 1), 3=25% (shift 2).
func outputShiftFromLevel(level uint8) uint8 {
	switch level {
	case 0:
		return 4
	case 1:
		return 0
	case 2:
		return 1
	default:
		return 2
	}
}

func (a *APU) runNoise(regs bus.RegisterBank, dt float64) bool {
	nr41 := regs.Register(addr.NR41)
	nr42 := regs.Register(addr.NR42)
	nr43 := regs.Register(addr.NR43)
	nr44 := regs.Register(addr.NR44)

	triggered := a.checkTriggered(voiceIndexNoise, nr44)

	shift := nr43.Get() >> 4
	divisor := noiseDivisorTable[nr43.Get()&0x07]
	frequency := cyclesPerSecond / (divisor * float64(uint32(1)<<shift))

	params := VoiceParams{
		Frequency:             frequency,
		AmplitudeStart:        nr42.Get() >> 4,
		AmplitudeIncreasing:   nr42.Get()&0x08 != 0,
		AmplitudeStepDuration: envelopeStepDuration(nr42.Get() & 0x07),
		LengthEnabled:         nr44.Bit(6),
		LengthDuration:        (64 - float64(nr41.Get()&0x3F)) * (1.0 / 256),
		Triggered:              triggered,
		DACEnabled:             nr42.Get()&0xF8 != 0,
	}
	return a.voices[voiceIndexNoise].sync(params, dt)
}

// envelopeStepDuration converts NRx2's 3-bit pace field to seconds per
// step, at the documented 64 Hz envelope clock. Pace 0 disables the
// envelope (AmplitudeEnvelope treats stepDuration<=0 as static).
func envelopeStepDuration(pace uint8) float64 {
	if pace == 0 {
		return 0
	}
	return float64(pace) / 64
}

// clearRegisters zeroes every sound register except NR52 itself, which
// the caller rewrites with the current channel-status bits immediately
// after. This matches powering the APU off: turning it back on starts
// from silence, not from whatever was last latched.
func (a *APU) clearRegisters(regs bus.RegisterBank) {
	for address := addr.NR10; address < addr.NR52; address++ {
		regs.Register(address).Set(0)
	}
}

// MuteVoice silences or unsilences one voice independent of its
// register-derived amplitude, for debug tooling.
func (a *APU) MuteVoice(index int, muted bool) {
	a.muted[index] = muted
}

// SoloVoice mutes every voice except index. Passing a negative index
// clears any active solo.
func (a *APU) SoloVoice(index int) {
	a.solo = index
}

// UnmuteAll clears every MuteVoice and SoloVoice state.
func (a *APU) UnmuteAll() {
	a.muted = [4]bool{}
	a.solo = -1
}

// VoiceStatus reports whether each voice is currently producing sound
// (not stopped, not muted by debug controls).
func (a *APU) VoiceStatus() [4]bool {
	var status [4]bool
	for i, v := range a.voices {
		s := v.Status()
		status[i] = !s.Stopped && !s.Muted && (s.LeftOn || s.RightOn)
	}
	return status
}
