package apu

// voiceKind tags which of the four channel variants a Voice represents.
// A tagged field replaces the subclass-per-channel hierarchy a naive
// port would reach for: the four channels differ only in which envelopes
// they carry and which sink capabilities they exercise, not in how
// Run drives them.
type voiceKind int

const (
	voicePulseSweep voiceKind = iota
	voicePulse
	voiceWave
	voiceNoise
)

// VoiceState is the last-computed, externally observable snapshot of a
// voice, useful for debug views and tests without reaching into the
// envelopes themselves.
type VoiceState struct {
	Frequency float64
	Amplitude float64
	Pan       float64
	Muted     bool
	Stopped   bool
	LeftOn    bool
	RightOn   bool
}

// VoiceParams is what a register-derivation function hands to Voice.sync
// each Run call; it is a plain value, not a live register view, so sync
// never has to reach back into the bus.
type VoiceParams struct {
	Frequency             float64
	AmplitudeStart        uint8
	AmplitudeIncreasing   bool
	AmplitudeStepDuration float64
	LengthEnabled         bool
	LengthDuration        float64
	SweepIncreasing       bool
	SweepShifts           uint8
	SweepTime             float64
	DutyCycle             float64
	Triggered             bool
	DACEnabled            bool
}

// Voice owns one channel's envelopes and pushes their computed output to
// a Sink. It never resets an envelope except from the explicit
// Triggered branch in sync, avoiding the property-observer-cascade
// trap where assigning a frequency would implicitly restart amplitude.
type Voice struct {
	kind         voiceKind
	sink         Sink
	amplitudeEnv AmplitudeEnvelope
	lengthEnv    LengthEnvelope
	sweepEnv     *FrequencySweepEnvelope // non-nil only for voicePulseSweep
	dutyCycle    float64
	state        VoiceState
}

func NewVoice(kind voiceKind, sink Sink) *Voice {
	v := &Voice{kind: kind, sink: sink}
	if kind == voicePulseSweep {
		v.sweepEnv = &FrequencySweepEnvelope{}
	}
	return v
}

// sync advances the voice's envelopes by dt and recomputes its state.
// It returns true if the voice is now stopped (deactivated by any of
// its envelopes, or DAC-disabled) so the caller can clear NR52's status
// bit for this channel.
func (v *Voice) sync(p VoiceParams, dt float64) bool {
	if p.Triggered {
		v.amplitudeEnv.Reset(p.AmplitudeStart, p.AmplitudeIncreasing, p.AmplitudeStepDuration)
		v.lengthEnv.Reset(p.LengthEnabled, p.LengthDuration)
		if v.sweepEnv != nil {
			v.sweepEnv.Reset(p.Frequency, p.SweepIncreasing, p.SweepShifts, p.SweepTime)
		}
	}
	v.dutyCycle = p.DutyCycle

	v.amplitudeEnv.Advance(dt)
	v.lengthEnv.Advance(dt)

	frequency := p.Frequency
	stopped := !p.DACEnabled || v.lengthEnv.Deactivated()
	if v.sweepEnv != nil {
		v.sweepEnv.Advance(dt)
		frequency = v.sweepEnv.Frequency()
		stopped = stopped || v.sweepEnv.Deactivated()
	}

	v.state.Frequency = frequency
	v.state.Amplitude = v.amplitudeEnv.Amplitude()
	v.state.Stopped = stopped
	return stopped
}

// update applies stereo routing and master mute/volume, then pushes the
// result to the sink.
func (v *Voice) update(leftOn, rightOn, muted bool, masterVolume float64) {
	v.state.LeftOn = leftOn
	v.state.RightOn = rightOn
	v.state.Muted = muted

	pan := 0.0
	switch {
	case leftOn && !rightOn:
		pan = -1
	case rightOn && !leftOn:
		pan = 1
	}
	v.state.Pan = pan

	v.applyToSink(masterVolume)
}

func (v *Voice) applyToSink(masterVolume float64) {
	amplitude := v.state.Amplitude * masterVolume
	if v.state.Muted || v.state.Stopped || !(v.state.LeftOn || v.state.RightOn) {
		amplitude = 0
	}

	v.sink.RampFrequency(v.state.Frequency, ampRampSeconds)
	v.sink.RampAmplitude(amplitude, ampRampSeconds)
	v.sink.RampPan(v.state.Pan, ampRampSeconds)

	if pulse, ok := v.sink.(PulseSink); ok {
		pulse.SetPulseWidth(v.dutyCycle)
	}
}

func (v *Voice) applyWavetable(samples [waveformSampleCount]float64) {
	if wave, ok := v.sink.(WaveSink); ok {
		wave.SetWavetable(samples)
	}
}

// Status reports the voice's last-computed state, for debug views.
func (v *Voice) Status() VoiceState {
	return v.state
}
