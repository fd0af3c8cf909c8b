package apu

// OscillatorSink is the host-side capability the APU drives; it never
// depends on a concrete audio engine. Every parameter change is a ramp
// so the host can implement it as a smoothed control rather than a
// zipper-noise step.
type OscillatorSink interface {
	Start()
	Stop()
	SetFrequency(hz float64)
	RampFrequency(hz float64, seconds float64)
	SetAmplitude(amplitude float64)
	RampAmplitude(amplitude float64, seconds float64)
}

// Panner is a stereo-position wrapper any voice's sink can offer.
type Panner interface {
	RampPan(pan float64, seconds float64)
}

// Sink is what every voice requires of its collaborator.
type Sink interface {
	OscillatorSink
	Panner
}

// PulseSink is the extra capability pulse-wave voices use to shape duty
// cycle.
type PulseSink interface {
	Sink
	SetPulseWidth(width float64)
}

// WaveSink is the extra capability the custom-wave voice uses to push
// its 32-sample table.
type WaveSink interface {
	Sink
	SetWavetable(samples [waveformSampleCount]float64)
}

// NullSink discards every call. It is a supported state per the
// spec's failure-mode note: amplitude ramps still compute, they just
// produce no sound. Used for headless runs and tests.
type NullSink struct{}

func (NullSink) Start()                                       {}
func (NullSink) Stop()                                        {}
func (NullSink) SetFrequency(float64)                         {}
func (NullSink) RampFrequency(float64, float64)               {}
func (NullSink) SetAmplitude(float64)                         {}
func (NullSink) RampAmplitude(float64, float64)               {}
func (NullSink) RampPan(float64, float64)                     {}
func (NullSink) SetPulseWidth(float64)                        {}
func (NullSink) SetWavetable([waveformSampleCount]float64)    {}

var (
	_ PulseSink = NullSink{}
	_ WaveSink  = NullSink{}
)
