package apu

// cyclesPerSecond is the DMG master clock rate; Run converts a T-state
// count to elapsed seconds by dividing by this. The classic 512 Hz
// frame sequencer isn't modeled as a discrete counter here: its length
// (256 Hz), sweep (128 Hz), and envelope (64 Hz) cadences are baked
// directly into the per-register second-valued durations computed in
// apu.go, and voices advance continuously by real elapsed time instead.
const cyclesPerSecond = 4_194_304

// ampRampSeconds is the ramp duration applied to every amplitude,
// frequency, and pan change pushed to a voice's sink.
const ampRampSeconds = 0.010

const waveformSampleCount = 32
