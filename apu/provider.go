package apu

// Debug is the inspection and muting surface a frontend uses without
// reaching into APU internals; APU implements it directly.
type Debug interface {
	MuteVoice(index int, muted bool)
	SoloVoice(index int)
	UnmuteAll()
	VoiceStatus() [4]bool
}

var _ Debug = (*APU)(nil)
