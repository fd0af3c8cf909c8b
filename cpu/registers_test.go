package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterPairs_RoundTrip(t *testing.T) {
	c := &CPU{}

	c.setBC(0xBEEF)
	assert.Equal(t, uint16(0xBEEF), c.getBC())

	c.setDE(0x1234)
	assert.Equal(t, uint16(0x1234), c.getDE())

	c.setHL(0xCAFE)
	assert.Equal(t, uint16(0xCAFE), c.getHL())
}

func TestSetAF_MasksLowNibbleOfF(t *testing.T) {
	c := &CPU{}
	c.setAF(0x12FF)
	assert.Equal(t, uint8(0xF0), c.f, "low nibble of F is never settable")
	assert.Equal(t, uint16(0x12F0), c.getAF())
}

func TestFlagHelpers(t *testing.T) {
	c := &CPU{}
	c.setFlag(flagZ)
	assert.True(t, c.isSet(flagZ))
	assert.False(t, c.isSet(flagN))

	c.setFlagIf(flagC, false)
	assert.False(t, c.isSet(flagC))
	c.setFlagIf(flagC, true)
	assert.True(t, c.isSet(flagC))

	c.clearFlag(flagZ)
	assert.False(t, c.isSet(flagZ))

	assert.Equal(t, uint8(1), c.bitOf(flagC))
	assert.Equal(t, uint8(0), c.bitOf(flagZ))
}

func TestFlagString(t *testing.T) {
	s := State{F: 0}
	assert.Equal(t, "----", s.FlagString())

	s = State{F: uint8(flagZ) | uint8(flagC)}
	assert.Equal(t, "Z--C", s.FlagString())
}
