package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd8_HalfAndFullCarry(t *testing.T) {
	r := add8(0x0F, 0x01)
	assert.Equal(t, uint8(0x10), r.value)
	assert.True(t, r.half)
	assert.False(t, r.cy)
	assert.False(t, r.zero)

	r = add8(0xFF, 0x01)
	assert.Equal(t, uint8(0x00), r.value)
	assert.True(t, r.zero)
	assert.True(t, r.half)
	assert.True(t, r.cy)
}

func TestSub8_Borrow(t *testing.T) {
	r := sub8(0x00, 0x01)
	assert.Equal(t, uint8(0xFF), r.value)
	assert.True(t, r.cy)
	assert.True(t, r.half)
	assert.True(t, r.sub)
}

func TestAdc8_IncludesIncomingCarry(t *testing.T) {
	r := adc8(0x0E, 0x01, 1)
	assert.Equal(t, uint8(0x10), r.value)
	assert.True(t, r.half)
}

func TestSbc8_IncludesIncomingCarry(t *testing.T) {
	r := sbc8(0x00, 0x00, 1)
	assert.Equal(t, uint8(0xFF), r.value)
	assert.True(t, r.cy)
	assert.True(t, r.half)
}

func TestBitwiseOps(t *testing.T) {
	assert.True(t, and8(0xF0, 0x0F).zero)
	assert.True(t, and8(0xF0, 0x0F).half)

	r := or8(0xF0, 0x0F)
	assert.Equal(t, uint8(0xFF), r.value)
	assert.False(t, r.half)

	r = xor8(0xFF, 0xFF)
	assert.True(t, r.zero)
}

func TestRotates(t *testing.T) {
	r := rlc8(0x85) // 1000_0101
	assert.Equal(t, uint8(0x0B), r.value)
	assert.True(t, r.cy)

	r = rrc8(0x01)
	assert.Equal(t, uint8(0x80), r.value)
	assert.True(t, r.cy)

	r = rl8(0x80, 0)
	assert.Equal(t, uint8(0x00), r.value)
	assert.True(t, r.cy)
	assert.True(t, r.zero)

	r = rr8(0x01, 1)
	assert.Equal(t, uint8(0x80), r.value)
	assert.True(t, r.cy)
}

func TestShifts(t *testing.T) {
	r := sla8(0x80)
	assert.Equal(t, uint8(0x00), r.value)
	assert.True(t, r.cy)
	assert.True(t, r.zero)

	r = sra8(0x81) // sign bit preserved
	assert.Equal(t, uint8(0xC0), r.value)
	assert.True(t, r.cy)

	r = srl8(0x01)
	assert.Equal(t, uint8(0x00), r.value)
	assert.True(t, r.cy)
	assert.True(t, r.zero)
}

func TestSwap(t *testing.T) {
	r := swap8(0xAB)
	assert.Equal(t, uint8(0xBA), r.value)

	r = swap8(0x00)
	assert.True(t, r.zero)
}

func TestBitTest(t *testing.T) {
	assert.False(t, bitTest(7, 0x80)) // bit 7 is set -> Z clear
	assert.True(t, bitTest(7, 0x00))  // bit 7 is clear -> Z set
}

func TestAdd16_HalfCarryAtBit11(t *testing.T) {
	r := add16(0x0FFF, 0x0001)
	assert.Equal(t, uint16(0x1000), r.value)
	assert.True(t, r.half)
	assert.False(t, r.cy)

	r = add16(0xFFFF, 0x0001)
	assert.Equal(t, uint16(0x0000), r.value)
	assert.True(t, r.cy)
}

func TestDAA_AfterBCDAddition(t *testing.T) {
	// 0x45 + 0x38 = 0x7D raw; DAA corrects to 0x83 in BCD.
	sum := add8(0x45, 0x38)
	r := daa8(sum.value, false, sum.half, sum.cy)
	assert.Equal(t, uint8(0x83), r.value)
	assert.False(t, r.zero)
}

func TestDAA_AfterBCDSubtraction(t *testing.T) {
	diff := sub8(0x50, 0x25) // raw 0x2B
	r := daa8(diff.value, true, diff.half, diff.cy)
	assert.Equal(t, uint8(0x25), r.value)
}

func TestAddSPSigned_NegativeOffset(t *testing.T) {
	r := addSPSigned(0xFFFF, -1)
	assert.Equal(t, uint16(0xFFFE), r.value)
	assert.True(t, r.half)
	assert.True(t, r.cy)
}
