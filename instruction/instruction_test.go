package instruction

import "testing"

import "github.com/stretchr/testify/assert"

func TestRoundTrip(t *testing.T) {
	for v := 0; v < Count; v++ {
		inst := FromInt(v)
		assert.Equal(t, v, inst.ToInt())
	}
}

func TestFromIntOutOfRangeDecodesToNop0(t *testing.T) {
	assert.Equal(t, Nop0, FromInt(-1))
	assert.Equal(t, Nop0, FromInt(Count))
	assert.Equal(t, Nop0, FromInt(1000))
}

func TestIsTemplate(t *testing.T) {
	assert.True(t, Nop0.IsTemplate())
	assert.True(t, Nop1.IsTemplate())
	assert.False(t, Halt.IsTemplate())
	assert.False(t, IncA.IsTemplate())
}

func TestComplementInvolution(t *testing.T) {
	for _, inst := range []Instruction{Nop0, Nop1} {
		c, ok := inst.Complement()
		assert.True(t, ok)
		c2, ok := c.Complement()
		assert.True(t, ok)
		assert.Equal(t, inst, c2)
	}
}

func TestComplementUndefinedForNonTemplates(t *testing.T) {
	_, ok := Halt.Complement()
	assert.False(t, ok)
	_, ok = IncA.Complement()
	assert.False(t, ok)
}

func TestComplementPairs(t *testing.T) {
	c0, _ := Nop0.Complement()
	assert.Equal(t, Nop1, c0)
	c1, _ := Nop1.Complement()
	assert.Equal(t, Nop0, c1)
}
