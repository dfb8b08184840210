package organism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncrementIPWrapsWithinHomeRegion(t *testing.T) {
	o := New(1, 100, 4, 0, nil)
	assert.Equal(t, 100, o.IP)
	o.IncrementIP()
	assert.Equal(t, 101, o.IP)
	o.IncrementIP()
	o.IncrementIP()
	assert.Equal(t, 103, o.IP)
	o.IncrementIP()
	assert.Equal(t, 100, o.IP, "IP must wrap back to Address after Size cells")
	assert.Equal(t, 4, o.Cycles)
}

func TestSetIPWithinRegionIsAccepted(t *testing.T) {
	o := New(1, 100, 10, 0, nil)
	o.SetIP(105)
	assert.Equal(t, 105, o.IP)
}

func TestSetIPOutOfRegionIsNormalized(t *testing.T) {
	o := New(1, 100, 10, 0, nil)
	o.SetIP(237) // 237 % 10 == 7
	assert.Equal(t, 107, o.IP)
}

func TestStackOverflowBumpsErrors(t *testing.T) {
	o := New(1, 0, 10, 0, nil)
	for i := 0; i < MaxStackDepth; i++ {
		assert.True(t, o.Push(i))
	}
	assert.Equal(t, 0, o.Errors)
	assert.False(t, o.Push(99))
	assert.Equal(t, 1, o.Errors)
	assert.Len(t, o.Stack, MaxStackDepth)
}

func TestStackUnderflowBumpsErrorsAndReturnsZero(t *testing.T) {
	o := New(1, 0, 10, 0, nil)
	v, ok := o.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, 1, o.Errors)
}

func TestPushPopRoundTrip(t *testing.T) {
	o := New(1, 0, 10, 0, nil)
	o.Push(42)
	v, ok := o.Pop()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestIsAddressValid(t *testing.T) {
	o := New(1, 50, 10, 0, nil)
	assert.True(t, o.IsAddressValid(50))
	assert.True(t, o.IsAddressValid(59))
	assert.False(t, o.IsAddressValid(60))
	assert.False(t, o.IsAddressValid(49))
}

func TestConsumeEnergy(t *testing.T) {
	o := New(1, 0, 10, 0, nil)
	o.ResetEnergy(2)
	assert.True(t, o.ConsumeEnergy())
	assert.True(t, o.ConsumeEnergy())
	assert.False(t, o.ConsumeEnergy())
}

func TestKillSetsAliveFalse(t *testing.T) {
	o := New(1, 0, 10, 0, nil)
	assert.True(t, o.Alive)
	o.Kill()
	assert.False(t, o.Alive)
}
