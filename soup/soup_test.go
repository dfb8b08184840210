package soup

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlinden-labs/tierrasoup/instruction"
)

func TestReadWriteWrapsAroundSoupSize(t *testing.T) {
	s := New(16)
	s.Write(20, instruction.Halt) // 20 % 16 == 4
	assert.Equal(t, instruction.Halt, s.Read(4))
	assert.Equal(t, instruction.Halt, s.Read(-12)) // -12 % 16 == 4
}

func TestNormalizeAddrHandlesNegatives(t *testing.T) {
	s := New(10)
	assert.Equal(t, 7, s.NormalizeAddr(-3))
	assert.Equal(t, 3, s.NormalizeAddr(13))
	assert.Equal(t, 0, s.NormalizeAddr(0))
}

func TestFindTemplateForwardLocatesComplement(t *testing.T) {
	s := New(1000)
	cursor := 10
	// template is a single Nop0 at cursor; its complement (Nop1) sits 38
	// cells ahead, followed by a non-template cell capping the scan.
	s.Write(cursor, instruction.Nop0)
	s.Write(cursor+38, instruction.Nop1)
	s.Write(cursor+39, instruction.Halt)

	template := []instruction.Instruction{instruction.Nop0}
	addr, ok := s.FindTemplateForward(cursor, template, 200)
	require.True(t, ok)
	assert.Equal(t, cursor+39, addr)

	_, ok = s.FindTemplateBackward(cursor, template, 200)
	assert.False(t, ok, "no complement exists behind the cursor")
}

func TestFindTemplateForwardRespectsMaxSearch(t *testing.T) {
	s := New(200)
	cursor := 10
	s.Write(cursor+38, instruction.Nop1)

	template := []instruction.Instruction{instruction.Nop0}
	_, ok := s.FindTemplateForward(cursor, template, 5)
	assert.False(t, ok, "match lies outside the search window")

	_, ok = s.FindTemplateBackward(cursor, template, 5)
	assert.False(t, ok)
}

func TestFindTemplateForwardEmptyTemplateFails(t *testing.T) {
	s := New(50)
	_, ok := s.FindTemplateForward(0, nil, 10)
	assert.False(t, ok)
}

func TestAllocateReturnsDisjointRanges(t *testing.T) {
	s := New(64)
	rng := rand.New(rand.NewSource(1))

	a, ok := s.Allocate(10, rng)
	require.True(t, ok)
	b, ok := s.Allocate(10, rng)
	require.True(t, ok)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 64-20, s.CountFreeCells())
}

func TestAllocateFallsBackToLinearScanWhenNearlyFull(t *testing.T) {
	s := New(20)
	rng := rand.New(rand.NewSource(2))

	// Fill everything except a 2-cell gap at [10, 12).
	s.MarkAllocated(0, 10, true)
	s.MarkAllocated(12, 8, true)

	addr, ok := s.Allocate(2, rng)
	require.True(t, ok)
	assert.Equal(t, 10, addr)
}

func TestAllocateFailsWhenNoRoomFits(t *testing.T) {
	s := New(10)
	rng := rand.New(rand.NewSource(3))
	s.MarkAllocated(0, 9, true)

	_, ok := s.Allocate(2, rng)
	assert.False(t, ok)
}

func TestAllocateRejectsOversizedOrNonPositiveRequests(t *testing.T) {
	s := New(10)
	rng := rand.New(rand.NewSource(4))

	_, ok := s.Allocate(0, rng)
	assert.False(t, ok)

	_, ok = s.Allocate(11, rng)
	assert.False(t, ok)
}

func TestFreeClearsAllocationBits(t *testing.T) {
	s := New(32)
	rng := rand.New(rand.NewSource(5))

	addr, ok := s.Allocate(8, rng)
	require.True(t, ok)
	assert.Equal(t, 32-8, s.CountFreeCells())

	s.Free(addr, 8)
	assert.Equal(t, 32, s.CountFreeCells())
}

func TestCopyBlockRoundTrips(t *testing.T) {
	s := New(32)
	for i := 0; i < 5; i++ {
		s.Write(i, instruction.FromInt(i+1))
	}

	s.CopyBlock(0, 20, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, s.Read(i), s.Read(20+i))
	}
}

func TestCopyBlockHandlesOverlap(t *testing.T) {
	s := New(32)
	for i := 0; i < 5; i++ {
		s.Write(i, instruction.FromInt(i+1))
	}

	original := make([]instruction.Instruction, 5)
	for i := range original {
		original[i] = s.Read(i)
	}

	s.CopyBlock(0, 2, 5) // overlapping destination
	for i := 0; i < 5; i++ {
		assert.Equal(t, original[i], s.Read(2+i))
	}
}

func TestMaybeMutateProbabilityZeroNeverMutates(t *testing.T) {
	s := New(10)
	s.Write(0, instruction.Halt)
	rng := rand.New(rand.NewSource(6))

	mutated := s.MaybeMutate(0, 0.0, rng)
	assert.False(t, mutated)
	assert.Equal(t, instruction.Halt, s.Read(0))
}

func TestMaybeMutateProbabilityOneAlwaysMutates(t *testing.T) {
	s := New(10)
	rng := rand.New(rand.NewSource(7))

	mutated := s.MaybeMutate(0, 1.0, rng)
	assert.True(t, mutated)
}

func TestCollectTemplateStopsAtNonTemplateCell(t *testing.T) {
	s := New(20)
	s.Write(0, instruction.Nop0)
	s.Write(1, instruction.Nop1)
	s.Write(2, instruction.Halt)

	template := s.CollectTemplate(0)
	assert.Equal(t, []instruction.Instruction{instruction.Nop0, instruction.Nop1}, template)
}

func TestCollectTemplateBoundedByMaxTemplateLen(t *testing.T) {
	s := New(20)
	for i := 0; i < 20; i++ {
		s.Write(i, instruction.Nop0)
	}

	template := s.CollectTemplate(0)
	assert.Len(t, template, maxTemplateLen)
}

func TestCountFreeCellsStartsFull(t *testing.T) {
	s := New(100)
	assert.Equal(t, 100, s.CountFreeCells())
}

func TestGetSliceWrapsAroundSoup(t *testing.T) {
	s := New(8)
	s.Write(6, instruction.Nop0)
	s.Write(7, instruction.Nop1)
	s.Write(0, instruction.Halt)

	slice := s.GetSlice(6, 4)
	require.Len(t, slice, 4)
	assert.Equal(t, instruction.Nop0, slice[0])
	assert.Equal(t, instruction.Nop1, slice[1])
	assert.Equal(t, instruction.Halt, slice[2])
}
