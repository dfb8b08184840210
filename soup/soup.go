// Package soup implements the circular byte-addressable memory organisms
// live in: opcode storage, allocation tracking, template search, and the
// handful of mutation/copy primitives the CPU and simulator drive it with.
package soup

import (
	"math/rand"

	"github.com/bits-and-blooms/bitset"

	"github.com/tlinden-labs/tierrasoup/instruction"
)

// maxTemplateLen bounds how many leading template cells a search will
// ever consider, matching the CPU's own template-reading cap.
const maxTemplateLen = 10

// Soup is the shared memory all organisms execute and mutate in place.
type Soup struct {
	cells     []instruction.Instruction
	allocated *bitset.BitSet
	size      uint
}

// New builds an empty soup of the given size, every cell Nop0 and every
// cell free.
func New(size int) *Soup {
	return &Soup{
		cells:     make([]instruction.Instruction, size),
		allocated: bitset.New(uint(size)),
		size:      uint(size),
	}
}

// Size returns the number of cells in the soup.
func (s *Soup) Size() int {
	return int(s.size)
}

func (s *Soup) normalize(addr int) uint {
	n := int(s.size)
	m := addr % n
	if m < 0 {
		m += n
	}
	return uint(m)
}

// Read returns the opcode at addr, wrapping addr into [0, size).
func (s *Soup) Read(addr int) instruction.Instruction {
	return s.cells[s.normalize(addr)]
}

// Write stores inst at addr, wrapping addr into [0, size).
func (s *Soup) Write(addr int, inst instruction.Instruction) {
	s.cells[s.normalize(addr)] = inst
}

// NormalizeAddr wraps an address into [0, size).
func (s *Soup) NormalizeAddr(addr int) int {
	return int(s.normalize(addr))
}

// complementOf expands a template into its complement sequence, dropping
// any non-template members (there should be none, callers only ever pass
// templates collected via IsTemplate scans).
func complementOf(template []instruction.Instruction) []instruction.Instruction {
	out := make([]instruction.Instruction, 0, len(template))
	for _, inst := range template {
		if c, ok := inst.Complement(); ok {
			out = append(out, c)
		}
	}
	return out
}

// FindTemplateForward scans offsets 1..=maxSearch ahead of cursor for the
// complement of template, returning the address just past the match.
func (s *Soup) FindTemplateForward(cursor int, template []instruction.Instruction, maxSearch int) (int, bool) {
	complement := complementOf(template)
	if len(complement) == 0 {
		return 0, false
	}

	for offset := 1; offset <= maxSearch; offset++ {
		addr := s.normalize(cursor + offset)
		if s.matchesAt(int(addr), complement) {
			return s.NormalizeAddr(int(addr) + len(complement)), true
		}
	}
	return 0, false
}

// FindTemplateBackward scans offsets 1..=maxSearch behind cursor for the
// complement of template, returning the address just past the match.
func (s *Soup) FindTemplateBackward(cursor int, template []instruction.Instruction, maxSearch int) (int, bool) {
	complement := complementOf(template)
	if len(complement) == 0 {
		return 0, false
	}

	for offset := 1; offset <= maxSearch; offset++ {
		addr := s.normalize(cursor - offset)
		if s.matchesAt(int(addr), complement) {
			return s.NormalizeAddr(int(addr) + len(complement)), true
		}
	}
	return 0, false
}

func (s *Soup) matchesAt(addr int, complement []instruction.Instruction) bool {
	for i, want := range complement {
		if s.Read(addr+i) != want {
			return false
		}
	}
	return true
}

// Allocate reserves size contiguous cells. It tries up to 100 randomly
// chosen start positions before falling back to a linear scan from 0.
// Returns the base address and true on success.
func (s *Soup) Allocate(size int, rng *rand.Rand) (int, bool) {
	if size <= 0 || size > int(s.size) {
		return 0, false
	}

	for attempt := 0; attempt < 100; attempt++ {
		start := rng.Intn(int(s.size))
		if s.isRangeFree(start, size) {
			s.MarkAllocated(start, size, true)
			return start, true
		}
	}

	for start := 0; start < int(s.size); start++ {
		if s.isRangeFree(start, size) {
			s.MarkAllocated(start, size, true)
			return start, true
		}
	}

	return 0, false
}

func (s *Soup) isRangeFree(start, size int) bool {
	for i := 0; i < size; i++ {
		if s.allocated.Test(s.normalize(start + i)) {
			return false
		}
	}
	return true
}

// MarkAllocated is the low-level setter trusted callers (Allocate, Free,
// and nothing else) use to flip allocation bits directly.
func (s *Soup) MarkAllocated(start, size int, flag bool) {
	for i := 0; i < size; i++ {
		addr := s.normalize(start + i)
		if flag {
			s.allocated.Set(addr)
		} else {
			s.allocated.Clear(addr)
		}
	}
}

// Free clears the allocation bits for [start, start+size).
func (s *Soup) Free(start, size int) {
	s.MarkAllocated(start, size, false)
}

// CopyBlock copies size cells from src to dst, buffering first so
// overlapping ranges are handled safely.
func (s *Soup) CopyBlock(src, dst, size int) {
	buf := make([]instruction.Instruction, size)
	for i := 0; i < size; i++ {
		buf[i] = s.Read(src + i)
	}
	for i, inst := range buf {
		s.Write(dst+i, inst)
	}
}

// MaybeMutate writes a uniformly random opcode at addr with probability p.
func (s *Soup) MaybeMutate(addr int, p float64, rng *rand.Rand) bool {
	if rng.Float64() >= p {
		return false
	}
	s.Write(addr, instruction.FromInt(rng.Intn(instruction.Count)))
	return true
}

// CountFreeCells returns how many cells are currently unallocated.
func (s *Soup) CountFreeCells() int {
	return int(s.size) - int(s.allocated.Count())
}

// GetSlice returns len cells starting at start, wrapping as needed. Used
// by observers; never mutates the soup.
func (s *Soup) GetSlice(start, length int) []instruction.Instruction {
	out := make([]instruction.Instruction, length)
	for i := 0; i < length; i++ {
		out[i] = s.Read(start + i)
	}
	return out
}

// CollectTemplate reads the maximal run of template opcodes starting at
// pos, bounded by maxTemplateLen cells.
func (s *Soup) CollectTemplate(pos int) []instruction.Instruction {
	template := make([]instruction.Instruction, 0, maxTemplateLen)
	for i := 0; i < maxTemplateLen; i++ {
		inst := s.Read(pos + i)
		if !inst.IsTemplate() {
			break
		}
		template = append(template, inst)
	}
	return template
}
