// Package organism holds the per-program execution state a CPU mutates
// one instruction at a time: instruction pointer, registers, operand
// stack, and the bookkeeping counters that make faults and lineage
// observable from outside the VM.
package organism

import "github.com/tlinden-labs/tierrasoup/instruction"

// soupReader is the slice of *soup.Soup this package needs; declared
// locally to avoid importing soup just for one helper's signature.
type soupReader interface {
	CollectTemplate(pos int) []instruction.Instruction
}

// MaxStackDepth bounds the operand stack every organism carries.
const MaxStackDepth = 10

// Organism is one self-replicating program living in a soup region
// [Address, Address+Size).
type Organism struct {
	ID         int
	Address    int
	Size       int
	IP         int
	AX, BX, CX, DX int
	Stack      []int

	Generation int
	ParentID   *int

	Cycles int
	Errors int
	Alive  bool
	Energy int
}

// New creates a fresh organism occupying [address, address+size), IP at
// the start of its own region.
func New(id, address, size, generation int, parentID *int) *Organism {
	return &Organism{
		ID:         id,
		Address:    address,
		Size:       size,
		IP:         address,
		Generation: generation,
		ParentID:   parentID,
		Alive:      true,
	}
}

// IncrementIP advances the instruction pointer within the organism's home
// region, wrapping back to Address after Size cells.
func (o *Organism) IncrementIP() {
	offset := o.IP - o.Address
	if offset < 0 {
		offset = 0
	}
	o.IP = o.Address + ((offset + 1) % o.Size)
	o.Cycles++
}

// SetIP jumps to addr if it already lies in the home region; otherwise it
// normalizes addr into the region by taking it modulo Size. This is how a
// soup-wide address computed by template search lands back inside the
// organism's own genome.
func (o *Organism) SetIP(addr int) {
	if addr >= o.Address && addr < o.Address+o.Size {
		o.IP = addr
		return
	}
	offset := addr % o.Size
	if offset < 0 {
		offset += o.Size
	}
	o.IP = o.Address + offset
}

// Push appends value to the operand stack. On overflow (depth already at
// MaxStackDepth) it bumps Errors and leaves the stack unchanged.
func (o *Organism) Push(value int) bool {
	if len(o.Stack) >= MaxStackDepth {
		o.Errors++
		return false
	}
	o.Stack = append(o.Stack, value)
	return true
}

// Pop removes and returns the top of the operand stack. On underflow it
// bumps Errors and returns 0.
func (o *Organism) Pop() (int, bool) {
	if len(o.Stack) == 0 {
		o.Errors++
		return 0, false
	}
	top := len(o.Stack) - 1
	value := o.Stack[top]
	o.Stack = o.Stack[:top]
	return value, true
}

// Kill marks the organism dead.
func (o *Organism) Kill() {
	o.Alive = false
}

// ResetEnergy grants a fresh time slice.
func (o *Organism) ResetEnergy(amount int) {
	o.Energy = amount
}

// ConsumeEnergy spends one unit of the current time slice, returning
// false once exhausted.
func (o *Organism) ConsumeEnergy() bool {
	if o.Energy <= 0 {
		return false
	}
	o.Energy--
	return true
}

// IsAddressValid reports whether addr lies within the organism's home
// region. This is a non-modular, absolute bounds check used to guard
// writes via MovCD.
func (o *Organism) IsAddressValid(addr int) bool {
	return addr >= o.Address && addr < o.Address+o.Size
}

// CollectTemplate reads the maximal run of template opcodes starting at
// the organism's current IP, the same scan the CPU performs internally
// before a jump/call/address lookup, exposed for external inspection.
func (o *Organism) CollectTemplate(s soupReader) []instruction.Instruction {
	return s.CollectTemplate(o.IP)
}
