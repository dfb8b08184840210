package simulator

import "github.com/tlinden-labs/tierrasoup/instruction"

// numIncA is the number of IncA instructions the seed organism uses to
// build its own allocation size in AX. The organism's total size is
// baseInstructionCount + numIncA; because the genome includes the IncA
// run that produces the size value, AX can never be made to equal the
// organism's own length (that would require N = overhead + N). The
// ancestor therefore deliberately allocates and copies only numIncA
// cells, so every child is smaller than its parent by the fixed
// overhead. This mirrors the original implementation's ancestor and is
// accepted per the spec notes on child size.
const numIncA = 80

// createAncestor builds the minimum viable self-replicator: four Nop1
// markers, numIncA IncA instructions (sets AX = numIncA), MallocA
// (allocates AX cells, offspring base lands in BX), PushA/PopC (copies
// the allocated size into CX for Divide), Divide, four Nop0 markers.
func createAncestor() []instruction.Instruction {
	prog := make([]instruction.Instruction, 0, 4+numIncA+4+4)
	prog = append(prog, instruction.Nop1, instruction.Nop1, instruction.Nop1, instruction.Nop1)
	for i := 0; i < numIncA; i++ {
		prog = append(prog, instruction.IncA)
	}
	prog = append(prog, instruction.MallocA, instruction.PushA, instruction.PopC, instruction.Divide)
	prog = append(prog, instruction.Nop0, instruction.Nop0, instruction.Nop0, instruction.Nop0)
	return prog
}
