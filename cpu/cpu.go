// Package cpu is the single-step interpreter: it reads one opcode from
// the soup at an organism's instruction pointer, mutates the organism's
// registers/stack/IP, and reports the outcome as an Effect the simulator
// must resolve.
package cpu

import (
	"github.com/tlinden-labs/tierrasoup/instruction"
	"github.com/tlinden-labs/tierrasoup/organism"
	"github.com/tlinden-labs/tierrasoup/soup"
)

// MaxSearch bounds how far template search looks for a complement match.
const MaxSearch = 200

// EffectKind tags the result of a single Step call.
type EffectKind int

const (
	Continue EffectKind = iota
	Dead
	Malloc
	DivideEffect
)

// Effect is the tagged value Step returns. Size is only meaningful when
// Kind == Malloc.
type Effect struct {
	Kind EffectKind
	Size int
}

// Step executes exactly one instruction for org against s and returns the
// effect the simulator must resolve. Most opcodes advance the organism's
// IP as part of completing; JmpB/JmpF/Call/Ret on success, AdrB/AdrF
// always, and MallocA/Divide suppress that auto-advance.
func Step(org *organism.Organism, s *soup.Soup) Effect {
	if !org.Alive {
		return Effect{Kind: Dead}
	}

	inst := s.Read(org.IP)
	advanceIP := true

	switch inst {
	case instruction.Nop0, instruction.Nop1:
		// no state change

	case instruction.IfCZ:
		if org.CX != 0 {
			org.IncrementIP()
		}

	case instruction.JmpB:
		org.IncrementIP()
		template := s.CollectTemplate(org.IP)
		if addr, ok := s.FindTemplateBackward(org.IP, template, MaxSearch); ok {
			org.SetIP(addr)
			advanceIP = false
		} else {
			org.Errors++
		}

	case instruction.JmpF:
		org.IncrementIP()
		template := s.CollectTemplate(org.IP)
		if addr, ok := s.FindTemplateForward(org.IP, template, MaxSearch); ok {
			org.SetIP(addr)
			advanceIP = false
		} else {
			org.Errors++
		}

	case instruction.Call:
		org.IncrementIP()
		template := s.CollectTemplate(org.IP)
		if addr, ok := s.FindTemplateForward(org.IP, template, MaxSearch); ok {
			if org.Push(org.IP) {
				org.SetIP(addr)
				advanceIP = false
			}
		} else {
			org.Errors++
		}

	case instruction.Ret:
		if addr, ok := org.Pop(); ok {
			org.SetIP(addr)
			advanceIP = false
		}

	case instruction.MovDC:
		addr := org.Address + (org.CX % org.Size)
		org.DX = s.Read(addr).ToInt()

	case instruction.MovCD:
		// addr is always within [Address, Address+Size) by construction, so
		// the IsAddressValid guard below can never take the else branch;
		// kept because the original implementation carries the same check.
		addr := org.Address + (org.CX % org.Size)
		toWrite := instruction.FromInt(org.DX % instruction.Count)
		if org.IsAddressValid(addr) {
			s.Write(addr, toWrite)
		} else {
			org.Errors++
		}

	case instruction.Adr:
		org.AX = org.IP

	case instruction.AdrB:
		org.IncrementIP()
		template := s.CollectTemplate(org.IP)
		if addr, ok := s.FindTemplateBackward(org.IP, template, MaxSearch); ok {
			org.AX = addr
		} else {
			org.Errors++
		}
		advanceIP = false

	case instruction.AdrF:
		org.IncrementIP()
		template := s.CollectTemplate(org.IP)
		if addr, ok := s.FindTemplateForward(org.IP, template, MaxSearch); ok {
			org.AX = addr
		} else {
			org.Errors++
		}
		advanceIP = false

	case instruction.IncA:
		org.AX = (org.AX + 1) % s.Size()
	case instruction.IncB:
		org.BX = (org.BX + 1) % s.Size()
	case instruction.IncC:
		org.CX = (org.CX + 1) % s.Size()
	case instruction.DecC:
		if org.CX > 0 {
			org.CX--
		} else {
			org.CX = s.Size() - 1
		}

	case instruction.MallocA:
		return Effect{Kind: Malloc, Size: org.AX}

	case instruction.Divide:
		return Effect{Kind: DivideEffect}

	case instruction.PushA:
		org.Push(org.AX)
	case instruction.PushB:
		org.Push(org.BX)
	case instruction.PushC:
		org.Push(org.CX)
	case instruction.PushD:
		org.Push(org.DX)

	case instruction.PopA:
		org.AX, _ = org.Pop()
	case instruction.PopB:
		org.BX, _ = org.Pop()
	case instruction.PopC:
		org.CX, _ = org.Pop()
	case instruction.PopD:
		org.DX, _ = org.Pop()

	case instruction.Halt:
		org.Kill()
		return Effect{Kind: Dead}
	}

	if advanceIP {
		org.IncrementIP()
	}

	return Effect{Kind: Continue}
}
