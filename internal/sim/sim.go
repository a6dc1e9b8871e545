// Package sim executes the flat Item stream a CompilationUnit produces:
// a minimal stack machine over int64, plus inline expansion of the
// Sequence/Conditional references the compiler left unresolved at
// emission time. It has no awareness of Piet's 2D codel geometry —
// that belongs to the painter — only of the same linear control flow
// the source's sim.py already walks.
package sim

import (
	"fmt"

	"github.com/cjayross/pietc/internal/code"
	"github.com/cjayross/pietc/internal/compiler"
)

// Simulator is a single run's mutable state: never a package global, so
// concurrent or repeated simulations never interfere with each other.
type Simulator struct {
	stack []int64
	out   []int64
	unit  *compiler.CompilationUnit
}

// New creates a Simulator that resolves any still-unexpanded
// Sequence/Conditional references it encounters against unit.
func New(unit *compiler.CompilationUnit) *Simulator {
	return &Simulator{unit: unit}
}

// Output returns every value written by an Out/OutInt instruction
// during the run, in emission order.
func (s *Simulator) Output() []int64 { return append([]int64(nil), s.out...) }

// Stack returns the final stack contents, bottom first.
func (s *Simulator) Stack() []int64 { return append([]int64(nil), s.stack...) }

func (s *Simulator) push(v int64) { s.stack = append(s.stack, v) }

func (s *Simulator) pop() (int64, error) {
	if len(s.stack) == 0 {
		return 0, fmt.Errorf("sim: pop on empty stack")
	}
	n := len(s.stack) - 1
	v := s.stack[n]
	s.stack = s.stack[:n]
	return v, nil
}

// Run executes every Item of seq in order, expanding any nested
// Sequence/Conditional reference it meets, per the source's
// isinstance-dispatching simulate() loop.
func (s *Simulator) Run(seq *compiler.Sequence) error {
	for _, item := range seq.Items {
		if err := s.runItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) runItem(item compiler.Item) error {
	if item.Ref != nil {
		return s.runRef(item.Ref)
	}
	return s.runInstruction(*item.Instr)
}

func (s *Simulator) runRef(v compiler.Value) error {
	switch ref := v.(type) {
	case *compiler.Conditional:
		return s.runConditional(ref)
	case *compiler.MacroSequence:
		return s.runSequenceRef(ref.Sequence)
	case *compiler.Sequence:
		return s.runSequenceRef(ref)
	default:
		return fmt.Errorf("sim: unexpected reference value of type %T", v)
	}
}

func (s *Simulator) runSequenceRef(seq *compiler.Sequence) error {
	if _, err := s.unit.Expand(seq); err != nil {
		return err
	}
	return s.Run(seq)
}

func (s *Simulator) runConditional(c *compiler.Conditional) error {
	test, err := s.pop()
	if err != nil {
		return err
	}
	branchSeq := c.SetChoice(test != 0)
	if _, err := s.unit.Expand(branchSeq); err != nil {
		return err
	}
	return s.Run(branchSeq)
}

func (s *Simulator) runInstruction(instr code.Instruction) error {
	switch instr.Op {
	case code.Push:
		s.push(instr.Operand)
	case code.Pop:
		_, err := s.pop()
		return err
	case code.Add:
		return s.binary(func(l, r int64) (int64, error) { return l + r, nil })
	case code.Subtract:
		return s.binary(func(l, r int64) (int64, error) { return l - r, nil })
	case code.Multiply:
		return s.binary(func(l, r int64) (int64, error) { return l * r, nil })
	case code.Divide:
		return s.binary(func(l, r int64) (int64, error) {
			if r == 0 {
				return 0, fmt.Errorf("sim: divide by zero")
			}
			return l / r, nil // Go's / already truncates toward zero for int64
		})
	case code.Mod:
		return s.binary(func(l, r int64) (int64, error) {
			if r == 0 {
				return 0, fmt.Errorf("sim: mod by zero")
			}
			return l % r, nil
		})
	case code.Not:
		v, err := s.pop()
		if err != nil {
			return err
		}
		if v == 0 {
			s.push(1)
		} else {
			s.push(0)
		}
	case code.Greater:
		return s.binary(func(l, r int64) (int64, error) {
			if l > r {
				return 1, nil
			}
			return 0, nil
		})
	case code.Duplicate:
		if len(s.stack) == 0 {
			return fmt.Errorf("sim: duplicate on empty stack")
		}
		s.push(s.stack[len(s.stack)-1])
	case code.Roll:
		return s.roll()
	case code.InInt, code.In:
		return fmt.Errorf("sim: input instructions are not supported by this simulator")
	case code.OutInt, code.Out:
		v, err := s.pop()
		if err != nil {
			return err
		}
		s.out = append(s.out, v)
	case code.Pointer, code.Switch:
		// Real branch-direction instructions belong to the 2D painter's
		// geometry; this linear simulator resolves branching entirely
		// through Conditional references and never emits these itself.
		return fmt.Errorf("sim: %s has no linear-stream semantics here", instr.Op)
	default:
		return fmt.Errorf("sim: unhandled opcode %s", instr.Op)
	}
	return nil
}

// binary pops right then left (the instruction's operands were pushed
// left, then right) and pushes op(left, right).
func (s *Simulator) binary(op func(left, right int64) (int64, error)) error {
	right, err := s.pop()
	if err != nil {
		return err
	}
	left, err := s.pop()
	if err != nil {
		return err
	}
	v, err := op(left, right)
	if err != nil {
		return err
	}
	s.push(v)
	return nil
}

// roll pops count then depth (count popped first, per the documented
// operand order), then rotates the top depth+1 stack elements by count
// positions toward the top.
func (s *Simulator) roll() error {
	count, err := s.pop()
	if err != nil {
		return err
	}
	depth, err := s.pop()
	if err != nil {
		return err
	}
	if depth < 0 {
		return fmt.Errorf("sim: roll depth must be non-negative, got %d", depth)
	}
	if int64(len(s.stack)) < depth+1 {
		return fmt.Errorf("sim: roll depth %d exceeds stack size %d", depth, len(s.stack))
	}
	n := depth + 1
	start := int64(len(s.stack)) - n
	window := s.stack[start:]
	shift := ((count % n) + n) % n
	rotated := make([]int64, n)
	for i := int64(0); i < n; i++ {
		rotated[(i+shift)%n] = window[i]
	}
	copy(window, rotated)
	return nil
}
