// Package code defines the target instruction set: the closed tagged
// union of Piet opcodes the evaluator emits and the simulator executes.
// Each opcode carries a fixed colour-differential pair (hue-shift,
// lightness-shift in the standard 6x3 Piet command table) consumed only
// by the downstream painter; the core treats opcodes as opaque tags
// except Push, which alone carries an integer operand.
package code

import "fmt"

// Op identifies one Piet instruction.
type Op int

const (
	Push Op = iota
	Pop
	Add
	Subtract
	Multiply
	Divide
	Mod
	Not
	Greater
	Pointer
	Switch
	Duplicate
	Roll
	InInt
	In
	OutInt
	Out
)

// Definition describes one Op: its display name, whether it carries an
// operand, and its position in the Piet colour-differential table.
type Definition struct {
	Name           string
	HasOperand     bool
	HueShift       int
	LightnessShift int
}

var definitions = map[Op]*Definition{
	Push:      {"push", true, 0, 1},
	Pop:       {"pop", false, 0, 2},
	Add:       {"add", false, 1, 0},
	Subtract:  {"subtract", false, 1, 1},
	Multiply:  {"multiply", false, 1, 2},
	Divide:    {"divide", false, 2, 0},
	Mod:       {"mod", false, 2, 1},
	Not:       {"not", false, 2, 2},
	Greater:   {"greater", false, 3, 0},
	Pointer:   {"pointer", false, 3, 1},
	Switch:    {"switch", false, 3, 2},
	Duplicate: {"duplicate", false, 4, 0},
	Roll:      {"roll", false, 4, 1},
	InInt:     {"in_int", false, 4, 2},
	In:        {"in", false, 5, 0},
	OutInt:    {"out_int", false, 5, 1},
	Out:       {"out", false, 5, 2},
}

// Lookup returns the Definition for op, or an error if op is not one of
// the seventeen defined opcodes (the sixteen nullary ones plus the
// operand-carrying Push) — constructing an opcode by an unknown name
// is an internal invariant violation per the error design.
func Lookup(op Op) (*Definition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("code: opcode %d undefined", op)
	}
	return def, nil
}

// Instruction is one emitted instruction: an Op plus, for Push only, an
// integer operand.
type Instruction struct {
	Op      Op
	Operand int64
}

// MakePush builds a Push instruction carrying n.
func MakePush(n int64) Instruction { return Instruction{Op: Push, Operand: n} }

// Make builds a nullary instruction for op. It panics if op is Push,
// which must carry an operand and should be built with MakePush.
func Make(op Op) Instruction {
	if op == Push {
		panic("code: Push requires an operand, use MakePush")
	}
	return Instruction{Op: op}
}

func (i Instruction) String() string {
	def, err := Lookup(i.Op)
	if err != nil {
		return fmt.Sprintf("ERROR: %s", err)
	}
	if def.HasOperand {
		return fmt.Sprintf("%s %d", def.Name, i.Operand)
	}
	return def.Name
}

// Instructions is a flat, ordered stream of emitted instructions — the
// compiler's final output (§6).
type Instructions []Instruction

func (ins Instructions) String() string {
	var out string
	for i, instr := range ins {
		out += fmt.Sprintf("%04d %s\n", i, instr)
	}
	return out
}
