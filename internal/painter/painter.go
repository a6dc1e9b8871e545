// Package painter renders a compiled Sequence as a one-dimensional
// strip of Piet codel colours, one block per emitted instruction. It
// is a supplemental visualizer, not the real Piet painter: there is no
// codel geometry, no branch tracks, and no PNG emission, only the
// standard 6-hue/3-lightness colour-differential walk a reader can
// use to sanity-check the instruction stream at a glance.
package painter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cjayross/pietc/internal/code"
	"github.com/cjayross/pietc/internal/compiler"
)

// colorVals is the standard Piet 6x3 colour table: six hues (red,
// yellow, green, cyan, blue, purple), each in light/normal/dark.
var colorVals = [6][3][3]uint8{
	{{255, 192, 192}, {255, 0, 0}, {192, 0, 0}},
	{{255, 255, 192}, {255, 255, 0}, {192, 192, 0}},
	{{192, 255, 192}, {0, 255, 0}, {0, 192, 0}},
	{{192, 255, 255}, {0, 255, 255}, {0, 192, 192}},
	{{192, 192, 255}, {0, 0, 255}, {0, 0, 192}},
	{{255, 192, 255}, {255, 0, 255}, {192, 0, 192}},
}

const (
	hueCount       = 6
	lightnessCount = 3
)

// flatten walks a Sequence's Items in program order, inlining every
// resolved reference (a nested Sequence, MacroSequence, or an already
// simulation-resolved Conditional) so the whole instruction stream can
// be painted as one strip. An unresolved Conditional contributes
// nothing: it was never executed, so it has no colour.
func flatten(seq *compiler.Sequence) []code.Instruction {
	var out []code.Instruction
	for _, item := range seq.Items {
		if item.Instr != nil {
			out = append(out, *item.Instr)
			continue
		}
		switch ref := item.Ref.(type) {
		case *compiler.MacroSequence:
			out = append(out, flatten(ref.Sequence)...)
		case *compiler.Sequence:
			out = append(out, flatten(ref)...)
		case *compiler.Conditional:
			if ref.HasChoice() {
				// SetChoice is idempotent once resolved: the truthy
				// argument is ignored and the cached branch returned.
				out = append(out, flatten(ref.SetChoice(true))...)
			}
		}
	}
	return out
}

// RenderSequence paints seq's fully flattened instruction stream as a
// horizontal strip of coloured terminal blocks, one per instruction,
// walking the standard colour-differential table from a fixed
// starting hue the way the underlying Piet machine would.
func RenderSequence(seq *compiler.Sequence) string {
	instrs := flatten(seq)
	if len(instrs) == 0 {
		return ""
	}

	var strip strings.Builder
	hue, lightness := 0, 0
	for _, instr := range instrs {
		def, err := code.Lookup(instr.Op)
		if err != nil {
			continue
		}
		hue = ((hue+def.HueShift)%hueCount + hueCount) % hueCount
		lightness = ((lightness+def.LightnessShift)%lightnessCount + lightnessCount) % lightnessCount
		rgb := colorVals[hue][lightness]
		block := lipgloss.NewStyle().
			Background(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2]))).
			Render("  ")
		strip.WriteString(block)
	}
	return strip.String()
}
