package compiler

import (
	"github.com/cjayross/pietc/internal/env"
	"github.com/cjayross/pietc/internal/sexpr"
)

// Conditional is the deferred value an `if` special form produces: the
// predicate has already been emitted onto the calling Sequence, but
// the chosen branch is not expanded until something later resolves
// which arm won: the simulator pops the predicate value when it reaches
// the Conditional's reference and commits to a branch via SetChoice.
type Conditional struct {
	IfExpr, ElseExpr sexpr.Expr
	Env              *env.Environment
	resolved         bool
	choiceSeq        *Sequence
}

// NewConditional builds an unresolved Conditional over the two
// branches, sharing environment.
func NewConditional(ifExpr, elseExpr sexpr.Expr, environment *env.Environment) *Conditional {
	return &Conditional{IfExpr: ifExpr, ElseExpr: elseExpr, Env: environment}
}

func (*Conditional) envValue() {}

// HasChoice reports whether a branch has already been picked.
func (c *Conditional) HasChoice() bool { return c.resolved }

// SetChoice commits c to one branch, building (but not yet expanding)
// the corresponding Sequence, and is a no-op on a second call — the
// write-once law for a Conditional's resolution.
func (c *Conditional) SetChoice(truthy bool) *Sequence {
	if c.resolved {
		return c.choiceSeq
	}
	branch := c.ElseExpr
	if truthy {
		branch = c.IfExpr
	}
	c.choiceSeq = NewSequence(branch, c.Env)
	c.resolved = true
	return c.choiceSeq
}

// Apply handles a Conditional appearing in operator position. If it is
// already resolved (a prior compile-time decision picked a branch),
// expanding and delegating to that branch's own Apply is correct and
// matches ordinary Sequence forwarding. If it is still unresolved, the
// call cannot be lowered into a single branch at compile time, so it
// is wrapped as a ConditionalLambda — a value that defers the actual
// call until the runtime branch is known — and the cleanup for
// whatever this call's own would-be argument pushes is left to the
// ConditionalLambda's own eventual resolution, never emitted here.
func (c *Conditional) Apply(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
	if c.resolved {
		res, err := u.Expand(c.choiceSeq)
		if err != nil {
			return nil, err
		}
		return res.Apply(u, seq, args)
	}
	return &ConditionalLambda{Conditional: c, Args: args}, nil
}

// ConditionalLambda is a deferred call against an unresolved
// Conditional: args were already evaluated (and pushed) against the
// calling Sequence by the time this was constructed, in anticipation
// of calling whichever branch eventually wins. Resolving the
// Conditional later (via Resolve) replays the pending call against the
// now-known branch.
type ConditionalLambda struct {
	Conditional *Conditional
	Args        []Value
}

func (*ConditionalLambda) envValue() {}

// Apply on a ConditionalLambda composes further arguments onto the
// pending call — used when the branch, once it resolves, is itself
// curried across more than one application.
func (cl *ConditionalLambda) Apply(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
	combined := append(append([]Value(nil), cl.Args...), args...)
	return cl.Conditional.Apply(u, seq, combined)
}

// Resolve commits the underlying Conditional to truthy's branch and
// replays the pending call against it, returning the branch's result.
func (cl *ConditionalLambda) Resolve(u *CompilationUnit, seq *Sequence, truthy bool) (Value, error) {
	branchSeq := cl.Conditional.SetChoice(truthy)
	res, err := u.Expand(branchSeq)
	if err != nil {
		return nil, err
	}
	return res.Apply(u, seq, cl.Args)
}
