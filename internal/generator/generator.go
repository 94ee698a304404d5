// Package generator draws random arithmetic problems.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/tuimath/internal/arith"
)

// Range is an inclusive operand range.
type Range struct {
	Min int
	Max int
}

func (r Range) validate(name string) error {
	if r.Min < 1 {
		return fmt.Errorf("%s operand minimum must be >= 1", name)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%s operand range is empty (%d..%d)", name, r.Min, r.Max)
	}
	return nil
}

func (r Range) draw(rnd *rand.Rand) int {
	return r.Min + rnd.Intn(r.Max-r.Min+1)
}

// MaxDigits is the widest operand a level may ask for. Two 9-digit operands
// multiply to less than 10^18, which fits in a 64-bit int.
const MaxDigits = 9

// DigitsRange returns the range 1..10^digits-1. digits must be within
// 1..MaxDigits.
func DigitsRange(digits int) Range {
	upper := 1
	for i := 0; i < digits; i++ {
		upper *= 10
	}
	return Range{Min: 1, Max: upper - 1}
}

// Generator produces randomized problems.
type Generator struct {
	rnd     *rand.Rand
	a       Range
	b       Range
	ops     []arith.Op
	weights []float64
	total   float64
}

// New returns a Generator seeded with the current time when seed is 0.
func New(a, b Range, ops []arith.Op, seed int64) (*Generator, error) {
	if err := a.validate("first"); err != nil {
		return nil, err
	}
	if err := b.validate("second"); err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("no operators configured")
	}
	for _, op := range ops {
		if !op.Valid() {
			return nil, fmt.Errorf("%w: tag %d", arith.ErrUnknownOperator, int(op))
		}
	}
	if err := checkOverflow(a, b); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		a:   a,
		b:   b,
		ops: append([]arith.Op(nil), ops...),
	}
	g.SetWeakOps(nil, 0)
	return g, nil
}

// SetWeakOps biases operator choice toward the given operators.
// Each weak operator gets weight 1+factor; the rest keep weight 1.
func (g *Generator) SetWeakOps(weak map[arith.Op]struct{}, factor float64) {
	g.weights = make([]float64, len(g.ops))
	g.total = 0
	for i, op := range g.ops {
		w := 1.0
		if _, ok := weak[op]; ok && factor > 0 {
			w += factor
		}
		g.weights[i] = w
		g.total += w
	}
}

// Next draws a problem. Division problems always divide evenly: the first
// operand range bounds the quotient.
func (g *Generator) Next() arith.Problem {
	op := g.pickOp()
	a := g.a.draw(g.rnd)
	b := g.b.draw(g.rnd)
	if op == arith.Div {
		a *= b
	}
	return arith.Problem{A: a, B: b, Op: op}
}

// checkOverflow rejects ranges whose largest product or sum does not fit in
// an int. Division answers are bounded by the same product since a = q*b.
func checkOverflow(a, b Range) error {
	if a.Max > math.MaxInt/b.Max || a.Max > math.MaxInt-b.Max {
		return fmt.Errorf("operand ranges too large: %d and %d overflow", a.Max, b.Max)
	}
	return nil
}

func (g *Generator) pickOp() arith.Op {
	r := g.rnd.Float64() * g.total
	acc := 0.0
	for i, w := range g.weights {
		acc += w
		if r <= acc {
			return g.ops[i]
		}
	}
	return g.ops[len(g.ops)-1]
}
