package generator

import (
	"math"
	"testing"

	"github.com/verte-zerg/tuimath/internal/arith"
)

func TestNextStaysInRange(t *testing.T) {
	g, err := New(Range{Min: 1, Max: 29}, Range{Min: 1, Max: 29}, []arith.Op{arith.Add, arith.Sub, arith.Mul}, 42)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	for i := 0; i < 500; i++ {
		p := g.Next()
		if p.A < 1 || p.A > 29 || p.B < 1 || p.B > 29 {
			t.Fatalf("operands out of range: %s", p)
		}
		if p.Op == arith.Div {
			t.Fatalf("unexpected operator in %s", p)
		}
	}
}

func TestDivisionIsExact(t *testing.T) {
	g, err := New(Range{Min: 1, Max: 12}, Range{Min: 1, Max: 12}, []arith.Op{arith.Div}, 7)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	for i := 0; i < 200; i++ {
		p := g.Next()
		if p.A%p.B != 0 {
			t.Fatalf("expected exact division, got %s", p)
		}
		if q := p.A / p.B; q < 1 || q > 12 {
			t.Fatalf("quotient out of range: %s", p)
		}
	}
}

func TestSeedIsReproducible(t *testing.T) {
	ops := []arith.Op{arith.Add, arith.Mul}
	g1, _ := New(DigitsRange(2), DigitsRange(1), ops, 99)
	g2, _ := New(DigitsRange(2), DigitsRange(1), ops, 99)
	for i := 0; i < 20; i++ {
		if a, b := g1.Next(), g2.Next(); a != b {
			t.Fatalf("expected identical streams, got %s and %s", a, b)
		}
	}
}

func TestWeakOpsBias(t *testing.T) {
	g, err := New(Range{Min: 1, Max: 9}, Range{Min: 1, Max: 9}, []arith.Op{arith.Add, arith.Mul}, 5)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	g.SetWeakOps(map[arith.Op]struct{}{arith.Mul: {}}, 9)
	counts := map[arith.Op]int{}
	for i := 0; i < 2000; i++ {
		counts[g.Next().Op]++
	}
	if counts[arith.Mul] <= counts[arith.Add]*3 {
		t.Fatalf("expected multiplication to dominate, got %v", counts)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Range{Min: 0, Max: 9}, DigitsRange(1), []arith.Op{arith.Add}, 1); err == nil {
		t.Fatalf("expected error for zero minimum")
	}
	if _, err := New(DigitsRange(1), Range{Min: 5, Max: 4}, []arith.Op{arith.Add}, 1); err == nil {
		t.Fatalf("expected error for empty range")
	}
	if _, err := New(DigitsRange(1), DigitsRange(1), nil, 1); err == nil {
		t.Fatalf("expected error without operators")
	}
	if _, err := New(DigitsRange(1), DigitsRange(1), []arith.Op{arith.Op(12)}, 1); err == nil {
		t.Fatalf("expected error for unknown operator")
	}
}

func TestNewRejectsOverflowingRanges(t *testing.T) {
	wide := Range{Min: 1, Max: 9_999_999_999}
	if _, err := New(wide, wide, []arith.Op{arith.Mul, arith.Div}, 7); err == nil {
		t.Fatalf("expected error for ranges whose product overflows")
	}
	if _, err := New(Range{Min: 1, Max: math.MaxInt}, Range{Min: 1, Max: 1}, []arith.Op{arith.Add}, 7); err == nil {
		t.Fatalf("expected error for ranges whose sum overflows")
	}
	widest := DigitsRange(MaxDigits)
	if _, err := New(widest, widest, []arith.Op{arith.Mul, arith.Div}, 7); err != nil {
		t.Fatalf("widest digit range rejected: %v", err)
	}
}

func TestDigitsRange(t *testing.T) {
	if got := DigitsRange(2); got != (Range{Min: 1, Max: 99}) {
		t.Fatalf("unexpected range %+v", got)
	}
}
