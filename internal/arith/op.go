// Package arith defines arithmetic operators and problems.
package arith

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOperator reports an operator tag or symbol outside the supported set.
var ErrUnknownOperator = errors.New("unknown operator")

// Op is a tagged arithmetic operator.
type Op int

// Supported operators.
const (
	Add Op = iota + 1
	Sub
	Mul
	Div
)

// All lists the supported operators in canonical order.
var All = []Op{Add, Sub, Mul, Div}

// Symbol returns the display symbol for the operator.
func (o Op) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

func (o Op) String() string {
	return o.Symbol()
}

// Valid reports whether o is one of the supported operators.
func (o Op) Valid() bool {
	return o >= Add && o <= Div
}

// Weight returns the complexity weight of the operator.
// Addition is the easiest and division the hardest.
func (o Op) Weight() (float64, error) {
	switch o {
	case Add:
		return 2, nil
	case Sub:
		return 3, nil
	case Mul:
		return 4, nil
	case Div:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: tag %d", ErrUnknownOperator, int(o))
	}
}

// Apply evaluates a <op> b. Division truncates toward zero.
func (o Op) Apply(a, b int) (int, error) {
	switch o {
	case Add:
		return a + b, nil
	case Sub:
		return a - b, nil
	case Mul:
		return a * b, nil
	case Div:
		if b == 0 {
			return 0, errors.New("division by zero")
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("%w: tag %d", ErrUnknownOperator, int(o))
	}
}

// ParseOp maps a symbol to an operator. Word aliases are accepted.
func ParseOp(symbol string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(symbol)) {
	case "+", "add", "plus":
		return Add, nil
	case "-", "sub", "minus":
		return Sub, nil
	case "*", "x", "×", "mul", "times":
		return Mul, nil
	case "/", ":", "÷", "div":
		return Div, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, symbol)
	}
}

// ParseOps maps symbols to operators, dropping unrecognized symbols and duplicates.
// The dropped symbols are returned so callers can report them.
func ParseOps(symbols []string) (ops []Op, dropped []string) {
	seen := map[Op]bool{}
	for _, s := range symbols {
		op, err := ParseOp(s)
		if err != nil {
			dropped = append(dropped, s)
			continue
		}
		if seen[op] {
			continue
		}
		seen[op] = true
		ops = append(ops, op)
	}
	return ops, dropped
}

// SplitSymbols splits an operator set such as "+-*/" or "+,-,*" into symbols.
func SplitSymbols(set string) []string {
	if strings.ContainsAny(set, ", ") {
		return strings.FieldsFunc(set, func(r rune) bool { return r == ',' || r == ' ' })
	}
	out := make([]string, 0, len(set))
	for _, r := range set {
		out = append(out, string(r))
	}
	return out
}
