package arith

import "fmt"

// Problem is a single drawn arithmetic problem.
type Problem struct {
	A  int
	B  int
	Op Op
}

// Answer computes the expected result.
func (p Problem) Answer() (int, error) {
	return p.Op.Apply(p.A, p.B)
}

// String renders the problem as "a op b".
func (p Problem) String() string {
	return fmt.Sprintf("%d %s %d", p.A, p.Op.Symbol(), p.B)
}
