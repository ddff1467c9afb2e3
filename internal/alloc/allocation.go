package alloc

import "github.com/pkg/errors"

// ErrNotAssignment is returned when a row of an allocation is not one-hot.
var ErrNotAssignment = errors.New("allocation is not a one-unit-per-task assignment")

// Allocation is a tasks x units 0/1 matrix. a[i][j] == 1 means task i runs on
// unit j. Rows are not required to be one-hot.
type Allocation [][]int

// NewAllocation returns a zeroed rows x cols allocation backed by one slice.
func NewAllocation(rows, cols int) Allocation {
	backing := make([]int, rows*cols)
	a := make(Allocation, rows)
	for i := range a {
		a[i] = backing[i*cols : (i+1)*cols]
	}
	return a
}

// FromAssignment builds a one-hot allocation from a unit index per task.
func FromAssignment(assign []int, units int) (Allocation, error) {
	a := NewAllocation(len(assign), units)
	for i, u := range assign {
		if u < 0 || u >= units {
			return nil, errors.Wrapf(ErrShapeMismatch, "assign[%d]=%d out of range [0,%d)", i, u, units)
		}
		a[i][u] = 1
	}
	return a, nil
}

func (a Allocation) Rows() int { return len(a) }

func (a Allocation) Cols() int {
	if len(a) == 0 {
		return 0
	}
	return len(a[0])
}

func (a Allocation) Clone() Allocation {
	c := NewAllocation(a.Rows(), a.Cols())
	c.CopyFrom(a)
	return c
}

// CopyFrom copies src into a; shapes must match.
func (a Allocation) CopyFrom(src Allocation) {
	for i := range a {
		copy(a[i], src[i])
	}
}

// RowSums returns how many units each task is assigned to.
func (a Allocation) RowSums() []int {
	out := make([]int, len(a))
	for i, row := range a {
		for _, v := range row {
			out[i] += v
		}
	}
	return out
}

// IsAssignment reports whether every task is assigned to exactly one unit.
func (a Allocation) IsAssignment() bool {
	for _, s := range a.RowSums() {
		if s != 1 {
			return false
		}
	}
	return true
}

// Assignment converts a one-hot allocation into a unit index per task.
func (a Allocation) Assignment() ([]int, error) {
	out := make([]int, len(a))
	for i, row := range a {
		out[i] = -1
		for j, v := range row {
			if v == 0 {
				continue
			}
			if v != 1 || out[i] >= 0 {
				return nil, errors.Wrapf(ErrNotAssignment, "row %d", i)
			}
			out[i] = j
		}
		if out[i] < 0 {
			return nil, errors.Wrapf(ErrNotAssignment, "row %d is empty", i)
		}
	}
	return out, nil
}

// ValidateAssignment checks that assign has one in-range unit per task.
func ValidateAssignment(assign []int, tasks, units int) error {
	if len(assign) != tasks {
		return errors.Wrapf(ErrShapeMismatch, "assignment length must be %d (got %d)", tasks, len(assign))
	}
	for i, u := range assign {
		if u < 0 || u >= units {
			return errors.Wrapf(ErrShapeMismatch, "assign[%d]=%d out of range [0,%d)", i, u, units)
		}
	}
	return nil
}
