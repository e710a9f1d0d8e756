package accelerated

import "fmt"

// LocalGroupSize is the edge of the square work group every kernel launch uses.
const LocalGroupSize = 16

// Backend multiplies square row-major float32 matrices on some compute device.
type Backend interface {
	SetupContext() error
	// MatMul computes c = a × b for n×n matrices.
	MatMul(c, a, b []float32, n int) error
	Release() error
}

// CheckDims validates the operands of a MatMul call before anything is
// dispatched to a device.
func CheckDims(c, a, b []float32, n int) error {
	if n <= 0 {
		return fmt.Errorf("accelerated: matrix size must be positive, got %d", n)
	}

	if n%LocalGroupSize != 0 {
		return fmt.Errorf("accelerated: size %d: %w", n, ErrGroupSize)
	}

	want := n * n
	for _, m := range []struct {
		name string
		len  int
	}{{"A", len(a)}, {"B", len(b)}, {"C", len(c)}} {
		if m.len != want {
			return fmt.Errorf("accelerated: matrix %s length must be %d, got %d", m.name, want, m.len)
		}
	}

	return nil
}
