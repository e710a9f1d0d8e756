package cpu

import "github.com/haormj/clmatmul/accelerated"

// CPU multiplies on the host with the naive triple loop. It is the reference
// the device backends are checked against.
type CPU struct {
}

// MatMul implements accelerated.Backend.
func (*CPU) MatMul(c []float32, a []float32, b []float32, n int) error {
	if err := accelerated.CheckDims(c, a, b, n); err != nil {
		return err
	}

	var val float32

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			val = 0

			for k := 0; k < n; k++ {
				val += a[row*n+k] * b[k*n+col]
			}

			c[row*n+col] = val
		}
	}

	return nil
}

// Release implements accelerated.Backend.
func (*CPU) Release() error {
	return nil
}

// SetupContext implements accelerated.Backend.
func (*CPU) SetupContext() error {
	return nil
}

var _ accelerated.Backend = &CPU{}
