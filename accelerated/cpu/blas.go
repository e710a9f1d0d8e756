package cpu

import (
	"github.com/haormj/clmatmul/accelerated"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// BLAS multiplies on the host through gonum's float32 Gemm.
type BLAS struct {
}

// MatMul implements accelerated.Backend.
func (*BLAS) MatMul(c []float32, a []float32, b []float32, n int) error {
	if err := accelerated.CheckDims(c, a, b, n); err != nil {
		return err
	}

	ga := blas32.General{Rows: n, Cols: n, Stride: n, Data: a}
	gb := blas32.General{Rows: n, Cols: n, Stride: n, Data: b}
	gc := blas32.General{Rows: n, Cols: n, Stride: n, Data: c}

	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, ga, gb, 0, gc)

	return nil
}

// Release implements accelerated.Backend.
func (*BLAS) Release() error {
	return nil
}

// SetupContext implements accelerated.Backend.
func (*BLAS) SetupContext() error {
	return nil
}

var _ accelerated.Backend = &BLAS{}
