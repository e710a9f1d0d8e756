package cpu

import (
	"errors"
	"testing"

	"github.com/haormj/clmatmul/accelerated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(n int) []float32 {
	m := make([]float32, n*n)
	for i := 0; i < n; i++ {
		m[i*n+i] = 1
	}

	return m
}

func sequence(n int) []float32 {
	m := make([]float32, n*n)
	for i := range m {
		m[i] = float32(i % 7)
	}

	return m
}

func TestMatMul(t *testing.T) {
	backends := map[string]accelerated.Backend{
		"cpu":  &CPU{},
		"blas": &BLAS{},
	}

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, backend.SetupContext())
			defer backend.Release()

			t.Run("identity on the right", func(t *testing.T) {
				n := 16
				a := sequence(n)
				c := make([]float32, n*n)

				require.NoError(t, backend.MatMul(c, a, identity(n), n))
				assert.Equal(t, a, c)
			})

			t.Run("every cell written", func(t *testing.T) {
				n := 32
				c := make([]float32, n*n)
				for i := range c {
					c[i] = -1
				}

				ones := make([]float32, n*n)
				for i := range ones {
					ones[i] = 1
				}

				require.NoError(t, backend.MatMul(c, ones, ones, n))
				for i, v := range c {
					assert.Equalf(t, float32(n), v, "cell %d", i)
				}
			})

			t.Run("size not a multiple of the group", func(t *testing.T) {
				n := 20
				c := make([]float32, n*n)

				err := backend.MatMul(c, sequence(n), sequence(n), n)
				require.Error(t, err)
				assert.True(t, errors.Is(err, accelerated.ErrGroupSize))
			})

			t.Run("length mismatch", func(t *testing.T) {
				n := 16
				err := backend.MatMul(make([]float32, n*n), make([]float32, 3), make([]float32, n*n), n)
				assert.Error(t, err)
			})
		})
	}
}

func TestBLASAgreesWithCPU(t *testing.T) {
	n := 48
	a, b := sequence(n), sequence(n)
	for i := range b {
		b[i] = float32((i*13)%100) / 10
	}

	want := make([]float32, n*n)
	got := make([]float32, n*n)

	require.NoError(t, (&CPU{}).MatMul(want, a, b, n))
	require.NoError(t, (&BLAS{}).MatMul(got, a, b, n))

	assert.InDeltaSlice(t, want, got, 1e-2)
}
