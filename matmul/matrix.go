package matmul

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
)

// fillRange bounds the values written by FillPair: integers in [0, fillRange).
const fillRange = 100

// Matrix is a square row-major float32 matrix.
type Matrix struct {
	N    int
	Data []float32
}

func NewMatrix(n int) *Matrix {
	return &Matrix{N: n, Data: make([]float32, n*n)}
}

func (m *Matrix) At(row, col int) float32 {
	return m.Data[row*m.N+col]
}

// FillPair overwrites every cell of a and b with whole numbers drawn from
// rng, alternating a[i] then b[i]. a and b must be the same size.
func FillPair(rng *rand.Rand, a, b *Matrix) {
	for i := range a.Data {
		a.Data[i] = float32(rng.Intn(fillRange))
		b.Data[i] = float32(rng.Intn(fillRange))
	}
}

// PrintCorner writes the top-left k×k block of m, one row per line. k is
// clamped to the matrix size.
func PrintCorner(w io.Writer, m *Matrix, k int) error {
	if k > m.N {
		k = m.N
	}

	var sb strings.Builder
	for row := 0; row < k; row++ {
		sb.Reset()
		for col := 0; col < k; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%f", m.At(row, col))
		}
		sb.WriteByte('\n')

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return fmt.Errorf("matmul: failed to print result: %w", err)
		}
	}

	return nil
}
