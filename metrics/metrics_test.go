package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGFLOPS(t *testing.T) {
	assert.InDelta(t, 2.0, GFLOPS(1000, time.Second), 1e-9)
	assert.Zero(t, GFLOPS(512, 0))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	r.ObserveRun("cpu", 512, 20*time.Millisecond, 250*time.Millisecond)
	r.ObserveRun("cpu", 512, 20*time.Millisecond, 250*time.Millisecond)
	r.ObserveFailure("Getting platform")

	assert.Equal(t, float64(512), testutil.ToFloat64(r.MatMulSize))
	assert.Equal(t, float64(2), testutil.ToFloat64(r.MatMulBackend.WithLabelValues("cpu")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.Failures.WithLabelValues("Getting platform")))
	assert.InDelta(t, GFLOPS(512, 250*time.Millisecond), testutil.ToFloat64(r.MatMulGFLOPS), 1e-9)
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun("blas", 64, time.Millisecond, 3*time.Millisecond)

	path := filepath.Join(t.TempDir(), "clmatmul.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `clmatmul_runs_total{backend="blas"} 1`)
	assert.Contains(t, string(data), "clmatmul_matrix_size 64")
}
