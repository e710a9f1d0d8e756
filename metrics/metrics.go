package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the metrics of a single run on its own registry, so a run
// can be written out as a node_exporter textfile without global state.
type Recorder struct {
	Registry *prometheus.Registry

	MatMulDuration prometheus.Histogram
	SetupDuration  prometheus.Histogram
	MatMulSize     prometheus.Gauge
	MatMulGFLOPS   prometheus.Gauge
	MatMulBackend  *prometheus.CounterVec
	Failures       *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		Registry: reg,
		MatMulDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clmatmul_matmul_duration_ms",
			Help:    "Duration of the matrix multiplication including transfers, in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 15), // 1ms to ~16s
		}),
		SetupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clmatmul_setup_duration_ms",
			Help:    "Duration of device discovery and kernel build, in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 15),
		}),
		MatMulSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "clmatmul_matrix_size",
			Help: "Edge length of the square matrices multiplied",
		}),
		MatMulGFLOPS: factory.NewGauge(prometheus.GaugeOpts{
			Name: "clmatmul_gflops",
			Help: "Throughput of the last multiplication in GFLOPS",
		}),
		MatMulBackend: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clmatmul_runs_total",
			Help: "Completed multiplications by backend",
		}, []string{"backend"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clmatmul_failures_total",
			Help: "Failed runs by the operation that failed",
		}, []string{"operation"}),
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// ObserveRun records a completed multiplication of two n×n matrices.
func (r *Recorder) ObserveRun(backend string, n int, setup, compute time.Duration) {
	r.SetupDuration.Observe(millis(setup))
	r.MatMulDuration.Observe(millis(compute))
	r.MatMulSize.Set(float64(n))
	r.MatMulGFLOPS.Set(GFLOPS(n, compute))
	r.MatMulBackend.WithLabelValues(backend).Inc()
}

// ObserveFailure records a run that stopped at operation.
func (r *Recorder) ObserveFailure(operation string) {
	r.Failures.WithLabelValues(operation).Inc()
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}

// GFLOPS is the throughput of an n×n by n×n multiplication finishing in d.
func GFLOPS(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}

	flops := 2 * float64(n) * float64(n) * float64(n)
	return flops / d.Seconds() / 1e9
}
