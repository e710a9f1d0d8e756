package matmul

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/haormj/clmatmul/accelerated"
	"go.uber.org/zap"
)

type Options struct {
	Size int
	// Seed feeds the input generator; zero seeds from the clock.
	Seed int64
	// Corner is the edge of the block printed after the run.
	Corner int
	Log    *zap.Logger
}

// Result is what a completed run produced.
type Result struct {
	A, B, C *Matrix
	Seed    int64

	Setup   time.Duration
	Compute time.Duration
}

// Run multiplies two freshly filled matrices on backend and prints the
// corner of the product to out. The backend is released before Run returns
// whenever its setup was attempted.
func Run(opts Options, backend accelerated.Backend, out io.Writer) (res *Result, err error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	n := opts.Size
	if n <= 0 || n%accelerated.LocalGroupSize != 0 {
		return nil, fmt.Errorf("matmul: size %d: %w", n, accelerated.ErrGroupSize)
	}

	res = &Result{
		A:    NewMatrix(n),
		B:    NewMatrix(n),
		C:    NewMatrix(n),
		Seed: opts.Seed,
	}

	if res.Seed == 0 {
		res.Seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(res.Seed))
	FillPair(rng, res.A, res.B)

	log.Debug("filled inputs", zap.Int("n", n), zap.Int64("seed", res.Seed))

	defer func() {
		if releaseErr := backend.Release(); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()

	start := time.Now()
	if err := backend.SetupContext(); err != nil {
		return nil, err
	}
	res.Setup = time.Since(start)

	start = time.Now()
	if err := backend.MatMul(res.C.Data, res.A.Data, res.B.Data, n); err != nil {
		return nil, err
	}
	res.Compute = time.Since(start)

	log.Info("multiplication finished",
		zap.Int("n", n),
		zap.Duration("setup", res.Setup),
		zap.Duration("compute", res.Compute))

	if err := PrintCorner(out, res.C, opts.Corner); err != nil {
		return nil, err
	}

	return res, nil
}
