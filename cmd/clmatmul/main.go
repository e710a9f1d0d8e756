package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/haormj/clmatmul/accelerated"
	"github.com/haormj/clmatmul/config"
	"github.com/haormj/clmatmul/logger"
	"github.com/haormj/clmatmul/matmul"
	"github.com/haormj/clmatmul/metrics"
	"github.com/haormj/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type flags struct {
	configPath string
	backend    string
	size       int
	seed       int64
	corner     int
	logLevel   string
	textfile   string
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "clmatmul",
		Short:         "Multiply two random square matrices on an OpenCL GPU",
		Version:       version.FullVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &f)
			if err != nil {
				return err
			}

			return run(cfg, stdout)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&f.backend, "backend", config.DefaultBackend, fmt.Sprintf("compute backend %v", config.Backends))
	cmd.Flags().IntVar(&f.size, "size", config.DefaultSize, "matrix edge length, a multiple of 16")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "input generator seed, 0 seeds from the clock")
	cmd.Flags().IntVar(&f.corner, "corner", config.DefaultCorner, "edge of the printed top-left block")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "log verbosity")
	cmd.Flags().StringVar(&f.textfile, "metrics-textfile", "", "write run metrics to this file in Prometheus text format")

	cmd.AddCommand(newDevicesCommand(stdout))

	return cmd
}

func newDevicesCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the OpenCL devices visible to this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := matmul.Devices()
			if err != nil {
				return err
			}

			for _, d := range devices {
				fmt.Fprintln(stdout, d)
			}

			return nil
		},
	}
}

// resolveConfig loads the config file and lays explicitly set flags over it.
func resolveConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("backend") {
		cfg.Backend = f.backend
	}
	if set("size") {
		cfg.Matrix.Size = f.size
	}
	if set("seed") {
		cfg.Matrix.Seed = f.seed
	}
	if set("corner") {
		cfg.Matrix.Corner = f.corner
	}
	if set("log-level") {
		cfg.Logger.Verbosity = f.logLevel
	}
	if set("metrics-textfile") {
		cfg.Metrics.Textfile = f.textfile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func run(cfg *config.Config, stdout io.Writer) error {
	log, err := logger.New(cfg.Logger.Verbosity)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Logger.Verbosity, err)
	}
	defer log.Sync()

	log = log.Named("clmatmul")

	backend, err := matmul.NewBackend(cfg.Backend, log)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()

	res, runErr := matmul.Run(matmul.Options{
		Size:   cfg.Matrix.Size,
		Seed:   cfg.Matrix.Seed,
		Corner: cfg.Matrix.Corner,
		Log:    log,
	}, backend, stdout)

	if runErr != nil {
		recorder.ObserveFailure(failedOperation(runErr))
	} else {
		recorder.ObserveRun(cfg.Backend, cfg.Matrix.Size, res.Setup, res.Compute)
		log.Info("run complete",
			zap.String("backend", cfg.Backend),
			zap.Float64("gflops", metrics.GFLOPS(cfg.Matrix.Size, res.Compute)))
	}

	if cfg.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	return runErr
}

func failedOperation(err error) string {
	var opErr *accelerated.OpError
	if errors.As(err, &opErr) {
		return opErr.Op
	}

	var buildErr *accelerated.BuildError
	if errors.As(err, &buildErr) {
		return "Building program"
	}

	return "other"
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
