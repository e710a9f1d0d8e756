package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haormj/clmatmul/accelerated"
	"github.com/haormj/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout)
	cmd.SetOutput(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestRootCommandPrintsCorner(t *testing.T) {
	out, err := execute(t, "--backend", "cpu", "--size", "16", "--seed", "5")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 10)
	for _, line := range lines {
		assert.Len(t, strings.Fields(line), 10)
	}
}

func TestRootCommandDeterministicWithSeed(t *testing.T) {
	first, err := execute(t, "--backend", "blas", "--size", "32", "--seed", "11", "--corner", "4")
	require.NoError(t, err)

	second, err := execute(t, "--backend", "blas", "--size", "32", "--seed", "11", "--corner", "4")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, strings.Split(strings.TrimSuffix(first, "\n"), "\n"), 4)
}

func TestRootCommandRejectsBadInput(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "partial group", args: []string{"--backend", "cpu", "--size", "20"}},
		{name: "unknown backend", args: []string{"--backend", "vulkan"}},
		{name: "bad log level", args: []string{"--backend", "cpu", "--size", "16", "--log-level", "chatty"}},
		{name: "positional argument", args: []string{"extra"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.args...)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestRootCommandConfigFileAndMetrics(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "clmatmul.prom")
	configPath := filepath.Join(dir, "clmatmul.yaml")

	content := "backend: cpu\nmatrix:\n  size: 16\n  seed: 3\n  corner: 2\nmetrics:\n  textfile: " + textfile + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	out, err := execute(t, "--config", configPath, "--corner", "3")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 3)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `clmatmul_runs_total{backend="cpu"} 1`)
	assert.Contains(t, string(data), "clmatmul_matrix_size 16")
}

func TestFailedOperation(t *testing.T) {
	assert.Equal(t, "Getting platform", failedOperation(accelerated.Op("Getting platform", accelerated.ErrNoPlatform)))
	assert.Equal(t, "Building program", failedOperation(&accelerated.BuildError{Log: "x"}))
	assert.Equal(t, "other", failedOperation(errors.New("boom")))
}

func TestRootCommandVersion(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{})
	assert.NotEmpty(t, cmd.Version)
	assert.Equal(t, version.FullVersion(), cmd.Version)
}
