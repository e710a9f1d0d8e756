//go:build nocl

package matmul

import (
	"fmt"

	"github.com/haormj/clmatmul/accelerated"
	"go.uber.org/zap"
)

// NewBackend returns the backend registered under name. Built with nocl,
// only the host backends exist.
func NewBackend(name string, _ *zap.Logger) (accelerated.Backend, error) {
	if backend, ok := hostBackend(name); ok {
		return backend, nil
	}

	return nil, fmt.Errorf("matmul: backend %q needs OpenCL, binary built with nocl", name)
}

// Devices always fails in a nocl build.
func Devices() ([]string, error) {
	return nil, fmt.Errorf("matmul: binary built with nocl, no OpenCL devices to list")
}
