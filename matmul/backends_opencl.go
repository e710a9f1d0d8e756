//go:build !nocl

package matmul

import (
	"fmt"

	"github.com/haormj/clmatmul/accelerated"
	"github.com/haormj/clmatmul/accelerated/goopencl"
	"github.com/haormj/clmatmul/accelerated/opencl"
	"go.uber.org/zap"
)

// NewBackend returns the backend registered under name.
func NewBackend(name string, log *zap.Logger) (accelerated.Backend, error) {
	switch name {
	case "blackcl":
		return opencl.New(log), nil
	case "goopencl":
		return goopencl.New(log), nil
	}

	if backend, ok := hostBackend(name); ok {
		return backend, nil
	}

	return nil, fmt.Errorf("matmul: unknown backend %q", name)
}

// Devices lists the OpenCL devices visible to the host.
func Devices() ([]string, error) {
	return opencl.ListDevices()
}
