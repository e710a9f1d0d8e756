package matmul

import (
	"github.com/haormj/clmatmul/accelerated"
	"github.com/haormj/clmatmul/accelerated/cpu"
)

func hostBackend(name string) (accelerated.Backend, bool) {
	switch name {
	case "cpu":
		return &cpu.CPU{}, true
	case "blas":
		return &cpu.BLAS{}, true
	}

	return nil, false
}
