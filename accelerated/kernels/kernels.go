// Package kernels holds the OpenCL C sources compiled at runtime by the
// OpenCL backends.
package kernels

import _ "embed"

// MatMulName is the entry point defined in MatMul.
const MatMulName = "matmul"

//go:embed matmul.cl
var MatMul string
