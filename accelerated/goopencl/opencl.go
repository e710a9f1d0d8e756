//go:build !nocl

package goopencl

import (
	"fmt"
	"time"

	"github.com/haormj/clmatmul/accelerated"
	"github.com/haormj/clmatmul/accelerated/kernels"
	"github.com/passkeyra/go-opencl/opencl"
	"go.uber.org/zap"
)

const (
	float32Size = 4
	memArgSize  = 8
	uintArgSize = 4
)

// OpenCL drives the device one API call at a time through go-opencl. Every
// call that fails is reported as an accelerated.OpError carrying the name of
// the step.
//
// go-opencl launches with a global size only, so the OpenCL runtime picks the
// work-group size here; it is not pinned to LocalGroupSize as in the blackcl
// backend.
type OpenCL struct {
	// Source is the program compiled by SetupContext. Defaults to the
	// embedded matmul kernel.
	Source string

	log *zap.Logger

	device       opencl.Device
	context      opencl.Context
	commandQueue opencl.CommandQueue
	matmulProg   opencl.Program
	matmulKernel opencl.Kernel

	buffers []opencl.Buffer

	hasContext, hasQueue, hasProg, hasKernel bool
}

func New(log *zap.Logger) *OpenCL {
	if log == nil {
		log = zap.NewNop()
	}

	return &OpenCL{
		Source: kernels.MatMul,
		log:    log.Named("goopencl"),
	}
}

var _ accelerated.Backend = &OpenCL{}

// getFirstDevice returns the first available device of deviceType on the
// first platform that has one.
func getFirstDevice(deviceType opencl.DeviceType) (opencl.Device, error) {
	platforms, err := opencl.GetPlatforms()
	if err != nil {
		return opencl.Device{}, accelerated.DiscoveryError(err)
	}

	if len(platforms) == 0 {
		return opencl.Device{}, accelerated.Op("Getting platform", accelerated.ErrNoPlatform)
	}

	for _, platform := range platforms {
		var devices []opencl.Device
		devices, err = platform.GetDevices(deviceType)
		if err != nil {
			continue
		}

		for _, device := range devices {
			var available bool
			err = device.GetInfo(opencl.DeviceAvailable, &available)
			if err == nil && available {
				return device, nil
			}
		}
	}

	if err != nil {
		return opencl.Device{}, accelerated.Op("Getting device", err)
	}

	return opencl.Device{}, accelerated.Op("Getting device", accelerated.ErrNoDevice)
}

// SetupContext implements accelerated.Backend.
func (o *OpenCL) SetupContext() error {
	var err error

	o.device, err = getFirstDevice(opencl.DeviceTypeGPU)
	if err != nil {
		return err
	}

	o.log.Debug("selected first available GPU device")

	o.context, err = o.device.CreateContext()
	if err != nil {
		return accelerated.Op("Creating context", err)
	}
	o.hasContext = true

	o.commandQueue, err = o.context.CreateCommandQueue(o.device)
	if err != nil {
		return accelerated.Op("Creating command queue", err)
	}
	o.hasQueue = true

	o.matmulProg, err = o.context.CreateProgramWithSource(o.Source)
	if err != nil {
		return accelerated.Op("Creating program", err)
	}
	o.hasProg = true

	var buildLog string
	if err = o.matmulProg.Build(o.device, &buildLog); err != nil {
		return &accelerated.BuildError{Log: buildLog, Err: err}
	}

	o.matmulKernel, err = o.matmulProg.CreateKernel(kernels.MatMulName)
	if err != nil {
		return accelerated.Op("Creating kernel", err)
	}
	o.hasKernel = true

	return nil
}

type kernelArg struct {
	size  uint64
	value interface{}
}

// kernelArgs lays out the matmul arguments in kernel order. go-opencl's
// SetArg takes the address of each value.
func kernelArgs(a, b, c *opencl.Buffer, n *uint32) []kernelArg {
	return []kernelArg{
		{memArgSize, a},
		{memArgSize, b},
		{memArgSize, c},
		{uintArgSize, n},
	}
}

func (o *OpenCL) createBuffer(op string, flag opencl.MemFlags, size uint64) (opencl.Buffer, error) {
	buffer, err := o.context.CreateBuffer([]opencl.MemFlags{flag}, size)
	if err != nil {
		return opencl.Buffer{}, accelerated.Op(op, err)
	}

	o.buffers = append(o.buffers, buffer)

	return buffer, nil
}

// MatMul implements accelerated.Backend.
func (o *OpenCL) MatMul(c, a, b []float32, n int) error {
	if err := accelerated.CheckDims(c, a, b, n); err != nil {
		return err
	}

	if !o.hasKernel {
		return fmt.Errorf("accelerated/goopencl: context not set up")
	}

	bytes := uint64(n * n * float32Size)

	oclA, err := o.createBuffer("Creating buffer A", opencl.MemReadOnly, bytes)
	if err != nil {
		return err
	}

	oclB, err := o.createBuffer("Creating buffer B", opencl.MemReadOnly, bytes)
	if err != nil {
		return err
	}

	oclC, err := o.createBuffer("Creating buffer C", opencl.MemWriteOnly, bytes)
	if err != nil {
		return err
	}

	if err = o.commandQueue.EnqueueWriteBuffer(oclA, true, a); err != nil {
		return accelerated.Op("Copying A to device", err)
	}

	if err = o.commandQueue.EnqueueWriteBuffer(oclB, true, b); err != nil {
		return accelerated.Op("Copying B to device", err)
	}

	size := uint32(n)

	for i, arg := range kernelArgs(&oclA, &oclB, &oclC, &size) {
		if err = o.matmulKernel.SetArg(uint32(i), arg.size, arg.value); err != nil {
			return accelerated.Op(fmt.Sprintf("Setting kernel arg %d", i), err)
		}
	}

	start := time.Now()

	if err = o.commandQueue.EnqueueNDRangeKernel(o.matmulKernel, 2, []uint64{uint64(n), uint64(n)}); err != nil {
		return accelerated.Op("Enqueueing kernel", err)
	}

	if err = o.commandQueue.EnqueueReadBuffer(oclC, true, c); err != nil {
		return accelerated.Op("Reading result", err)
	}

	o.log.Debug("kernel finished", zap.Int("n", n), zap.Duration("elapsed", time.Since(start)))

	return nil
}

// Release implements accelerated.Backend. Buffers, kernel and program go
// before the queue and context. Calling it twice is a no-op.
func (o *OpenCL) Release() error {
	for _, buffer := range o.buffers {
		buffer.Release()
	}
	o.buffers = nil

	if o.hasKernel {
		o.matmulKernel.Release()
		o.hasKernel = false
	}

	if o.hasProg {
		o.matmulProg.Release()
		o.hasProg = false
	}

	if o.hasQueue {
		o.commandQueue.Release()
		o.hasQueue = false
	}

	if o.hasContext {
		o.context.Release()
		o.hasContext = false
	}

	return nil
}
