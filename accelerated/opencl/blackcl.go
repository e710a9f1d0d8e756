//go:build !nocl

package opencl

import (
	"errors"
	"fmt"

	"github.com/haormj/clmatmul/accelerated"
	"github.com/haormj/clmatmul/accelerated/kernels"
	"gitlab.com/microo8/blackcl"
	"go.uber.org/zap"
)

type OpenCL struct {
	// Source is the program built by SetupContext. Defaults to the embedded
	// matmul kernel.
	Source string

	log *zap.Logger

	device *blackcl.Device
	kernel *blackcl.Kernel
}

func New(log *zap.Logger) *OpenCL {
	if log == nil {
		log = zap.NewNop()
	}

	return &OpenCL{
		Source: kernels.MatMul,
		log:    log.Named("blackcl"),
	}
}

// Release implements accelerated.Backend.
func (o *OpenCL) Release() error {
	if o.device == nil {
		return nil
	}

	o.kernel = nil

	device := o.device
	o.device = nil

	if err := device.Release(); err != nil {
		return fmt.Errorf("accelerated/blackcl: failed to release device: %w", err)
	}

	return nil
}

// MatMul implements accelerated.Backend. All three vectors are allocated
// before any transfer, and each transfer completes before the next starts.
func (o *OpenCL) MatMul(c []float32, a []float32, b []float32, n int) error {
	if err := accelerated.CheckDims(c, a, b, n); err != nil {
		return err
	}

	if o.kernel == nil {
		return fmt.Errorf("accelerated/blackcl: context not set up")
	}

	aDev, err := o.device.NewVector(len(a))
	if err != nil {
		return accelerated.Op("Creating buffer A", err)
	}
	defer aDev.Release()

	bDev, err := o.device.NewVector(len(b))
	if err != nil {
		return accelerated.Op("Creating buffer B", err)
	}
	defer bDev.Release()

	cDev, err := o.device.NewVector(len(c))
	if err != nil {
		return accelerated.Op("Creating buffer C", err)
	}
	defer cDev.Release()

	if err := <-aDev.Copy(a); err != nil {
		return accelerated.Op("Copying A to device", err)
	}

	if err := <-bDev.Copy(b); err != nil {
		return accelerated.Op("Copying B to device", err)
	}

	if err := <-o.MatMulDevMem(cDev, aDev, bDev, n); err != nil {
		return err
	}

	cHost, err := cDev.Data()
	if err != nil {
		return accelerated.Op("Reading result", err)
	}

	copy(c, cHost)

	return nil
}

// MatMulDevMem launches the kernel on vectors already resident on the device.
func (o *OpenCL) MatMulDevMem(c *blackcl.Vector, a *blackcl.Vector, b *blackcl.Vector, n int) <-chan error {
	errChan := make(chan error, 1)

	if n%accelerated.LocalGroupSize != 0 {
		errChan <- fmt.Errorf("accelerated/blackcl: size %d: %w", n, accelerated.ErrGroupSize)
		return errChan
	}

	go func() {
		call := o.kernel.Global(n, n).Local(accelerated.LocalGroupSize, accelerated.LocalGroupSize)
		if err := <-call.Run(a, b, c, uint32(n)); err != nil {
			errChan <- accelerated.Op("Enqueueing kernel", err)
		} else {
			errChan <- nil
		}
	}()

	return errChan
}

// firstGPU picks the first GPU device and releases the rest.
func firstGPU() (*blackcl.Device, error) {
	devices, err := blackcl.GetDevices(blackcl.DeviceTypeGPU)
	if err != nil {
		return nil, accelerated.DiscoveryError(err)
	}

	if len(devices) == 0 {
		return nil, accelerated.Op("Getting device", accelerated.ErrNoDevice)
	}

	for _, extra := range devices[1:] {
		_ = extra.Release()
	}

	return devices[0], nil
}

// SetupContext implements accelerated.Backend.
func (o *OpenCL) SetupContext() (err error) {
	o.device, err = firstGPU()
	if err != nil {
		return err
	}

	o.log.Info("selected device", zap.String("device", o.device.Name()))

	// blackcl reports build and kernel lookup failures by panicking.
	step := "Building program"
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		cause, ok := r.(error)
		if !ok {
			cause = errors.New(fmt.Sprint(r))
		}

		if step == "Building program" {
			err = &accelerated.BuildError{Log: cause.Error(), Err: cause}
		} else {
			err = accelerated.Op(step, cause)
		}
	}()

	o.device.AddProgram(o.Source)

	step = "Creating kernel"
	o.kernel = o.device.Kernel(kernels.MatMulName)

	return nil
}

var _ accelerated.Backend = &OpenCL{}

// ListDevices describes every OpenCL device of any type visible to the host.
func ListDevices() ([]string, error) {
	devices, err := blackcl.GetDevices(blackcl.DeviceTypeAll)
	if err != nil {
		return nil, accelerated.DiscoveryError(err)
	}

	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, fmt.Sprintf("%s (%s)", d.Name(), d.Vendor()))
		_ = d.Release()
	}

	return names, nil
}
