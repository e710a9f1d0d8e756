package accelerated

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoPlatform = errors.New("no OpenCL platform found")
	ErrNoDevice   = errors.New("no GPU device found")
	ErrGroupSize  = fmt.Errorf("size is not a multiple of the %dx%d local group", LocalGroupSize, LocalGroupSize)
)

// OpError reports a failed compute API call. Err carries the binding's own
// description of the status.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("Error during operation '%s': %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Op wraps err as an OpError for the named operation. A nil err stays nil.
func Op(op string, err error) error {
	if err == nil {
		return nil
	}

	return &OpError{Op: op, Err: err}
}

// DiscoveryError labels a failed platform/device enumeration. Bindings that
// walk platforms and devices in one call report CL_DEVICE_NOT_FOUND when
// platforms exist but none has a matching device; that is a device failure.
func DiscoveryError(err error) error {
	if err == nil {
		return nil
	}

	status := strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(err.Error()))

	switch {
	case strings.Contains(status, "devicenotfound"):
		return Op("Getting device", fmt.Errorf("%w: %v", ErrNoDevice, err))
	case strings.Contains(status, "platformnotfound"):
		return Op("Getting platform", fmt.Errorf("%w: %v", ErrNoPlatform, err))
	}

	return Op("Getting platform", err)
}

// BuildError is returned when the kernel program fails to compile. Log holds
// the compiler output as reported by the driver.
type BuildError struct {
	Log string
	Err error
}

func (e *BuildError) Error() string {
	return "CL Compilation failed:\n" + e.Log
}

func (e *BuildError) Unwrap() error { return e.Err }
