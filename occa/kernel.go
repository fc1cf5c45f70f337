//go:build occa

package occa

/*
#include <occa.h>

static void freeKernel(occaKernel k) {
    occaFree(&k);
}
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// OCCAKernel is a compiled kernel bound to the device that built it.
type OCCAKernel struct {
	kernel C.occaKernel
}

// IsInitialized reports whether the kernel built successfully.
func (k *OCCAKernel) IsInitialized() bool {
	return bool(C.occaKernelIsInitialized(k.kernel))
}

// Name returns the kernel name.
func (k *OCCAKernel) Name() string {
	return C.GoString(C.occaKernelName(k.kernel))
}

// RunWithArgs launches the kernel. Arguments are converted to OCCA types in
// order; *OCCAMemory arguments are passed as device pointers.
func (k *OCCAKernel) RunWithArgs(args ...interface{}) error {
	if len(args) == 0 {
		C.occaKernelRunFromArgs(k.kernel)
		return nil
	}

	occaArgs := make([]C.occaType, len(args))
	for i, arg := range args {
		occaArg, err := convertToOCCAType(arg)
		if err != nil {
			return fmt.Errorf("kernel %s argument %d: %w", k.Name(), i, err)
		}
		occaArgs[i] = occaArg
	}
	C.occaKernelRunWithArgs(k.kernel, C.int(len(args)), (*C.occaType)(unsafe.Pointer(&occaArgs[0])))
	return nil
}

// Free releases the kernel.
func (k *OCCAKernel) Free() {
	C.freeKernel(k.kernel)
}

func convertToOCCAType(arg interface{}) (C.occaType, error) {
	switch v := arg.(type) {
	case bool:
		return C.occaBool(C.bool(v)), nil
	case int32:
		return C.occaInt32(C.int32_t(v)), nil
	case int64:
		return C.occaInt64(C.int64_t(v)), nil
	case int:
		return C.occaInt(C.int(v)), nil
	case float32:
		return C.occaFloat(C.float(v)), nil
	case float64:
		return C.occaDouble(C.double(v)), nil
	case *OCCAMemory:
		return C.occaType(v.memory), nil
	default:
		return C.occaType{}, fmt.Errorf("unsupported argument type: %T", arg)
	}
}
