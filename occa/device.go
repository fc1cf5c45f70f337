//go:build occa

package occa

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -locca
#include <occa.h>
#include <stdlib.h>

static void freeDevice(occaDevice d) {
    occaFree(&d);
}
*/
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/notargets/cgbench/cgerr"
)

// OCCADevice is a handle to one OCCA device (Serial, OpenMP, CUDA, ...).
type OCCADevice struct {
	device C.occaDevice
}

// NewDevice creates a device from a JSON property string such as
// {"mode": "Serial"}.
func NewDevice(deviceInfo string) (*OCCADevice, error) {
	cDeviceInfo := C.CString(deviceInfo)
	defer C.free(unsafe.Pointer(cDeviceInfo))

	device := C.occaCreateDeviceFromString(cDeviceInfo)
	d := &OCCADevice{device: device}
	if !d.IsInitialized() {
		return nil, cgerr.NewDeviceError("occa.NewDevice",
			fmt.Sprintf("device %s did not initialize", deviceInfo), nil)
	}
	return d, nil
}

// IsInitialized reports whether the handle refers to a live device.
func (d *OCCADevice) IsInitialized() bool {
	return bool(C.occaDeviceIsInitialized(d.device))
}

// Mode returns the backend mode name, e.g. "Serial" or "CUDA".
func (d *OCCADevice) Mode() string {
	return C.GoString(C.occaDeviceMode(d.device))
}

// Finish blocks until all work queued on the device has completed.
func (d *OCCADevice) Finish() {
	C.occaDeviceFinish(d.device)
}

// Free releases the device.
func (d *OCCADevice) Free() {
	C.freeDevice(d.device)
}

// Malloc allocates bytes of device memory, initialised from src when src is
// not nil.
func (d *OCCADevice) Malloc(bytes int64, src unsafe.Pointer) *OCCAMemory {
	memory := C.occaDeviceMalloc(d.device, C.occaUDim_t(bytes), src, C.occaDefault)
	return &OCCAMemory{memory: memory, bytes: bytes}
}

// MallocFloat64 allocates device memory holding a copy of data.
func (d *OCCADevice) MallocFloat64(data []float64) *OCCAMemory {
	if len(data) == 0 {
		return d.Malloc(0, nil)
	}
	return d.Malloc(int64(len(data)*8), unsafe.Pointer(&data[0]))
}

// MallocInt64 allocates device memory holding a copy of data.
func (d *OCCADevice) MallocInt64(data []int64) *OCCAMemory {
	if len(data) == 0 {
		return d.Malloc(0, nil)
	}
	return d.Malloc(int64(len(data)*8), unsafe.Pointer(&data[0]))
}

// BuildKernel compiles the kernel kernelName from OKL source. props, when
// not nil, carries build properties such as "defines".
func (d *OCCADevice) BuildKernel(source, kernelName string, props *OCCAJson) (*OCCAKernel, error) {
	cSource := C.CString(source)
	cKernelName := C.CString(kernelName)
	defer C.free(unsafe.Pointer(cSource))
	defer C.free(unsafe.Pointer(cKernelName))

	var propsArg C.occaJson
	if props != nil {
		propsArg = props.json
	} else {
		propsArg = C.occaDefault
	}
	kernel := C.occaDeviceBuildKernelFromString(d.device, cSource, cKernelName, propsArg)
	k := &OCCAKernel{kernel: kernel}
	if !k.IsInitialized() {
		return nil, cgerr.NewDeviceError("occa.BuildKernel",
			fmt.Sprintf("kernel %s failed to build", kernelName), nil)
	}
	return k, nil
}
