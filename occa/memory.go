//go:build occa

package occa

/*
#include <occa.h>

static void freeMemory(occaMemory m) {
    occaFree(&m);
}
*/
import "C"
import (
	"unsafe"

	"github.com/notargets/cgbench/cgerr"
)

// OCCAMemory is a block of device memory.
type OCCAMemory struct {
	memory C.occaMemory
	bytes  int64
}

// Size returns the allocation size in bytes.
func (m *OCCAMemory) Size() int64 { return m.bytes }

// CopyTo copies bytes from device memory to host memory at dst.
func (m *OCCAMemory) CopyTo(dst unsafe.Pointer, bytes int64) {
	C.occaCopyMemToPtr(dst, m.memory, C.occaUDim_t(bytes), C.occaUDim_t(0), C.occaDefault)
}

// CopyFrom copies bytes from host memory at src into device memory.
func (m *OCCAMemory) CopyFrom(src unsafe.Pointer, bytes int64) {
	C.occaCopyPtrToMem(m.memory, src, C.occaUDim_t(bytes), C.occaUDim_t(0), C.occaDefault)
}

// CopyToFloat64 fills data from the start of the allocation.
func (m *OCCAMemory) CopyToFloat64(data []float64) error {
	if len(data) == 0 {
		return nil
	}
	bytes := int64(len(data) * 8)
	if bytes > m.bytes {
		return cgerr.NewInvalidArgError("occa.CopyToFloat64", "%d bytes requested from a %d byte allocation", bytes, m.bytes)
	}
	m.CopyTo(unsafe.Pointer(&data[0]), bytes)
	return nil
}

// CopyFromFloat64 writes data to the start of the allocation.
func (m *OCCAMemory) CopyFromFloat64(data []float64) error {
	if len(data) == 0 {
		return nil
	}
	bytes := int64(len(data) * 8)
	if bytes > m.bytes {
		return cgerr.NewInvalidArgError("occa.CopyFromFloat64", "%d bytes written to a %d byte allocation", bytes, m.bytes)
	}
	m.CopyFrom(unsafe.Pointer(&data[0]), bytes)
	return nil
}

// Free releases the device memory.
func (m *OCCAMemory) Free() {
	C.freeMemory(m.memory)
}
