//go:build occa

package occa

/*
#include <occa.h>
#include <stdlib.h>

static void freeJson(occaJson j) {
    occaFree(&j);
}
*/
import "C"
import (
	"unsafe"
)

// OCCAJson is an OCCA property object.
type OCCAJson struct {
	json C.occaJson
}

// JsonParse parses a JSON string.
func JsonParse(jsonStr string) *OCCAJson {
	cStr := C.CString(jsonStr)
	defer C.free(unsafe.Pointer(cStr))
	return &OCCAJson{json: C.occaJsonParse(cStr)}
}

// Free releases the object.
func (j *OCCAJson) Free() {
	C.freeJson(j.json)
}
