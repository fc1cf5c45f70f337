//go:build occa

package occa

/*
#cgo CFLAGS: -I/usr/local/include
#include <occa/defines/occa.hpp>
*/
import "C"
import (
	"fmt"
)

// Version constants from the OCCA headers at compile time.
const (
	OccaMajorVersion = C.OCCA_MAJOR_VERSION
	OccaMinorVersion = C.OCCA_MINOR_VERSION
	OccaPatchVersion = C.OCCA_PATCH_VERSION
)

// Version returns the OCCA version the binding was compiled against.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", OccaMajorVersion, OccaMinorVersion, OccaPatchVersion)
}
