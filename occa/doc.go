// Package occa is a thin cgo binding to libocca: device creation from a JSON
// property string, device memory, and kernels built from OKL source and run
// with Go arguments.
//
// The binding needs libocca headers under /usr/local/include and the library
// under /usr/local/lib, and is compiled only with the occa build tag:
//
//	go test -tags occa ./occa/...
package occa
