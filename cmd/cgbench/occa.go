//go:build occa

package main

import (
	_ "github.com/notargets/cgbench/exec/occa"
	"github.com/notargets/cgbench/occa"
)

func init() {
	occaVersion = occa.Version
}
