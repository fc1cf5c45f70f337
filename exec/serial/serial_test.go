package serial_test

import (
	"testing"

	"github.com/notargets/cgbench/exec"
	"github.com/notargets/cgbench/exec/exectest"
	"github.com/notargets/cgbench/exec/serial"
)

func TestConformance(t *testing.T) {
	exectest.Run(t, func(t *testing.T) exec.Space { return serial.New() })
}
