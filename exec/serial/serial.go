// Package serial is the sequential reference execution space.
package serial

import (
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/cgbench/exec"
)

// Name is the registry name of the serial space.
const Name = "serial"

func init() {
	exec.Register(Name, func(exec.Config) (exec.Space, error) {
		return New(), nil
	})
}

// Space runs every kernel on the calling goroutine.
type Space struct {
	exec.Host
}

var _ exec.Space = (*Space)(nil)

// New returns a serial space.
func New() *Space { return &Space{} }

func (s *Space) Name() string { return Name }

func (s *Space) Axpby(z exec.Vector, alpha float64, x exec.Vector, beta float64, y exec.Vector) error {
	zd, xd, yd, err := exec.HostAxpby("serial.Axpby", z, x, y)
	if err != nil {
		return err
	}
	for i := range zd {
		zd[i] = alpha*xd[i] + beta*yd[i]
	}
	return nil
}

func (s *Space) Dot(x, y exec.Vector) (float64, error) {
	xd, yd, err := exec.HostDot("serial.Dot", x, y)
	if err != nil {
		return 0, err
	}
	return floats.Dot(xd, yd), nil
}

func (s *Space) SPMV(y exec.Vector, a exec.Matrix, x exec.Vector) error {
	yd, m, xd, err := exec.HostSPMV("serial.SPMV", y, a, x)
	if err != nil {
		return err
	}
	return m.MulVec(yd, xd)
}

func (s *Space) Close() error { return nil }
