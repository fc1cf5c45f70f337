//go:build occa

package occa_test

import (
	"testing"

	"github.com/notargets/cgbench/cg"
	"github.com/notargets/cgbench/csr/generate"
	"github.com/notargets/cgbench/exec"
	"github.com/notargets/cgbench/exec/exectest"
	"github.com/notargets/cgbench/exec/occa"
	"github.com/notargets/cgbench/vec"
)

func open(t *testing.T) exec.Space {
	s, err := occa.New(occa.Config{})
	if err != nil {
		t.Fatalf("Failed to create OCCA space: %v", err)
	}
	return s
}

func TestConformance(t *testing.T) {
	exectest.Run(t, open)
}

func TestRegistered(t *testing.T) {
	s, err := exec.Open(occa.Name, exec.Config{Device: `{"mode": "Serial"}`})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if mode := s.(*occa.Space).Mode(); mode != "Serial" {
		t.Errorf("Expected mode 'Serial', got '%s'", mode)
	}
}

func TestForeignVector(t *testing.T) {
	s := open(t)
	defer s.Close()
	other := open(t)
	defer other.Close()

	x, err := s.NewVector("x", 4)
	if err != nil {
		t.Fatal(err)
	}
	y, err := other.NewVector("y", 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Dot(x, y); err == nil {
		t.Error("Expected error for a vector from another space")
	}
	if _, err := s.Dot(x, vec.Wrap("host", make([]float64, 4))); err == nil {
		t.Error("Expected error for a host vector")
	}
}

func TestClosed(t *testing.T) {
	s := open(t)
	x, err := s.NewVector("x", 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Dot(x, x); err == nil {
		t.Error("Expected error after Close")
	}
}

func TestSolve(t *testing.T) {
	s := open(t)
	defer s.Close()

	m, err := generate.Matrix(4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := generate.Vector(4)
	if err != nil {
		t.Fatal(err)
	}
	a, err := s.LoadMatrix(m)
	if err != nil {
		t.Fatal(err)
	}
	db, err := s.LoadVector(b)
	if err != nil {
		t.Fatal(err)
	}

	res, err := cg.Solve(s, a, db, cg.Options{MaxIter: 50, Tolerance: 1e-8})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Errorf("Expected convergence, residual %g after %d iterations", res.Residual, res.Iterations)
	}
}

func TestFreeReleasesAllocations(t *testing.T) {
	s, err := occa.New(occa.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	m, err := generate.Matrix(4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := generate.Vector(4)
	if err != nil {
		t.Fatal(err)
	}
	a, err := s.LoadMatrix(m)
	if err != nil {
		t.Fatal(err)
	}
	db, err := s.LoadVector(b)
	if err != nil {
		t.Fatal(err)
	}

	opts := cg.Options{MaxIter: 50, Tolerance: 1e-8}
	if _, err := cg.Solve(s, a, db, opts); err != nil {
		t.Fatal(err)
	}
	live := s.Allocations()
	for i := 0; i < 3; i++ {
		if _, err := cg.Solve(s, a, db, opts); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Allocations(); got != live {
		t.Errorf("Expected %d live allocations after repeated solves, got %d", live, got)
	}

	if err := s.FreeMatrix(a); err != nil {
		t.Fatal(err)
	}
	if err := s.FreeVector(db); err != nil {
		t.Fatal(err)
	}
	if got := s.Allocations(); got != live-4 {
		t.Errorf("Expected %d live allocations after free, got %d", live-4, got)
	}
	// A second free is a no-op.
	if err := s.FreeVector(db); err != nil {
		t.Error(err)
	}

	other := open(t)
	defer other.Close()
	y, err := other.NewVector("y", 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.FreeVector(y); err == nil {
		t.Error("Expected error freeing a vector from another space")
	}
}

func TestBuildProps(t *testing.T) {
	s, err := exec.Open(occa.Name, exec.Config{BuildProps: `{"defines": {"CGBENCH_UNUSED": 1}}`})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	x, err := s.LoadVector(vec.Wrap("x", []float64{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Dot(x, x)
	if err != nil {
		t.Fatal(err)
	}
	if got != 14 {
		t.Errorf("Expected 14, got %v", got)
	}
}
