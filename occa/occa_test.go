//go:build occa

package occa_test

import (
	"testing"

	"github.com/notargets/cgbench/occa"
)

const deviceStr = `{"mode": "Serial"}`

const scaleSource = `
@kernel void scale(const int N, const double alpha, double *x) {
  for (int i = 0; i < N; ++i; @tile(16, @outer, @inner)) {
    x[i] = alpha * x[i];
  }
}
`

func TestDevice(t *testing.T) {
	device, err := occa.NewDevice(deviceStr)
	if err != nil {
		t.Fatalf("Failed to create device: %v", err)
	}
	defer device.Free()

	if !device.IsInitialized() {
		t.Error("Device should be initialized")
	}
	if mode := device.Mode(); mode != "Serial" {
		t.Errorf("Expected mode 'Serial', got '%s'", mode)
	}
	device.Finish()
}

func TestMemoryRoundTrip(t *testing.T) {
	device, err := occa.NewDevice(deviceStr)
	if err != nil {
		t.Fatalf("Failed to create device: %v", err)
	}
	defer device.Free()

	host := []float64{1, 2, 3, 4, 5}
	mem := device.MallocFloat64(host)
	defer mem.Free()
	if mem.Size() != 40 {
		t.Errorf("Expected 40 bytes, got %d", mem.Size())
	}

	if err := mem.CopyFromFloat64([]float64{9, 8}); err != nil {
		t.Fatal(err)
	}
	out := make([]float64, 5)
	if err := mem.CopyToFloat64(out); err != nil {
		t.Fatal(err)
	}
	want := []float64{9, 8, 3, 4, 5}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}

	if err := mem.CopyToFloat64(make([]float64, 6)); err == nil {
		t.Error("Expected error reading past the allocation")
	}
}

func TestKernelRun(t *testing.T) {
	device, err := occa.NewDevice(deviceStr)
	if err != nil {
		t.Fatalf("Failed to create device: %v", err)
	}
	defer device.Free()

	kernel, err := device.BuildKernel(scaleSource, "scale", nil)
	if err != nil {
		t.Fatalf("Failed to build kernel: %v", err)
	}
	defer kernel.Free()
	if kernel.Name() != "scale" {
		t.Errorf("Expected kernel name 'scale', got '%s'", kernel.Name())
	}

	const n = 100
	host := make([]float64, n)
	for i := range host {
		host[i] = float64(i)
	}
	mem := device.MallocFloat64(host)
	defer mem.Free()

	if err := kernel.RunWithArgs(n, 2.5, mem); err != nil {
		t.Fatal(err)
	}
	device.Finish()

	out := make([]float64, n)
	if err := mem.CopyToFloat64(out); err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if v != 2.5*float64(i) {
			t.Errorf("x[%d] = %v, want %v", i, v, 2.5*float64(i))
		}
	}

	if err := kernel.RunWithArgs(n, "bad", mem); err == nil {
		t.Error("Expected error for unsupported argument type")
	}
}

func TestBuildProps(t *testing.T) {
	device, err := occa.NewDevice(deviceStr)
	if err != nil {
		t.Fatalf("Failed to create device: %v", err)
	}
	defer device.Free()

	props := occa.JsonParse(`{"defines": {"SCALE": 3.0}}`)
	defer props.Free()

	src := `
@kernel void scaleDefined(const int N, double *x) {
  for (int i = 0; i < N; ++i; @tile(16, @outer, @inner)) {
    x[i] = SCALE * x[i];
  }
}
`
	kernel, err := device.BuildKernel(src, "scaleDefined", props)
	if err != nil {
		t.Fatalf("Failed to build kernel: %v", err)
	}
	defer kernel.Free()

	mem := device.MallocFloat64([]float64{1, 2})
	defer mem.Free()
	if err := kernel.RunWithArgs(2, mem); err != nil {
		t.Fatal(err)
	}
	out := make([]float64, 2)
	if err := mem.CopyToFloat64(out); err != nil {
		t.Fatal(err)
	}
	if out[0] != 3 || out[1] != 6 {
		t.Errorf("Expected [3 6], got %v", out)
	}

	if v := occa.Version(); v == "" {
		t.Error("Version should not be empty")
	}
}
