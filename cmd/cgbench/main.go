// Command cgbench runs the CG solve and DOT benchmarks on one or more
// execution spaces and prints their timing and bandwidth.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/notargets/cgbench"
	"github.com/notargets/cgbench/exec"
	_ "github.com/notargets/cgbench/exec/direct"
	_ "github.com/notargets/cgbench/exec/serial"
	"github.com/notargets/cgbench/exec/team"
)

func main() {
	var (
		n          = flag.Int("N", 100, "Problem edge length; the system has N^3 rows")
		maxIter    = flag.Int("max-iter", 200, "Maximum CG iterations")
		tol        = flag.Float64("tol", 0, "Residual norm at which CG stops")
		spaces     = flag.String("spaces", "team,direct", "Comma-separated execution spaces to run")
		dotN       = flag.Int("dot-n", 33554432, "DOT benchmark vector length")
		dotReps    = flag.Int("dot-reps", 10, "Timed DOT launches")
		skipDot    = flag.Bool("skip-dot", false, "Skip the DOT benchmark")
		workers    = flag.Int("workers", 0, "Worker goroutines per host space (0 = GOMAXPROCS)")
		occaDevice = flag.String("occa-device", "", `OCCA device properties, e.g. {"mode": "Serial"}`)
		occaProps  = flag.String("occa-build-props", "", `OCCA kernel build properties, e.g. {"compiler_flags": "-O3"}`)
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		jsonLog    = flag.Bool("json-log", false, "Write logs as JSON")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("Invalid log level %q: %v", *logLevel, err)
	}
	logger := cgbench.NewTextLogger(level)
	if *jsonLog {
		logger = cgbench.NewJSONLogger(level)
	}

	printHost()

	cfg := exec.Config{Workers: *workers, Device: *occaDevice, BuildProps: *occaProps}
	var opened []exec.Space
	for _, name := range strings.Split(*spaces, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s, err := exec.Open(name, cfg)
		if err != nil {
			log.Fatalf("Failed to open space: %v (available: %s)", err, strings.Join(exec.Spaces(), ", "))
		}
		defer s.Close()
		opened = append(opened, s)
	}
	if len(opened) == 0 {
		log.Fatal("No execution spaces selected")
	}

	failed := false
	if !*skipDot {
		bench, err := cgbench.NewDotBench(*dotN, cgbench.WithLogger(logger))
		if err != nil {
			log.Fatalf("Failed to set up DOT benchmark: %v", err)
		}
		for _, s := range opened {
			report, err := bench.Run(s, *dotReps)
			if err != nil {
				logger.WithSpace(s.Name()).Error("dot benchmark", "error", err)
				failed = true
				continue
			}
			report.Print(os.Stdout)
		}
	}

	solve, err := cgbench.NewCGSolve(*n, *maxIter, *tol, cgbench.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to set up CG benchmark: %v", err)
	}
	if err := solve.RunAll(os.Stdout, opened...); err != nil {
		logger.Error("cg benchmark", "error", err)
		failed = true
	}

	if failed {
		for _, s := range opened {
			s.Close()
		}
		os.Exit(1)
	}
}

// occaVersion is set when the binary is built with the occa tag.
var occaVersion func() string

func printHost() {
	fmt.Printf("GOARCH: %s, %d cores, GOMAXPROCS %d\n", runtime.GOARCH, runtime.NumCPU(), runtime.GOMAXPROCS(0))
	features := []struct {
		name      string
		supported bool
	}{
		{"AVX", cpu.X86.HasAVX},
		{"AVX2", cpu.X86.HasAVX2},
		{"AVX512F", cpu.X86.HasAVX512F},
		{"FMA", cpu.X86.HasFMA},
		{"ASIMD", cpu.ARM64.HasASIMD},
	}
	var have []string
	for _, f := range features {
		if f.supported {
			have = append(have, f.name)
		}
	}
	if len(have) == 0 {
		have = append(have, "none")
	}
	fmt.Printf("SIMD: %s; team vector length %d\n", strings.Join(have, " "), team.DefaultVectorLength())
	if occaVersion != nil {
		fmt.Printf("OCCA: %s\n", occaVersion())
	}
}
