// Package cgbench benchmarks a conjugate-gradient sparse solver and a dot
// product across interchangeable kernel execution spaces.
//
// The same CG algorithm (package cg) runs on every space registered with
// package exec: a portable team-dispatch space, a direct chunked-loop space,
// a serial reference and, when built with the occa tag, an OCCA device.
// CGSolve reports iterations, time, GFlop/s and GB/s for each.
//
// Basic usage:
//
//	bench, err := cgbench.NewCGSolve(100, 200, 1e-10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	space, err := exec.Open("team", exec.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer space.Close()
//	report, err := bench.Run(space)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report.Print(os.Stdout)
package cgbench
