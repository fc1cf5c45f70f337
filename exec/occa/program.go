// Package occa is the OCCA execution space: the three CG kernels are written
// in OKL, compiled at runtime by libocca for the device named in the
// configuration, and launched through the cgo binding in package occa.
//
// The space itself is compiled only with the occa build tag; without it the
// package still provides the kernel sources and preamble generation, and
// registers nothing.
package occa

import (
	"fmt"
	"strings"

	"github.com/notargets/cgbench/cgerr"
)

// Name is the registry name of the OCCA space.
const Name = "occa"

// DefaultDevice is the property string used when none is configured.
const DefaultDevice = `{"mode": "Serial"}`

// Accelerator-style SPMV team policy and the DOT reduction block.
const (
	DefaultRowsPerTeam = 32
	DefaultTeamSize    = 32
	DefaultBlock       = 256
	// maxInner is the CUDA limit on threads per @inner loop.
	maxInner = 1024
)

// Config holds the OCCA space settings. Zero values select defaults.
type Config struct {
	// Device is the OCCA device property string.
	Device string
	// BuildProps is an OCCA property object passed to every kernel build,
	// e.g. {"defines": {"EXTRA": 1}}. Empty selects the device defaults.
	BuildProps  string
	RowsPerTeam int
	TeamSize    int
	// Block is the @inner width of the AXPBY tiles and DOT groups. It must
	// be a power of two.
	Block int
}

func (c Config) resolve() (Config, error) {
	if c.RowsPerTeam < 0 || c.TeamSize < 0 || c.Block < 0 {
		return c, cgerr.NewInvalidArgError("occa.New", "negative setting in %+v", c)
	}
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if c.RowsPerTeam == 0 {
		c.RowsPerTeam = DefaultRowsPerTeam
	}
	if c.TeamSize == 0 {
		c.TeamSize = DefaultTeamSize
	}
	if c.Block == 0 {
		c.Block = DefaultBlock
	}
	if c.Block&(c.Block-1) != 0 {
		return c, cgerr.NewInvalidArgError("occa.New", "block %d is not a power of two", c.Block)
	}
	if c.TeamSize > maxInner || c.Block > maxInner {
		return c, cgerr.NewInvalidArgError("occa.New",
			"@inner limit exceeded: team size %d, block %d, limit %d", c.TeamSize, c.Block, maxInner)
	}
	return c, nil
}

// Preamble returns the type definitions and launch constants prepended to
// every kernel source.
func (c Config) Preamble() string {
	var sb strings.Builder

	sb.WriteString("typedef double real_t;\n")
	sb.WriteString("typedef long int_t;\n")
	sb.WriteString("#define REAL_ZERO 0.0\n")
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("#define ROWS_PER_TEAM %d\n", c.RowsPerTeam))
	sb.WriteString(fmt.Sprintf("#define TEAM_SIZE %d\n", c.TeamSize))
	sb.WriteString(fmt.Sprintf("#define BLOCK %d\n", c.Block))
	sb.WriteString("\n")

	return sb.String()
}

// Groups returns the number of DOT reduction groups for n entries.
func (c Config) Groups(n int) int {
	return (n + c.Block - 1) / c.Block
}

const axpbySource = `
@kernel void axpby(const int_t N,
                   real_t *z,
                   const real_t alpha,
                   const real_t *x,
                   const real_t beta,
                   const real_t *y) {
  for (int_t i = 0; i < N; ++i; @tile(BLOCK, @outer, @inner)) {
    z[i] = alpha * x[i] + beta * y[i];
  }
}
`

// dot reduces each BLOCK-wide group in shared memory and writes one partial
// per group; the partials are summed on the host.
const dotSource = `
@kernel void dot(const int_t N,
                 const real_t *x,
                 const real_t *y,
                 real_t *partials) {
  for (int_t group = 0; group < (N + BLOCK - 1) / BLOCK; ++group; @outer) {
    @shared real_t s_vec[BLOCK];

    for (int_t item = 0; item < BLOCK; ++item; @inner) {
      const int_t i = group * BLOCK + item;
      s_vec[item] = (i < N) ? x[i] * y[i] : REAL_ZERO;
    }

    for (int alive = BLOCK / 2; 0 < alive; alive /= 2) {
      for (int_t item = 0; item < BLOCK; ++item; @inner) {
        if (item < alive) {
          s_vec[item] += s_vec[item + alive];
        }
      }
    }

    for (int_t item = 0; item < BLOCK; ++item; @inner) {
      if (item == 0) {
        partials[group] = s_vec[0];
      }
    }
  }
}
`

const spmvSource = `
@kernel void spmv(const int_t nrows,
                  const int_t *rowPtr,
                  const int_t *colIdx,
                  const real_t *values,
                  const real_t *x,
                  real_t *y) {
  for (int_t team = 0; team < (nrows + ROWS_PER_TEAM - 1) / ROWS_PER_TEAM; ++team; @outer) {
    for (int_t thread = 0; thread < TEAM_SIZE; ++thread; @inner) {
      const int_t first = team * ROWS_PER_TEAM;
      const int_t last = (first + ROWS_PER_TEAM < nrows) ? first + ROWS_PER_TEAM : nrows;
      for (int_t row = first + thread; row < last; row += TEAM_SIZE) {
        real_t sum = REAL_ZERO;
        for (int_t k = rowPtr[row]; k < rowPtr[row + 1]; ++k) {
          sum += values[k] * x[colIdx[k]];
        }
        y[row] = sum;
      }
    }
  }
}
`

// Sources maps each kernel name to its OKL source, without the preamble.
var Sources = map[string]string{
	"axpby": axpbySource,
	"dot":   dotSource,
	"spmv":  spmvSource,
}
