package exec

// Calls tallies kernel launches by kind.
type Calls struct {
	SPMV  int
	Dot   int
	Axpby int
}

// Counter wraps a Space and counts the kernels launched through it.
type Counter struct {
	Space
	calls Calls
}

// Count wraps s.
func Count(s Space) *Counter {
	return &Counter{Space: s}
}

// Calls returns the launches counted since creation or the last Reset.
func (c *Counter) Calls() Calls { return c.calls }

// Reset zeroes the counts.
func (c *Counter) Reset() { c.calls = Calls{} }

// Axpby counts the launch and forwards it.
func (c *Counter) Axpby(z Vector, alpha float64, x Vector, beta float64, y Vector) error {
	c.calls.Axpby++
	return c.Space.Axpby(z, alpha, x, beta, y)
}

// Dot counts the launch and forwards it.
func (c *Counter) Dot(x, y Vector) (float64, error) {
	c.calls.Dot++
	return c.Space.Dot(x, y)
}

// SPMV counts the launch and forwards it.
func (c *Counter) SPMV(y Vector, a Matrix, x Vector) error {
	c.calls.SPMV++
	return c.Space.SPMV(y, a, x)
}
