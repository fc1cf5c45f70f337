package team

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/notargets/cgbench/cgerr"
)

// pool is a fixed set of worker goroutines that kernel launches are split
// across. A launch hands each worker one contiguous chunk of the index space
// and blocks until every chunk has run.
type pool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
	closed  atomic.Bool
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &pool{
		workers: workers,
		tasks:   make(chan func(), workers*2),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// chunks returns how a range of n items is split: the chunk count and the
// number of items per chunk. No chunk is empty.
func (p *pool) chunks(n int) (count, per int) {
	if n <= 0 {
		return 0, 0
	}
	count = p.workers
	if n < count {
		count = n
	}
	per = (n + count - 1) / count
	count = (n + per - 1) / per
	return count, per
}

// run executes body over [0, n) split into chunks and waits for all of them.
// body receives the chunk index and its half-open range.
func (p *pool) run(n int, body func(chunk, begin, end int)) error {
	if p.closed.Load() {
		return cgerr.NewExecutionError("team.launch", "space is closed", nil)
	}
	count, per := p.chunks(n)
	if count == 0 {
		return nil
	}
	if count == 1 {
		body(0, 0, n)
		return nil
	}

	var done sync.WaitGroup
	done.Add(count)
	for c := 0; c < count; c++ {
		begin := c * per
		end := begin + per
		if end > n {
			end = n
		}
		p.tasks <- func() {
			defer done.Done()
			body(c, begin, end)
		}
	}
	done.Wait()
	return nil
}

func (p *pool) close() {
	if p.closed.CompareAndSwap(false, true) {
		close(p.tasks)
		p.wg.Wait()
	}
}
