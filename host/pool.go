package host

import (
	"sync"

	"github.com/chazu/loom/engine"
)

// poolCeiling is the hard cap on concurrently live workers. It is a
// process-wide constant fixed by contract, not configuration: a value
// above it is where a prior worker-runtime implementation deadlocked.
const poolCeiling = 15

// pool bounds concurrent workers to poolCeiling and reuses idle ones for
// subsequent compilations, implemented as a counting semaphore (a
// pre-filled buffered channel) guarding a spawn-or-reuse decision, the
// same shape used elsewhere in the domain stack for bounding concurrent
// access to a limited resource.
type pool struct {
	eng    engine.Engine
	permit chan struct{}

	mu     sync.Mutex
	idle   []*worker
	nextID uint32
}

func newPool(eng engine.Engine) *pool {
	permit := make(chan struct{}, poolCeiling)
	for i := 0; i < poolCeiling; i++ {
		permit <- struct{}{}
	}
	return &pool{eng: eng, permit: permit}
}

// acquire returns an idle worker if one exists, otherwise blocks for a
// free permit and spawns a fresh worker with the next compilation id.
// Fair ordering across waiters is not required by contract; Go's channel
// semantics give a reasonably fair FIFO in practice.
func (p *pool) acquire() *worker {
	<-p.permit

	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		w := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return w
	}
	id := p.nextID
	p.nextID++
	p.mu.Unlock()

	w := newWorker(id, p.eng)
	go w.run()
	return w
}

// release returns w to the idle set and frees its permit, waking one
// waiter blocked in acquire if any.
func (p *pool) release(w *worker) {
	p.mu.Lock()
	p.idle = append(p.idle, w)
	p.mu.Unlock()

	p.permit <- struct{}{}
}
