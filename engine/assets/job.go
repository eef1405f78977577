package assets

import (
	"sync"

	"github.com/hadean/forge/engine/handle"
)

// maxInFlightJobs is the boot-time capacity of the load-job table —
// load jobs get a handle the same way GPU resources do (§4.1), so a stale
// JobHandle is detectable rather than silently aliasing a newer job.
const maxInFlightJobs = 4096

// loadJob is one in-flight or completed asset load.
type loadJob struct {
	done   chan struct{}
	result LoadResult
}

// jobSystem runs asset load jobs on worker goroutines with a bounded
// concurrency limit, honoring a single optional dependency per job so a
// child load never begins before its parent's job finishes (§4.3 "Load
// job behavior", §5 ordering guarantees). Grounded on
// engine/systems/job.go's worker-pool-over-a-channel shape, but jobs here
// are plain goroutines gated by a semaphore rather than a fixed pool of
// blocked workers — waiting on a parent must never hold a concurrency slot,
// or a deep parent/child chain could deadlock a small worker pool.
type jobSystem struct {
	pool *handle.Pool[*loadJob]
	sem  chan struct{}
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func newJobSystem(concurrency, _ int) *jobSystem {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &jobSystem{
		pool: handle.New[*loadJob](maxInFlightJobs),
		sem:  make(chan struct{}, concurrency),
	}
}

// submit enqueues fn to run once dep (if not nil) has completed, and
// returns a handle the caller can wait on.
func (js *jobSystem) submit(dep JobHandle, fn func() LoadResult) JobHandle {
	js.mu.Lock()
	h := js.pool.Acquire()
	job := &loadJob{done: make(chan struct{})}
	*js.pool.Get(h) = job
	js.mu.Unlock()

	js.wg.Add(1)
	go func() {
		defer js.wg.Done()
		defer close(job.done)

		if !dep.IsNil() {
			if depJob, ok := js.pool.TryGet(dep); ok {
				<-(*depJob).done
			}
		}

		js.sem <- struct{}{}
		defer func() { <-js.sem }()

		job.result = fn()
	}()

	return h
}

// wait blocks until h's job completes and returns its result. Waiting on
// an unknown or already-recycled handle returns a failed result rather
// than blocking forever.
func (js *jobSystem) wait(h JobHandle) LoadResult {
	job, ok := js.pool.TryGet(h)
	if !ok {
		return LoadResult{OK: false}
	}
	<-(*job).done
	return (*job).result
}

// isDone reports whether h's job has finished, without blocking.
func (js *jobSystem) isDone(h JobHandle) bool {
	job, ok := js.pool.TryGet(h)
	if !ok {
		return true
	}
	select {
	case <-(*job).done:
		return true
	default:
		return false
	}
}

// release frees h's pool slot. Callers must only release a job they know
// has already completed — acquire.go does this for an entry's previous
// job handle right before replacing it with a fresh one on reacquire,
// since a completed job's slot is never read again once that happens.
func (js *jobSystem) release(h JobHandle) {
	if h.IsNil() {
		return
	}
	js.mu.Lock()
	defer js.mu.Unlock()
	js.pool.Release(h)
}

func (js *jobSystem) shutdown() {
	js.mu.Lock()
	js.closed = true
	js.mu.Unlock()
	js.wg.Wait()
}
