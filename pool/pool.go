package pool

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/rsio/chancore/chlog"
)

// Job is a unit of fire-and-forget work submitted to a ThreadPool.
type Job func()

const idleSleep = time.Millisecond

type worker struct {
	mu    sync.Mutex
	deque []Job
}

// ThreadPool is a fixed-size pool of goroutine workers, each with its own
// mutex-protected deque. Submitted jobs are admitted round-robin; a worker
// prefers popping its own deque's back before stealing from the front of a
// randomly chosen peer's.
type ThreadPool struct {
	workers []*worker
	next    uint64 // atomic, round-robin admission cursor

	unfinished  int64 // atomic, jobs submitted but not yet run
	clearing    int64 // atomic, >0 while a Clear is in progress
	shuttingDown int32 // atomic bool

	wg sync.WaitGroup

	Log chlog.Logger
}

// New starts a pool with n workers. n <= 0 requests one worker per
// logical CPU, falling back to a single worker if that is also zero.
func New(n int) *ThreadPool {
	n = adjustThreads(n)
	p := &ThreadPool{workers: make([]*worker, n)}
	for i := range p.workers {
		p.workers[i] = &worker{}
	}
	p.wg.Add(n)
	for _, w := range p.workers {
		go p.threadPayload(w)
	}
	return p
}

func adjustThreads(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n <= 0 {
		n = 1
	}
	return n
}

// Insert admits job onto the next worker in round-robin order. A nil job,
// or a call made while Clear is in progress, is silently ignored.
func (p *ThreadPool) Insert(job Job) {
	if job == nil || atomic.LoadInt64(&p.clearing) != 0 {
		return
	}
	idx := int(atomic.AddUint64(&p.next, 1)-1) % len(p.workers)
	w := p.workers[idx]
	w.mu.Lock()
	w.deque = append(w.deque, job)
	w.mu.Unlock()
	atomic.AddInt64(&p.unfinished, 1)
}

func (p *ThreadPool) threadPayload(w *worker) {
	defer p.wg.Done()
	seed := int64(uintptr(unsafe.Pointer(w)))
	rng := rand.New(rand.NewSource(seed))
	for {
		job := popBack(w)
		if job == nil {
			peer := p.workers[rng.Intn(len(p.workers))]
			job = popFront(peer)
		}
		if job != nil {
			job()
			atomic.AddInt64(&p.unfinished, -1)
			p.Log.Debug().Log("job completed")
			continue
		}
		if atomic.LoadInt32(&p.shuttingDown) != 0 {
			return
		}
		time.Sleep(idleSleep)
	}
}

func popBack(w *worker) Job {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := len(w.deque)
	if n == 0 {
		return nil
	}
	job := w.deque[n-1]
	w.deque = w.deque[:n-1]
	return job
}

func popFront(w *worker) Job {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.deque) == 0 {
		return nil
	}
	job := w.deque[0]
	w.deque = w.deque[1:]
	return job
}

// Clear discards every pending job (jobs already running are allowed to
// finish) and blocks until the pool is idle.
func (p *ThreadPool) Clear() {
	atomic.AddInt64(&p.clearing, 1)
	defer atomic.AddInt64(&p.clearing, -1)
	for _, w := range p.workers {
		w.mu.Lock()
		purged := int64(len(w.deque))
		w.deque = nil
		w.mu.Unlock()
		atomic.AddInt64(&p.unfinished, -purged)
	}
	p.Wait()
}

// Wait blocks until every admitted job has run.
func (p *ThreadPool) Wait() {
	for atomic.LoadInt64(&p.unfinished) != 0 {
		time.Sleep(idleSleep)
	}
}

// WaitFor blocks up to d, reporting whether the pool went idle in time.
func (p *ThreadPool) WaitFor(d time.Duration) bool {
	return p.WaitUntil(time.Now().Add(d))
}

// WaitUntil blocks until the pool is idle or t is reached.
func (p *ThreadPool) WaitUntil(t time.Time) bool {
	for {
		if atomic.LoadInt64(&p.unfinished) == 0 {
			return true
		}
		if !time.Now().Before(t) {
			return false
		}
		time.Sleep(idleSleep)
	}
}

// Poll reports whether the pool is currently idle.
func (p *ThreadPool) Poll() bool { return atomic.LoadInt64(&p.unfinished) == 0 }

// Threads returns the number of workers the pool was started with.
func (p *ThreadPool) Threads() int { return len(p.workers) }

// Close discards pending work, signals every worker to exit once its
// current job (if any) finishes, and waits for them to do so.
func (p *ThreadPool) Close() error {
	p.Clear()
	atomic.StoreInt32(&p.shuttingDown, 1)
	p.wg.Wait()
	return nil
}
