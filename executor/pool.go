package executor

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pool runs tasks on a bounded set of reusable workers. Idle workers are kept
// in FILO order, so the most recently parked one serves the next task, which
// keeps CPU caches warm; workers idling longer than maxIdle are reaped.
type Pool struct {
	maxWorkers int
	maxIdle    time.Duration
	log        zerolog.Logger

	lock         sync.Mutex
	workersCount int
	mustStop     bool
	ready        []*workerChan

	stopCh         chan struct{}
	workerChanPool sync.Pool
}

type workerChan struct {
	lastUseTime time.Time
	ch          chan func()
}

func NewPool(maxWorkers int, maxIdle time.Duration, log zerolog.Logger) *Pool {
	if maxIdle <= 0 {
		maxIdle = 10 * time.Second
	}

	return &Pool{
		maxWorkers: maxWorkers,
		maxIdle:    maxIdle,
		log:        log,
	}
}

func (p *Pool) Start() {
	if p.stopCh != nil {
		return
	}

	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.workerChanPool.New = func() any {
		return &workerChan{
			ch: make(chan func(), 1),
		}
	}

	go func() {
		var scratch []*workerChan
		for {
			p.clean(&scratch)
			select {
			case <-stopCh:
				return
			default:
				time.Sleep(p.maxIdle)
			}
		}
	}()
}

func (p *Pool) Stop() {
	if p.stopCh == nil {
		return
	}

	close(p.stopCh)
	p.stopCh = nil

	// Stop all the workers waiting for tasks. Busy workers finish their
	// current task, notice mustStop and exit on their own.
	p.lock.Lock()
	ready := p.ready
	for i := range ready {
		ready[i].ch <- nil
		ready[i] = nil
	}
	p.ready = ready[:0]
	p.mustStop = true
	p.lock.Unlock()
}

// Execute hands the task to an idle worker, spawning a new one while below
// the cap. Returns ErrSaturated when every worker is busy. Never blocks.
func (p *Pool) Execute(task func()) error {
	ch := p.getCh()
	if ch == nil {
		return ErrSaturated
	}

	ch.ch <- task

	return nil
}

func (p *Pool) clean(scratch *[]*workerChan) {
	criticalTime := time.Now().Add(-p.maxIdle)

	p.lock.Lock()
	ready := p.ready
	n := len(ready)

	l, r := 0, n-1
	for l <= r {
		mid := (l + r) / 2
		if criticalTime.After(p.ready[mid].lastUseTime) {
			l = mid + 1
		} else {
			r = mid - 1
		}
	}
	i := r
	if i == -1 {
		p.lock.Unlock()
		return
	}

	*scratch = append((*scratch)[:0], ready[:i+1]...)
	m := copy(ready, ready[i+1:])
	for i = m; i < n; i++ {
		ready[i] = nil
	}
	p.ready = ready[:m]
	p.lock.Unlock()

	// Notify obsolete workers outside the lock, as their channels may be
	// momentarily blocking.
	tmp := *scratch
	for i := range tmp {
		tmp[i].ch <- nil
		tmp[i] = nil
	}
}

func (p *Pool) getCh() *workerChan {
	var ch *workerChan
	createWorker := false

	p.lock.Lock()
	ready := p.ready
	n := len(ready) - 1
	if n < 0 {
		if p.workersCount < p.maxWorkers {
			createWorker = true
			p.workersCount++
		}
	} else {
		ch = ready[n]
		ready[n] = nil
		p.ready = ready[:n]
	}
	p.lock.Unlock()

	if ch == nil {
		if !createWorker {
			return nil
		}

		vch := p.workerChanPool.Get()
		ch = vch.(*workerChan)
		go func() {
			p.workerFunc(ch)
			p.workerChanPool.Put(vch)
		}()
	}

	return ch
}

func (p *Pool) release(ch *workerChan) bool {
	ch.lastUseTime = time.Now()

	p.lock.Lock()
	if p.mustStop {
		p.lock.Unlock()
		return false
	}
	p.ready = append(p.ready, ch)
	p.lock.Unlock()

	return true
}

func (p *Pool) workerFunc(ch *workerChan) {
	for task := range ch.ch {
		if task == nil {
			break
		}

		p.run(task)

		if !p.release(ch) {
			break
		}
	}

	p.lock.Lock()
	p.workersCount--
	p.lock.Unlock()
}

func (p *Pool) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().Interface("panic", rec).Msg("task panicked")
		}
	}()

	task()
}
