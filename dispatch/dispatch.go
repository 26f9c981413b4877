package dispatch

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rsio/chancore/chlog"
	"github.com/rsio/chancore/channel"
)

// Handler is invoked when its bound channel becomes ready. A returned
// error (or a panic, which is recovered and treated the same way) is
// recorded as that channel's fault and ends its registration.
type Handler func() error

const (
	minBackoff = time.Microsecond
	maxBackoff = time.Millisecond
)

type task struct {
	ch      channel.Channel
	handler Handler
}

// Dispatch registers channel/handler bindings and runs them: synchronous
// channels are polled from Run's own goroutine, asynchronous channels each
// get a dedicated goroutine blocked on Wait. Either path reports
// termination (close or handler error) through a shared, FIFO fault queue
// that Run drains one record at a time.
type Dispatch struct {
	mu    sync.Mutex
	tasks map[channel.Channel]*task
	order []channel.Channel // synchronous channels only, insertion order

	faultsMu sync.Mutex
	faults   []Result

	Log chlog.Logger
}

// New returns an empty Dispatch, ready to accept registrations.
func New() *Dispatch {
	return &Dispatch{tasks: make(map[channel.Channel]*task)}
}

// Add registers ch with handler. Asynchronous channels get a worker
// goroutine started immediately; synchronous channels are polled by Run.
func (d *Dispatch) Add(ch channel.Channel, handler Handler) error {
	d.mu.Lock()
	if _, exists := d.tasks[ch]; exists {
		d.mu.Unlock()
		return errors.WithStack(ErrDuplicateChannel)
	}
	if !ch.TryClaim(d) {
		d.mu.Unlock()
		return errors.WithStack(ErrDuplicateChannel)
	}
	t := &task{ch: ch, handler: handler}
	d.tasks[ch] = t
	synchronous := ch.Synchronous()
	if synchronous {
		d.order = append(d.order, ch)
	}
	d.mu.Unlock()

	d.Log.Debug().Log("channel registered")

	if !synchronous {
		go d.runWorker(ch, t)
	}
	return nil
}

// runWorker is the body of the dedicated goroutine for one asynchronous
// channel: block on Wait, then either post a close fault or invoke the
// handler, repeating until one of those posts a fault and the goroutine
// exits. A panic in Wait is recovered and posted as a fault the same way.
func (d *Dispatch) runWorker(ch channel.Channel, t *task) {
	for {
		if err := invoke(func() error { ch.Wait(); return nil }); err != nil {
			d.postFault(ch, err)
			return
		}
		if ch.Closed() {
			d.postFault(ch, nil)
			return
		}
		if err := invoke(t.handler); err != nil {
			d.postFault(ch, err)
			return
		}
	}
}

// invoke calls h, wrapping a returned error or a recovered panic in a
// HandlerError so either can travel through the fault queue.
func invoke(h Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newHandlerError(fmt.Errorf("panic: %v", r))
		}
	}()
	if herr := h(); herr != nil {
		return newHandlerError(herr)
	}
	return nil
}

// pollChannel calls ch.Poll(), recovering a panic the same way invoke
// does, since the original contract treats an exception from poll exactly
// like one from the handler.
func pollChannel(ch channel.Channel) (ready bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newHandlerError(fmt.Errorf("panic: %v", r))
		}
	}()
	ready = ch.Poll()
	return
}

// Run drives every synchronous channel until a fault (a close or a
// handler/poll error) is available, then returns it. It returns an empty
// Result immediately if nothing is registered.
func (d *Dispatch) Run() Result {
	if !d.hasTasks() {
		return Result{}
	}

	interval := minBackoff
	waits := 0
	for {
		order := d.syncOrder()
		calls := 0

	poll:
		for _, ch := range order {
			ready, err := pollChannel(ch)
			if err != nil {
				d.postFault(ch, err)
				break poll
			}
			if !ready {
				continue
			}
			if ch.Closed() {
				d.postFault(ch, nil)
				break poll
			}
			t := d.lookupTask(ch)
			if t == nil {
				continue
			}
			if err := invoke(t.handler); err != nil {
				d.postFault(ch, err)
				break poll
			}
			calls++
		}

		if res, ok := d.popFault(); ok {
			if res.Channel != nil {
				d.Drop(res.Channel)
			}
			return res
		}

		if calls == 0 {
			waits++
			if waits == 1 {
				interval = minBackoff
			} else {
				interval *= 2
				if interval > maxBackoff {
					interval = maxBackoff
				}
			}
			time.Sleep(interval)
		} else {
			waits = 0
			runtime.Gosched()
		}
	}
}

// Stop closes every registered channel and drains the dispatcher by
// repeatedly calling Run, discarding results, until nothing remains
// registered. It must be called before a Dispatch goes out of scope so
// every asynchronous worker goroutine observes its channel closing and
// exits.
func (d *Dispatch) Stop() {
	d.mu.Lock()
	chans := make([]channel.Channel, 0, len(d.tasks))
	for ch := range d.tasks {
		chans = append(chans, ch)
	}
	d.mu.Unlock()

	for _, ch := range chans {
		_ = ch.Close()
	}
	for d.hasTasks() {
		d.Run()
	}
}

// Drop removes ch's task record and releases its ownership claim, without
// closing it. Used internally once a fault has been recorded for a
// channel; also usable directly by a caller that wants to deregister a
// still-open channel.
func (d *Dispatch) Drop(ch channel.Channel) {
	d.mu.Lock()
	_, ok := d.tasks[ch]
	if ok {
		delete(d.tasks, ch)
		d.removeFromOrderLocked(ch)
	}
	d.mu.Unlock()
	if ok {
		ch.Release(d)
		d.Log.Debug().Log("channel dropped")
	}
}

func (d *Dispatch) removeFromOrderLocked(ch channel.Channel) {
	for i, o := range d.order {
		if o == ch {
			d.order = append(d.order[:i], d.order[i+1:]...)
			return
		}
	}
}

func (d *Dispatch) hasTasks() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks) > 0
}

func (d *Dispatch) syncOrder() []channel.Channel {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]channel.Channel, len(d.order))
	copy(out, d.order)
	return out
}

func (d *Dispatch) lookupTask(ch channel.Channel) *task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tasks[ch]
}

func (d *Dispatch) postFault(ch channel.Channel, err error) {
	d.faultsMu.Lock()
	d.faults = append(d.faults, Result{Channel: ch, Err: err})
	d.faultsMu.Unlock()
	_ = ch.Close()
	if err != nil {
		d.Log.Err().Err(err).Log("fault posted")
	} else {
		d.Log.Debug().Log("channel closed")
	}
}

func (d *Dispatch) popFault() (Result, bool) {
	d.faultsMu.Lock()
	defer d.faultsMu.Unlock()
	if len(d.faults) == 0 {
		return Result{}, false
	}
	res := d.faults[0]
	d.faults = d.faults[1:]
	return res, true
}
