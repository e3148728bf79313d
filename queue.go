package orecl

import (
	"runtime"
	"sync"
)

// Event is a handle to the completion of an enqueued command, the software
// equivalent of an OpenCL cl_event. Waiting on an Event blocks until the command it
// represents has finished, returning any error the command produced.
//
// This is the mechanism SPEC_FULL.md §5 describes as the "event-driven dependency"
// DAG, directly modelled on guda.Stream/guda.Stream.Submit. In FinalizeCalculation the
// input upload event is waited on before the kernel launch is enqueued, and each
// readback carries the launch Event in its wait list. Variate pool growth does not go
// through the queue; variatePool.ensure draws its samples synchronously.
type Event struct {
	done chan struct{}
	err  error
}

func newEvent() *Event {
	return &Event{done: make(chan struct{})}
}

// firedEvent returns an Event that has already completed, optionally with an error.
// Useful for commands with no predecessor (e.g. the very first enqueue in a queue).
func firedEvent(err error) *Event {
	e := newEvent()
	e.fire(err)
	return e
}

func (e *Event) fire(err error) {
	e.err = err
	close(e.done)
}

// Wait blocks until the command has completed and returns its error, if any.
func (e *Event) Wait() error {
	if e == nil {
		return nil
	}
	<-e.done
	return e.err
}

// CommandQueue is a software stand-in for an OpenCL command queue: commands are
// enqueued non-blocking and run once their wait-list events have fired, with
// in-flight concurrency bounded so one calculation cannot monopolise every core.
type CommandQueue struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewCommandQueue creates a queue with the given worker concurrency; workers <= 0
// defaults to runtime.NumCPU(), matching guda's launchInternal sizing.
func NewCommandQueue(workers int) *CommandQueue {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CommandQueue{sem: make(chan struct{}, workers)}
}

// Enqueue schedules fn to run once every event in waits has fired, and returns an
// Event that fires when fn completes. If any wait fails, fn is not run and its error
// propagates to the returned Event (the OpenCL equivalent of
// CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST).
func (q *CommandQueue) Enqueue(fn func() error, waits ...*Event) *Event {
	ev := newEvent()
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for _, w := range waits {
			if err := w.Wait(); err != nil {
				ev.fire(err)
				return
			}
		}
		q.sem <- struct{}{}
		err := fn()
		<-q.sem
		ev.fire(err)
	}()
	return ev
}

// Finish blocks until every command enqueued so far has completed, the software
// equivalent of clFinish. finalize.go does not call it: each phase there waits on its
// own Events before its timer is read.
func (q *CommandQueue) Finish() {
	q.wg.Wait()
}

// ParallelFor runs fn(i) for every i in [0, n), fanning out across up to
// runtime.NumCPU() goroutines of its own; it is not bounded by any CommandQueue's
// worker limit. This is the execution strategy behind a 1-D NDRange kernel launch: each work
// item i corresponds to one lane of the batch, exactly as spec.md's "Work item index
// is i = global_id(0)" contract describes. Modelled directly on
// guda.launchInternal's block/worker partitioning.
func ParallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := runtime.NumCPU()
	if n < workers {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
