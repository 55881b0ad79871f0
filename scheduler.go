package secs

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// SystemFunc is one unit of per-tick work.
type SystemFunc func(w *World)

// systemEntry pairs a system with its scheduling metadata.
type systemEntry struct {
	name       string
	fn         SystemFunc
	stage      Stage
	mainThread bool
}

// SystemOption configures a system at registration time.
type SystemOption func(*systemEntry)

// MainThread gates the system to run inline on the host thread driving
// Process/PhysicsProcess. Required for any system that resolves a NodeHandle
// or otherwise touches the host graph.
func MainThread() SystemOption {
	return func(e *systemEntry) {
		e.mainThread = true
	}
}

// scheduler runs registered systems stage by stage each tick. Within a
// stage, main-thread systems run inline in registration order; the rest are
// fanned out to a bounded worker pool and joined before the next stage.
//
// A panicking system poisons the tick: the first panic is captured, the
// stage is still joined so no goroutine is left running, and the panic is
// re-raised to the caller.
type scheduler struct {
	stages  [stageCount][]systemEntry
	physics []systemEntry

	workers int
	log     *zap.Logger
}

func newScheduler(workers int, log *zap.Logger) *scheduler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &scheduler{workers: workers, log: log}
}

func (s *scheduler) add(e systemEntry) {
	s.stages[e.stage] = append(s.stages[e.stage], e)
}

func (s *scheduler) addPhysics(e systemEntry) {
	s.physics = append(s.physics, e)
}

// run executes one full frame pass.
func (s *scheduler) run(w *World) {
	for stage := Stage(0); stage < stageCount; stage++ {
		s.runStage(w, s.stages[stage])
	}
}

// runPhysics executes one physics pass. Physics systems are always
// main-thread: the pass exists for host physics state, which carries the
// same thread affinity as the rest of the graph.
func (s *scheduler) runPhysics(w *World) {
	for _, e := range s.physics {
		s.runInline(w, e)
	}
}

func (s *scheduler) runStage(w *World, entries []systemEntry) {
	var parallel []systemEntry
	for _, e := range entries {
		if e.mainThread {
			continue
		}
		parallel = append(parallel, e)
	}

	var (
		wg       sync.WaitGroup
		panicMu  sync.Mutex
		panicked any
	)

	sem := make(chan struct{}, s.workers)
	for _, e := range parallel {
		wg.Add(1)
		sem <- struct{}{}
		go func(e systemEntry) {
			defer func() {
				if r := recover(); r != nil {
					panicMu.Lock()
					if panicked == nil {
						panicked = fmt.Sprintf("system %q: %v", e.name, r)
					}
					panicMu.Unlock()
					s.log.Error("system panicked",
						zap.String("system", e.name),
						zap.Any("panic", r),
					)
				}
				<-sem
				wg.Done()
			}()
			e.fn(w)
		}(e)
	}

	// Main-thread systems run here, on the goroutine the host called us on,
	// concurrently with the worker pool. They never touch the same state:
	// workers are barred from the host graph by construction. The stage is
	// always joined, panic or not, so no worker outlives its tick.
	func() {
		defer wg.Wait()
		for _, e := range entries {
			if e.mainThread {
				s.runInline(w, e)
			}
		}
	}()

	if panicked != nil {
		panic(panicked)
	}
}

// runInline runs a single system on the calling goroutine, letting panics
// propagate to the frame boundary.
func (s *scheduler) runInline(w *World, e systemEntry) {
	e.fn(w)
}
