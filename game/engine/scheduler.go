package engine

import (
	"sort"
	"time"
)

// deferredTask is a resolution waiting for its delay to elapse
type deferredTask struct {
	due        time.Duration
	generation uint64
	seq        uint64
	run        func()
}

// Scheduler runs deferred work on the caller's goroutine. It owns no clock;
// time only moves when Advance is called.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	tasks []deferredTask
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// After schedules fn to run once delay has elapsed. The task is tagged with
// the grid generation it belongs to.
func (s *Scheduler) After(delay time.Duration, generation uint64, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.tasks = append(s.tasks, deferredTask{
		due:        s.now + delay,
		generation: generation,
		seq:        s.seq,
		run:        fn,
	})
}

// Advance moves the scheduler clock forward and runs every due task whose
// generation equals current, in due order. Stale tasks are dropped without
// running. It returns the number of tasks executed.
func (s *Scheduler) Advance(delta time.Duration, current uint64) int {
	if delta > 0 {
		s.now += delta
	}

	executed := 0
	for {
		due := s.popDue()
		if due == nil {
			return executed
		}
		if due.generation != current {
			continue
		}
		due.run()
		executed++
	}
}

// NextDue returns the due time of the earliest waiting task
func (s *Scheduler) NextDue() (time.Duration, bool) {
	if len(s.tasks) == 0 {
		return 0, false
	}
	next := s.tasks[0].due
	for _, task := range s.tasks[1:] {
		if task.due < next {
			next = task.due
		}
	}
	return next, true
}

// Pending returns the number of tasks that have not run yet
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Now returns the scheduler clock
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// popDue removes and returns the earliest due task, or nil. Tasks can
// schedule more work while running, so the queue is re-read every time.
func (s *Scheduler) popDue() *deferredTask {
	if len(s.tasks) == 0 {
		return nil
	}
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due == s.tasks[j].due {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due < s.tasks[j].due
	})
	if s.tasks[0].due > s.now {
		return nil
	}
	task := s.tasks[0]
	s.tasks = s.tasks[1:]
	return &task
}
