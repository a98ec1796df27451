package watcher

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fsmon/fsmon/internal/debounce"
	"github.com/fsmon/fsmon/internal/observability"
	"github.com/fsmon/fsmon/internal/waiting"
)

// rootErrorLogRate limits warnings about an unreadable root to about one
// per minute, since the root fails again on every cycle until it is fixed.
const rootErrorLogRate = rate.Limit(1.0 / 60)

type scheduler struct {
	sync.Mutex

	cfg    Config
	logger *observability.CoreLogger

	// wg is done after the polling loop exits.
	wg sync.WaitGroup

	// cancelChan is closed when the loop should stop.
	cancelChan chan struct{}

	snapshots *Snapshotter

	// saved holds each root's last snapshot, index-aligned with
	// cfg.Roots. Each slot is read and written only with the scheduler
	// locked.
	saved []Snapshot

	// delay is the pause between poll cycles.
	delay waiting.Delay

	history *changeHistory

	// handlers are the registered callbacks per kind, in registration
	// order.
	handlers map[Kind][]func(ChangeEvent)

	// rootErrors rate-limits the warnings for roots that fail to scan.
	rootErrors *debounce.Debouncer

	isStarted  bool
	isFinished bool
}

var _ Scheduler = &scheduler{}
var _ SchedulerTesting = &scheduler{}

func newScheduler(params Params) (*scheduler, error) {
	cfg := params.Config.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := params.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}

	delay := params.Delay
	if delay == nil {
		delay = waiting.NewDelay(cfg.PollDelay)
	}

	s := &scheduler{
		cfg:        cfg,
		logger:     logger,
		cancelChan: make(chan struct{}),
		snapshots:  NewSnapshotter(params.FS),
		saved:      make([]Snapshot, len(cfg.Roots)),
		delay:      delay,
		history:    newChangeHistory(cfg.HistorySize),
		handlers:   make(map[Kind][]func(ChangeEvent)),
		rootErrors: debounce.NewDebouncer(rootErrorLogRate, 1, logger),
	}

	// Baseline snapshots, so that the first cycle diffs against the
	// state at construction rather than reporting every file as created.
	s.Lock()
	s.captureAll()
	s.Unlock()

	return s, nil
}

func (s *scheduler) Start() error {
	s.Lock()
	if s.isFinished {
		s.Unlock()
		return fmt.Errorf("watcher: tried to call Start() after Stop()")
	}
	if s.isStarted {
		s.Unlock()
		return fmt.Errorf("watcher: Start() called twice")
	}
	s.isStarted = true
	s.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case <-s.cancelChan:
				return
			default:
			}

			s.pollOnce()

			wait, cancel := s.delay.Wait()
			select {
			case <-wait:
				cancel()
			case <-s.cancelChan:
				cancel()
				return
			}
		}
	}()

	return nil
}

func (s *scheduler) Stop() {
	s.Lock()
	if s.isFinished {
		s.Unlock()
		return
	}
	s.isFinished = true
	started := s.isStarted

	// Forget all callbacks. A cycle that is already dispatching finishes
	// with the callbacks it copied; wg.Wait below outlasts it.
	s.handlers = make(map[Kind][]func(ChangeEvent))
	s.Unlock()

	close(s.cancelChan)
	if started {
		s.wg.Wait()
	}

	s.rootErrors.Stop()
}

func (s *scheduler) OnChange(kind Kind, fn func(ChangeEvent)) error {
	switch kind {
	case KindCreated, KindUpdated, KindRemoved, KindAll:
	default:
		return fmt.Errorf("watcher: unknown event kind %q", kind)
	}

	s.Lock()
	defer s.Unlock()

	if s.isFinished {
		return fmt.Errorf("watcher: tried to call OnChange() after Stop()")
	}

	s.handlers[kind] = append(s.handlers[kind], fn)
	return nil
}

func (s *scheduler) Stats() map[Kind]int {
	return s.history.Stats()
}

func (s *scheduler) History() []ChangeEvent {
	return s.history.Snapshot()
}

func (s *scheduler) PollNow() {
	s.pollOnce()
}

// pollOnce runs one cycle: capture and diff every root against its saved
// snapshot, swap the saved snapshots, then record and dispatch the events.
func (s *scheduler) pollOnce() {
	s.Lock()
	perRoot := s.captureAll()
	handlers := s.handlerSnapshot()
	s.Unlock()

	// Dispatch outside the lock so a callback may call OnChange, Stats
	// or History without deadlocking.
	for _, events := range perRoot {
		if len(events) == 0 {
			continue
		}
		s.history.Append(events...)
		for _, event := range events {
			for _, fn := range handlers[event.Kind] {
				s.invoke(fn, event)
			}
			for _, fn := range handlers[KindAll] {
				s.invoke(fn, event)
			}
		}
	}
}

// captureAll scans every root concurrently, diffs each against its saved
// snapshot and swaps the saved snapshot. It returns the events per root,
// in configured root order. The caller must hold the scheduler lock.
func (s *scheduler) captureAll() [][]ChangeEvent {
	perRoot := make([][]ChangeEvent, len(s.cfg.Roots))
	errs := make([]error, len(s.cfg.Roots))

	// Each goroutine touches only its own root's slots, which keeps
	// every root's diff paired with that root's previous snapshot.
	g := &errgroup.Group{}
	for i := range s.cfg.Roots {
		i := i
		g.Go(func() error {
			current, err := s.snapshots.Capture(s.cfg.Roots[i], s.cfg)
			errs[i] = err
			perRoot[i] = Diff(s.saved[i], current)
			s.saved[i] = current
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		s.rootErrors.SetNeedsDebounce()
		s.rootErrors.Debounce(func() {
			s.logger.CaptureWarn(
				"watcher: failed to scan root",
				"root", s.cfg.Roots[i],
				"error", err.Error(),
			)
		})
	}

	return perRoot
}

// handlerSnapshot copies the registered callbacks so dispatch can run
// without holding the scheduler lock. The caller must hold the lock.
func (s *scheduler) handlerSnapshot() map[Kind][]func(ChangeEvent) {
	snapshot := make(map[Kind][]func(ChangeEvent), len(s.handlers))
	for kind, fns := range s.handlers {
		snapshot[kind] = append(([]func(ChangeEvent))(nil), fns...)
	}
	return snapshot
}

// invoke runs one callback, absorbing a panic so that the remaining
// callbacks and the poll loop keep running.
func (s *scheduler) invoke(fn func(ChangeEvent), event ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.CaptureError(
				fmt.Errorf("watcher: change callback panicked: %v", r),
				"path", event.Path,
				"kind", string(event.Kind),
			)
		}
	}()
	fn(event)
}
