package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/weareqrystal/uplink-sdks/pkg/log"
	"github.com/weareqrystal/uplink-sdks/pkg/uplink"
)

// Scheduler errors.
var (
	ErrAlreadyRunning = errors.New("scheduler already running")
	ErrNoCredentials  = errors.New("credentials are required")
)

// Attempter runs uplink attempts. *uplink.Client implements it.
type Attempter interface {
	AttemptPayload(ctx context.Context, raw string, body []byte, contentType string) uplink.Result
	Reset()
}

// State is the scheduler state.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	default:
		return "UNKNOWN"
	}
}

// Options configures a Scheduler.
type Options struct {
	// Logger receives run lifecycle output. Nil disables logging.
	Logger *slog.Logger

	// EventLogger captures scheduler state changes. Nil disables capture.
	EventLogger log.Logger
}

// Scheduler runs at most one background uplink loop.
type Scheduler struct {
	client Attempter
	logger *slog.Logger
	events log.Logger

	running       atomic.Bool
	stopRequested atomic.Bool

	// mu serializes Start and Stop.
	mu  sync.Mutex
	cur *run
}

// run is the state of one background run.
type run struct {
	id     string
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{}
	done   chan struct{}

	// finished is claimed by whichever of the loop or a forced Stop
	// performs the final cleanup.
	finished atomic.Bool
}

// New creates an idle Scheduler driving client.
func New(client Attempter, opts Options) *Scheduler {
	return &Scheduler{
		client: client,
		logger: opts.Logger,
		events: log.OrNoop(opts.EventLogger),
	}
}

// Start begins a background run with a copy of cfg.
func (s *Scheduler) Start(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return ErrAlreadyRunning
	}
	if cfg.Credentials == "" {
		return ErrNoCredentials
	}
	cfg = cfg.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		id:     uuid.NewString(),
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	s.stopRequested.Store(false)
	s.running.Store(true)
	s.cur = r

	if s.logger != nil {
		s.logger.Info("scheduler: started",
			"run_id", r.id,
			"interval", cfg.Interval,
			"priority", cfg.Priority,
			"stack_size", cfg.StackSizeBytes)
	}
	s.transition(r, StateIdle, StateRunning, "")

	go s.loop(r)
	return nil
}

// Stop ends the current run. It waits up to StopTimeout for the loop to
// notice; after that the in-flight attempt is cancelled and the
// connection is dropped in the background once the attempt returns.
// Stop is a no-op when idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.stopRequested.Store(false)

	r := s.cur
	if r == nil {
		return
	}
	s.cur = nil

	s.stopRequested.Store(true)
	close(r.stop)

	timer := time.NewTimer(r.cfg.StopTimeout)
	defer timer.Stop()

	reason := "stopped"
	select {
	case <-r.done:
	case <-timer.C:
		if r.finished.CompareAndSwap(false, true) {
			reason = "stop timeout"
			if s.logger != nil {
				s.logger.Warn("scheduler: loop did not stop in time, aborting", "run_id", r.id,
					"timeout", r.cfg.StopTimeout)
			}
			r.cancel()
			s.running.Store(false)
			// Reset waits for the in-flight attempt, which may ignore ctx.
			go s.client.Reset()
		} else {
			<-r.done
		}
	}
	r.cancel()

	s.transition(r, StateStopping, StateIdle, reason)
}

// IsRunning reports whether a run is active.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// State returns the current state.
func (s *Scheduler) State() State {
	switch {
	case !s.running.Load():
		return StateIdle
	case s.stopRequested.Load():
		return StateStopping
	default:
		return StateRunning
	}
}

func (s *Scheduler) loop(r *run) {
	defer close(r.done)
	defer func() {
		if r.finished.CompareAndSwap(false, true) {
			s.client.Reset()
			s.running.Store(false)
		}
	}()

	if err := applyPriority(r.cfg.Priority); err != nil && s.logger != nil {
		s.logger.Warn("scheduler: priority not applied", "run_id", r.id, "priority", r.cfg.Priority, "error", err)
	}

	for {
		select {
		case <-r.stop:
			return
		default:
		}

		res := s.attemptOnce(r)

		// A forced stop owns cleanup; the aborted result is not reported.
		if r.finished.Load() {
			return
		}
		if r.cfg.Callback != nil {
			r.cfg.Callback(res)
		}

		timer := time.NewTimer(r.cfg.delayAfter(res))
		select {
		case <-r.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) attemptOnce(r *run) uplink.Result {
	var (
		body        []byte
		contentType string
	)
	if r.cfg.Payload != nil {
		b, ct, err := r.cfg.Payload()
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("scheduler: payload failed, sending heartbeat", "run_id", r.id, "error", err)
			}
		} else {
			body, contentType = b, ct
		}
	}

	res := s.client.AttemptPayload(r.ctx, r.cfg.Credentials, body, contentType)
	if s.logger != nil {
		s.logger.Debug("scheduler: attempt", "run_id", r.id, "result", res.String())
	}
	return res
}

func (s *Scheduler) transition(r *run, from, to State, reason string) {
	e := log.NewStateChange(log.StateEntityScheduler, from.String(), to.String(), reason)
	e.RunID = r.id
	s.events.Log(e)
	if to == StateIdle && s.logger != nil {
		s.logger.Info("scheduler: stopped", "run_id", r.id, "reason", reason)
	}
}
