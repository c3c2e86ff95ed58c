package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Update is a precision-independent copy of a job snapshot handed to
// observers.
type Update struct {
	JobID         string
	Job           string
	Progress      float64
	Estimate      float64
	ErrorEstimate float64
	Calls         uint64
	Done          bool
}

// Observer receives job progress updates.
type Observer interface {
	Update(u Update)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(u Update)

// Update calls f(u).
func (f ObserverFunc) Update(u Update) { f(u) }

// Subject keeps a set of observers and notifies them of updates. It is safe
// for concurrent use.
type Subject struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewSubject creates an empty subject.
func NewSubject() *Subject {
	return &Subject{}
}

// Register adds an observer. Nil observers are ignored.
func (s *Subject) Register(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Unregister removes the first registration of o. Observers passed to
// Unregister must be comparable, which pointer observers are.
func (s *Subject) Unregister(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers.
func (s *Subject) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Notify forwards u to every registered observer.
func (s *Subject) Notify(u Update) {
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()
	for _, o := range observers {
		o.Update(u)
	}
}

// Freeze returns a callback bound to the observers registered right now.
// Observers registered afterwards are not notified through it, which lets a
// hot loop notify without taking the lock on every step.
func (s *Subject) Freeze() func(Update) {
	s.mu.RLock()
	snapshot := make([]Observer, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.RUnlock()
	return func(u Update) {
		for _, o := range snapshot {
			o.Update(u)
		}
	}
}

// ChannelObserver forwards updates to a channel without blocking. Updates
// that find the channel full are counted and dropped.
type ChannelObserver struct {
	ch      chan<- Update
	dropped atomic.Uint64
}

// NewChannelObserver creates an observer sending to ch.
func NewChannelObserver(ch chan<- Update) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Update sends u if the channel has room.
func (o *ChannelObserver) Update(u Update) {
	select {
	case o.ch <- u:
	default:
		o.dropped.Add(1)
	}
}

// Dropped returns how many updates were discarded.
func (o *ChannelObserver) Dropped() uint64 {
	return o.dropped.Load()
}

// LoggingObserver writes progress to a zerolog logger at most once per
// interval. The final update of a job is always logged.
type LoggingObserver struct {
	logger   zerolog.Logger
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewLoggingObserver creates a throttled logging observer.
func NewLoggingObserver(logger zerolog.Logger, interval time.Duration) *LoggingObserver {
	return &LoggingObserver{
		logger:   logger,
		interval: interval,
		now:      time.Now,
		last:     make(map[string]time.Time),
	}
}

// Update logs u unless the job logged less than interval ago.
func (o *LoggingObserver) Update(u Update) {
	now := o.now()
	o.mu.Lock()
	last, seen := o.last[u.JobID]
	if seen && !u.Done && now.Sub(last) < o.interval {
		o.mu.Unlock()
		return
	}
	o.last[u.JobID] = now
	o.mu.Unlock()

	o.logger.Debug().
		Str("job", u.Job).
		Str("job_id", u.JobID).
		Float64("progress", u.Progress).
		Float64("estimate", u.Estimate).
		Float64("error_estimate", u.ErrorEstimate).
		Uint64("calls", u.Calls).
		Bool("done", u.Done).
		Msg("progress")
}

// NoOpObserver ignores every update.
type NoOpObserver struct{}

// NewNoOpObserver returns a NoOpObserver.
func NewNoOpObserver() NoOpObserver { return NoOpObserver{} }

// Update does nothing.
func (NoOpObserver) Update(Update) {}
