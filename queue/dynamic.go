// Package queue wraps a calendar.CalendarCore with the auto-tuning policy
// from the spec: it meters probe length and future-event hits across every
// pop and, once numBins pops have been observed, decides whether the
// geometry should change to keep roughly two buckets live per event near the
// current time. Tuning lives here, never in package calendar, so the core
// stays a plain fixed-geometry mechanism callers can also use directly.
package queue

import (
	"github.com/google/uuid"

	"github.com/zefrenchwan/calqueue/calendar"
)

// Option configures a DynamicQueue at construction time.
type Option func(*DynamicQueue)

// WithLogger installs l as the queue's diagnostic sink for resize decisions.
// A nil logger is ignored.
func WithLogger(l Logger) Option {
	return func(q *DynamicQueue) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithResizeDisabled turns off the auto-tuning policy entirely: the queue
// behaves as a fixed-geometry calendar.CalendarCore with stats tracking
// skipped. Useful for benchmarking the core in isolation, or for workloads
// whose event density near the current time is known not to drift.
func WithResizeDisabled() Option {
	return func(q *DynamicQueue) {
		q.resizeDisabled = true
	}
}

// DynamicQueue is a calendar.CalendarCore plus the probe-length and
// future-event statistics that drive periodic geometry resizing. It is not
// safe for concurrent use.
type DynamicQueue struct {
	id   string
	core *calendar.CalendarCore

	popProbeLenSum    uint64
	popFutureEventSum uint64
	popCounter        uint64

	resizeDisabled bool
	logger         Logger
}

// New creates a queue starting at startTime, sized from initLogNumEvents — a
// log2 hint of the expected live event count. Internally this builds a core
// with logBinSize = 0 and logNumBins = initLogNumEvents + 1, per the
// constructor knobs in the external interface.
func New(startTime uint64, initLogNumEvents uint64, opts ...Option) *DynamicQueue {
	q := &DynamicQueue{
		id:     uuid.NewString(),
		core:   calendar.NewCore(0, uint(initLogNumEvents)+1, startTime),
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push forwards e to the core and returns the new total event count.
func (q *DynamicQueue) Push(e calendar.Event) uint64 {
	q.core.Push(e)
	return q.core.NumEvents()
}

// Pop forwards to the core, meters the pop, and — once popCounter reaches
// numBins — runs the resize check and resets all three accumulators
// regardless of whether a resize happened. With resizing disabled it only
// forwards to the core. Returns nil if the queue was empty.
func (q *DynamicQueue) Pop() calendar.Event {
	e, probeLen, futureEvents := q.core.Pop()
	if e == nil || q.resizeDisabled {
		return e
	}

	q.popProbeLenSum += probeLen
	q.popFutureEventSum += futureEvents
	q.popCounter++

	if q.popCounter == q.core.NumBins() {
		q.maybeResize()
		q.popProbeLenSum = 0
		q.popFutureEventSum = 0
		q.popCounter = 0
	}

	return e
}

// Remove forwards to the core.
func (q *DynamicQueue) Remove(e calendar.Event) bool {
	return q.core.Remove(e)
}

// NumEvents forwards to the core.
func (q *DynamicQueue) NumEvents() uint64 { return q.core.NumEvents() }

// NumBins returns the current bucket count, useful for observing a resize.
func (q *DynamicQueue) NumBins() uint64 { return q.core.NumBins() }

// CurrentTime forwards to the core.
func (q *DynamicQueue) CurrentTime() uint64 { return q.core.CurrentTime() }

// maybeResize runs the shift-and-compare search from §4.3 over the pop
// statistics accumulated since the last check, and replaces the core with
// one of adjusted geometry if either dimension actually changed after
// clamping to a valid (non-degenerate) geometry.
func (q *DynamicQueue) maybeResize() {
	logNumBins := int(q.core.LogNumBins())
	logBinSize := int(q.core.LogBinSize())

	binSizeLogChange := monotoneLogDelta(q.popProbeLenSum, logNumBins)
	yearLenLogChange := monotoneLogDelta(q.popFutureEventSum, logNumBins-2)
	numBinsLogChange := yearLenLogChange - binSizeLogChange

	newLogBinSize := clampMin(logBinSize+binSizeLogChange, 0)
	newLogNumBins := clampMin(logNumBins+numBinsLogChange, 1)

	if newLogBinSize == logBinSize && newLogNumBins == logNumBins {
		return
	}

	oldCore := q.core
	newCore := calendar.NewCore(uint(newLogBinSize), uint(newLogNumBins), oldCore.CurrentTime())
	newCore.Consume(oldCore)

	q.logger.Info("calendar queue resized",
		"queue_id", q.id,
		"old_log_bin_size", logBinSize,
		"old_log_num_bins", logNumBins,
		"new_log_bin_size", newLogBinSize,
		"new_log_num_bins", newLogNumBins,
		"num_events", newCore.NumEvents(),
	)
	q.core = newCore
}
