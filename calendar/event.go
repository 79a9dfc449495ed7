// Package calendar implements the bucketed time-wheel core of a calendar
// priority queue: a ring of sorted bucket lists, a cursor that advances
// through them in time order, and year wrap-around when the cursor laps the
// ring. It has no opinion on tuning; see package queue for that.
package calendar

// Event is the payload a caller schedules into the queue. The queue never
// allocates a node for it: ScheduledAt, QueueNext and SetQueueNext expose an
// intrusive singly-linked list slot the caller's type already owns, so
// pushing an event costs no allocation.
//
// Implementations must return the same value from ScheduledAt for as long as
// the event is queued: bucket placement, list order and Remove all depend on
// it, so the queue does not support changing an event's time after
// insertion. Remove followed by re-insertion is the contract for that case.
type Event interface {
	// ScheduledAt returns the time this event fires at.
	ScheduledAt() uint64
	// QueueNext returns the next event in the same bucket's list, or nil if
	// this is the last (or only) event in it.
	QueueNext() Event
	// SetQueueNext installs next, possibly nil, as the following event.
	SetQueueNext(next Event)
}

// Prefetcher is an optional hint an Event implementation can provide so the
// list walk can issue a hardware prefetch for the node it is about to touch
// next. Events that don't implement it are walked with no prefetching.
type Prefetcher interface {
	Prefetch()
}

func prefetch(e Event) {
	if p, ok := e.(Prefetcher); ok {
		p.Prefetch()
	}
}
