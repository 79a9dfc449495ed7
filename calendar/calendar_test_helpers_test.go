package calendar_test

import "github.com/zefrenchwan/calqueue/calendar"

// stubEvent is the minimal calendar.Event implementation tests schedule.
type stubEvent struct {
	id   string
	time uint64
	next calendar.Event
}

func newStub(id string, time uint64) *stubEvent {
	return &stubEvent{id: id, time: time}
}

func (s *stubEvent) ScheduledAt() uint64           { return s.time }
func (s *stubEvent) QueueNext() calendar.Event     { return s.next }
func (s *stubEvent) SetQueueNext(n calendar.Event) { s.next = n }

// prefetchCountingEvent counts how many times Prefetch was called on it, to
// verify the list walk issues the optional hint.
type prefetchCountingEvent struct {
	stubEvent
	prefetches *int
}

func (p *prefetchCountingEvent) Prefetch() {
	*p.prefetches++
}
