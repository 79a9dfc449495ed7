package calendar

import (
	"fmt"
	"sort"
)

// CalendarCore is a fixed-geometry bucket ring: a cursor walks its bins in
// time order, wrapping the year whenever it laps the ring. Geometry
// (binSize, numBins) is set at construction and never changes in place —
// package queue rebuilds a CalendarCore with new geometry via Consume when
// its tuning policy decides the workload has drifted.
type CalendarCore struct {
	bins []EventList

	binSize    uint64
	numBins    uint64
	yearLength uint64

	logBinSize uint
	logNumBins uint

	divideShift uint
	moduloMask  uint64

	currBin       uint64
	nextYearStart uint64
	lastPopped    uint64
	numEvents     uint64
}

// NewCore allocates a ring of 2^logNumBins empty bins, each binSize =
// 2^logBinSize time units wide, with the cursor positioned at startTime.
// logNumBins must be at least 1 (a two-bucket ring is the minimum geometry
// this implementation supports).
func NewCore(logBinSize, logNumBins uint, startTime uint64) *CalendarCore {
	if logNumBins < 1 {
		panic("calendar: logNumBins must be at least 1")
	}

	binSize := uint64(1) << logBinSize
	numBins := uint64(1) << logNumBins
	yearLength := binSize * numBins

	c := &CalendarCore{
		bins:        make([]EventList, numBins),
		binSize:     binSize,
		numBins:     numBins,
		yearLength:  yearLength,
		logBinSize:  logBinSize,
		logNumBins:  logNumBins,
		divideShift: logBinSize,
		moduloMask:  yearLength - 1,
		lastPopped:  startTime,
	}
	c.currBin = c.slot(startTime)
	c.nextYearStart = ((startTime >> (logBinSize + logNumBins)) + 1) * yearLength
	return c
}

// slot maps a time to the bucket that holds it: unsigned masking and
// right-shift only, never signed arithmetic.
func (c *CalendarCore) slot(t uint64) uint64 {
	return (t & c.moduloMask) >> c.divideShift
}

// Push inserts e. e's time must be >= CurrentTime: a causality violation is a
// programming error and panics rather than returning an error, since a
// caller that breaks causality has a bug, not a reportable runtime
// condition.
func (c *CalendarCore) Push(e Event) {
	t := e.ScheduledAt()
	if t < c.lastPopped {
		panic(fmt.Sprintf("calendar: push violates causality: event time %d precedes current time %d", t, c.lastPopped))
	}
	c.bins[c.slot(t)].Push(e)
	c.numEvents++
}

// Pop extracts the time-minimum queueable event, or returns nil if the core
// holds no events. probeLen counts bucket advances performed before the
// answer was found (or, if nil is returned, zero); futureEvents counts
// non-empty buckets encountered along the way whose head belongs to a later
// year. Both are meant to be accumulated by a caller tracking density, not
// interpreted per call.
func (c *CalendarCore) Pop() (e Event, probeLen uint64, futureEvents uint64) {
	if c.numEvents == 0 {
		return nil, 0, 0
	}

	for {
		bin := &c.bins[c.currBin]
		if !bin.Empty() {
			if bin.MinTime() < c.nextYearStart {
				c.lastPopped = bin.MinTime()
				c.numEvents--
				return bin.Pop(), probeLen, futureEvents
			}
			futureEvents++
		}

		probeLen++
		c.currBin++
		if c.currBin >= c.numBins {
			c.currBin = 0
			c.nextYearStart += c.yearLength
		}
	}
}

// Remove unlinks e from whichever bucket its time maps to. Returns whether
// it was found; removing an event the core doesn't hold is not an error.
func (c *CalendarCore) Remove(e Event) bool {
	found := c.bins[c.slot(e.ScheduledAt())].Remove(e)
	if found {
		c.numEvents--
	}
	return found
}

// Consume drains every bucket of other into c and leaves other empty. It
// walks other's bucket array directly bucket by bucket rather than calling
// other.Pop, since Pop advances a cursor and mutates lastPopped — exactly
// the state a resize must not disturb in the core being retired. Used only
// during a geometry resize.
//
// Equal-time events within a bucket only ever reorder against each other
// (slot is a pure function of time, so a tie can't cross buckets), but
// EventList.Push's head-tie-prepend bias decides where a re-pushed tie lands
// depending on what the destination bucket already holds. Consume therefore
// gathers every drained event (each bucket head-first), stable-sorts them by
// time and re-pushes them latest first: every push is then at or before its
// bucket's head and prepends, so each destination bucket ends up in time
// order with tied events in their original list order, and a bucket's pop
// order survives the resize unchanged.
func (c *CalendarCore) Consume(other *CalendarCore) {
	var drained []Event
	for i := range other.bins {
		bin := &other.bins[i]
		for !bin.Empty() {
			drained = append(drained, bin.Pop())
		}
	}
	sort.SliceStable(drained, func(i, j int) bool {
		return drained[i].ScheduledAt() < drained[j].ScheduledAt()
	})
	for i := len(drained) - 1; i >= 0; i-- {
		c.Push(drained[i])
	}
	other.numEvents = 0
}

// CurrentTime returns the time of the most recently popped event, or the
// start time if nothing has been popped yet.
func (c *CalendarCore) CurrentTime() uint64 { return c.lastPopped }

// YearLength returns binSize * numBins, the span one cursor revolution
// covers.
func (c *CalendarCore) YearLength() uint64 { return c.yearLength }

// LogBinSize returns log2 of the bucket width.
func (c *CalendarCore) LogBinSize() uint { return c.logBinSize }

// LogNumBins returns log2 of the bucket count.
func (c *CalendarCore) LogNumBins() uint { return c.logNumBins }

// NumEvents returns the total number of events held across all buckets.
func (c *CalendarCore) NumEvents() uint64 { return c.numEvents }

// NumBins returns the number of buckets in the ring.
func (c *CalendarCore) NumBins() uint64 { return c.numBins }
