// Package announce gates spoken guidance.
//
// ShouldAnnounce is the only place that holds re-announcement thresholds;
// every call site goes through it, usually via an Announcer that remembers
// what was said last, where and when.
package announce

import (
	"sync"
	"time"

	"github.com/katalvlaran/trailnav/geo"
)

// Priority tags an announcement for the voice sink.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "normal"
	}
}

// Sink receives plain localized text, e.g. a speech synthesizer.
type Sink interface {
	Announce(text string, priority Priority)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(text string, priority Priority)

// Announce implements Sink.
func (f SinkFunc) Announce(text string, priority Priority) { f(text, priority) }

// Policy holds the re-announcement thresholds.
type Policy struct {
	MinDistance float64       // meters moved before repeating
	MinInterval time.Duration // time elapsed before repeating
	MaxSilence  time.Duration // repeat regardless after this long
}

// DefaultPolicy repeats after 30 m and 20 s, or after 2 min of silence.
func DefaultPolicy() Policy {
	return Policy{MinDistance: 30, MinInterval: 20 * time.Second, MaxSilence: 2 * time.Minute}
}

// ShouldAnnounce reports whether to speak. A changed message always speaks;
// a repeat needs both the distance and the interval, or MaxSilence.
func ShouldAnnounce(changed bool, distanceDelta float64, sinceLast time.Duration, p Policy) bool {
	if changed {
		return true
	}
	if p.MaxSilence > 0 && sinceLast >= p.MaxSilence {
		return true
	}
	return distanceDelta >= p.MinDistance && sinceLast >= p.MinInterval
}

// Option represents a functional option for configuring an Announcer.
type Option func(*Announcer)

// WithPolicy sets the thresholds.
func WithPolicy(p Policy) Option {
	return func(a *Announcer) { a.policy = p }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Announcer) { a.now = now }
}

// Announcer forwards gated messages to a Sink. Safe for concurrent use.
type Announcer struct {
	sink   Sink
	policy Policy
	now    func() time.Time

	mu      sync.Mutex
	said    bool
	lastKey string
	lastPos geo.Coordinate
	lastAt  time.Time
}

// NewAnnouncer returns an Announcer writing to sink. A nil sink discards.
func NewAnnouncer(sink Sink, opts ...Option) *Announcer {
	if sink == nil {
		sink = SinkFunc(func(string, Priority) {})
	}
	a := &Announcer{sink: sink, policy: DefaultPolicy(), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Offer speaks text if ShouldAnnounce allows it. key identifies the message
// (such as "step:2" or "off-route"); a key different from the last spoken one
// counts as changed. Reports whether text was spoken.
func (a *Announcer) Offer(key, text string, pos geo.Coordinate, priority Priority) bool {
	a.mu.Lock()
	now := a.now()
	changed := !a.said || key != a.lastKey
	var moved float64
	var since time.Duration
	if a.said {
		moved = geo.Distance(a.lastPos, pos)
		since = now.Sub(a.lastAt)
	}
	if !ShouldAnnounce(changed, moved, since, a.policy) {
		a.mu.Unlock()
		return false
	}
	a.said, a.lastKey, a.lastPos, a.lastAt = true, key, pos, now
	a.mu.Unlock()

	a.sink.Announce(text, priority)
	return true
}
