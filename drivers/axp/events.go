package axp

import "sync/atomic"

// EventKind names a watcher notification.
type EventKind uint8

const (
	EventLongPress EventKind = iota + 1
	EventShortPress
	EventTimerTimeout
	EventChargingChanged
	EventWarning
	EventChargeDone
	EventVBusPlug
	EventBatteryPlug
	EventAcinPlug
)

var eventNames = [...]string{
	EventLongPress:       "long_press",
	EventShortPress:      "short_press",
	EventTimerTimeout:    "timer_timeout",
	EventChargingChanged: "charging",
	EventWarning:         "warning",
	EventChargeDone:      "charge_done",
	EventVBusPlug:        "vbus",
	EventBatteryPlug:     "battery",
	EventAcinPlug:        "acin",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) && eventNames[k] != "" {
		return eventNames[k]
	}
	return "event?"
}

// Event is one notification. Only the field matching Kind is meaningful.
type Event struct {
	Kind     EventKind
	Charging bool    // EventChargingChanged
	Plugged  bool    // EventVBusPlug, EventBatteryPlug, EventAcinPlug
	Warning  Warning // EventWarning
}

// Sink receives events on the watcher goroutine, in order. Implementations
// must not block for long; ChanSink hands events to another goroutine.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// ChanSink queues events on a bounded channel. When the reader falls behind
// the oldest queued event is dropped.
type ChanSink struct {
	ch      chan Event
	dropped atomic.Uint32
}

func NewChanSink(n int) *ChanSink {
	if n <= 0 {
		n = 8
	}
	return &ChanSink{ch: make(chan Event, n)}
}

func (s *ChanSink) Emit(e Event) {
	for {
		select {
		case s.ch <- e:
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped.Add(1)
		default:
		}
	}
}

func (s *ChanSink) C() <-chan Event { return s.ch }

// Dropped counts events discarded because the queue was full.
func (s *ChanSink) Dropped() uint32 { return s.dropped.Load() }

// Fanout emits to every sink in order.
type Fanout []Sink

func (f Fanout) Emit(e Event) {
	for _, s := range f {
		s.Emit(e)
	}
}
