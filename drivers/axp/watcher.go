package axp

import (
	"context"
	"io"
	"log"
	"time"

	"axp-go/errcode"
)

// Watcher defaults: three 100ms interrupt polls per status poll.
const (
	DefaultQuickInterval = 100 * time.Millisecond
	DefaultQuickPerSlow  = 3
)

type WatcherConfig struct {
	QuickInterval time.Duration // interrupt poll period
	QuickPerSlow  int           // interrupt polls per status poll
	Logger        *log.Logger

	// OnError decides whether Run keeps going after a failed tick. Returning
	// false stops Run with the error. Nil stops on the first error.
	OnError func(error) bool
}

// Watcher polls a Device and turns interrupt and status bits into Events.
//
// Interrupt-derived button and timer events are level-triggered: they repeat
// on every poll while the status bit stays set, so callers clear interrupts
// they have handled. Warnings repeat on every status poll while present.
// Charging changes are edge-triggered against the previous status poll.
type Watcher struct {
	dev  *Device
	sink Sink
	cfg  WatcherConfig
	log  *log.Logger

	wasCharging bool
}

func NewWatcher(dev *Device, sink Sink, cfg WatcherConfig) *Watcher {
	if cfg.QuickInterval <= 0 {
		cfg.QuickInterval = DefaultQuickInterval
	}
	if cfg.QuickPerSlow <= 0 {
		cfg.QuickPerSlow = DefaultQuickPerSlow
	}
	lg := cfg.Logger
	if lg == nil {
		lg = log.New(io.Discard, "", 0)
	}
	return &Watcher{dev: dev, sink: sink, cfg: cfg, log: lg}
}

// Run polls until ctx is cancelled. The device must be initialized.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.dev.Initialized() {
		return errcode.New(errcode.NotInitialized, "axp: watch", "device not initialized")
	}
	t := time.NewTicker(w.cfg.QuickInterval)
	defer t.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			w.log.Println("Info: watcher stopping")
			return nil
		case <-t.C:
		}
		if err := w.quickTick(); err != nil && !w.keepGoing(err) {
			return err
		}
		if n++; n < w.cfg.QuickPerSlow {
			continue
		}
		n = 0
		if err := w.slowTick(); err != nil && !w.keepGoing(err) {
			return err
		}
	}
}

func (w *Watcher) keepGoing(err error) bool {
	if w.cfg.OnError == nil {
		return false
	}
	ok := w.cfg.OnError(err)
	if ok {
		w.log.Println("Warn: tick failed:", err)
	}
	return ok
}

// quickTick reads the interrupt status bank and raises button and timer events.
func (w *Watcher) quickTick() error {
	r, err := w.dev.pollIRQ()
	if err != nil {
		return err
	}
	if r.PEKLong {
		w.sink.Emit(Event{Kind: EventLongPress})
	}
	if r.PEKShort {
		w.sink.Emit(Event{Kind: EventShortPress})
	}
	if r.TimerTimeout {
		w.sink.Emit(Event{Kind: EventTimerTimeout})
	}
	return nil
}

// slowTick samples the live charge state and the latest interrupt report.
func (w *Watcher) slowTick() error {
	charging, err := w.dev.IsCharging()
	if err != nil {
		return err
	}
	if charging != w.wasCharging {
		w.wasCharging = charging
		w.sink.Emit(Event{Kind: EventChargingChanged, Charging: charging})
	}

	r := w.dev.IRQReport()
	if wn := r.Warning(); wn != 0 {
		w.sink.Emit(Event{Kind: EventWarning, Warning: wn})
	}
	if r.ChargeDone {
		w.sink.Emit(Event{Kind: EventChargeDone})
	}
	plug := func(k EventKind, plugged, removed bool) {
		if plugged {
			w.sink.Emit(Event{Kind: k, Plugged: true})
		} else if removed {
			w.sink.Emit(Event{Kind: k, Plugged: false})
		}
	}
	plug(EventVBusPlug, r.VBusPlugged, r.VBusRemoved)
	plug(EventBatteryPlug, r.BattPlugged, r.BattRemoved)
	plug(EventAcinPlug, r.AcinPlugged, r.AcinRemoved)
	return nil
}
