package axp

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"axp-go/errcode"
)

func newTestWatcher(t *testing.T, chip Chip, cfg WatcherConfig) (*fakeI2C, *Watcher, *recorder) {
	t.Helper()
	f, d := newReady(t, chip, nil)
	rec := &recorder{}
	return f, NewWatcher(d, rec, cfg), rec
}

func TestQuickTick_LevelTriggeredInOrder(t *testing.T) {
	f, w, rec := newTestWatcher(t, AXP202, WatcherConfig{})
	f.set(regIntSts3202, 0x03) // long and short press
	f.set(regIntSts5202, 0x80) // timer

	for i := 0; i < 2; i++ {
		if err := w.quickTick(); err != nil {
			t.Fatal(err)
		}
		got := kinds(rec.take())
		want := []EventKind{EventLongPress, EventShortPress, EventTimerTimeout}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("tick %d: %v want %v", i, got, want)
		}
	}

	if err := w.dev.ClearIRQ(); err != nil {
		t.Fatal(err)
	}
	if err := w.quickTick(); err != nil {
		t.Fatal(err)
	}
	if evs := rec.take(); len(evs) != 0 {
		t.Fatalf("events after clear: %v", kinds(evs))
	}
}

func TestSlowTick_ChargingEdge(t *testing.T) {
	f, w, rec := newTestWatcher(t, AXP192, WatcherConfig{})
	f.set(regModeChgState, 1<<modeCharging)

	for i := 0; i < 3; i++ {
		if err := w.slowTick(); err != nil {
			t.Fatal(err)
		}
	}
	evs := rec.take()
	if len(evs) != 1 || evs[0].Kind != EventChargingChanged || !evs[0].Charging {
		t.Fatalf("events %+v, want one charging=true", evs)
	}

	f.set(regModeChgState, 0)
	if err := w.slowTick(); err != nil {
		t.Fatal(err)
	}
	evs = rec.take()
	if len(evs) != 1 || evs[0].Charging {
		t.Fatalf("events %+v, want one charging=false", evs)
	}
}

func TestSlowTick_WarningRepeats(t *testing.T) {
	f, w, rec := newTestWatcher(t, AXP202, WatcherConfig{})
	f.set(regIntSts1202, 0x10) // VBUS over-voltage
	f.set(regIntSts2202, 0x01) // over-temperature
	if _, err := w.dev.ReadIRQ(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := w.slowTick(); err != nil {
			t.Fatal(err)
		}
	}
	evs := rec.take()
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	for _, e := range evs {
		if e.Kind != EventWarning || e.Warning != WarnVBusOverV|WarnTempHigh {
			t.Fatalf("event %+v", e)
		}
	}
}

func TestSlowTick_Order(t *testing.T) {
	f, w, rec := newTestWatcher(t, AXP202, WatcherConfig{})
	f.set(regModeChgState, 1<<modeCharging)
	f.set(regIntSts1202, 0x80|0x08|0x20) // acin over-v, vbus plugged, acin removed
	f.set(regIntSts2202, 0x80|0x40|0x04) // battery plugged and removed, charge done
	if _, err := w.dev.ReadIRQ(); err != nil {
		t.Fatal(err)
	}
	if err := w.slowTick(); err != nil {
		t.Fatal(err)
	}
	evs := rec.take()
	want := []Event{
		{Kind: EventChargingChanged, Charging: true},
		{Kind: EventWarning, Warning: WarnAcinOverV},
		{Kind: EventChargeDone},
		{Kind: EventVBusPlug, Plugged: true},
		{Kind: EventBatteryPlug, Plugged: true}, // plugged wins over removed
		{Kind: EventAcinPlug, Plugged: false},
	}
	if !reflect.DeepEqual(evs, want) {
		t.Fatalf("got  %+v\nwant %+v", evs, want)
	}
}

func TestQuickTick_AXP173NoTraffic(t *testing.T) {
	f, w, rec := newTestWatcher(t, AXP173, WatcherConfig{})
	for i := 0; i < 3; i++ {
		if err := w.quickTick(); err != nil {
			t.Fatal(err)
		}
	}
	if len(f.reads)+f.writeCount() != 0 {
		t.Fatal("quick tick touched the bus on AXP173")
	}
	if evs := rec.take(); len(evs) != 0 {
		t.Fatalf("events %v", kinds(evs))
	}
}

func TestRun_DeliversAndStops(t *testing.T) {
	f, d := newReady(t, AXP202, nil)
	f.set(regIntSts3202, 0x02)
	sink := NewChanSink(16)
	w := NewWatcher(d, sink, WatcherConfig{QuickInterval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case e := <-sink.C():
		if e.Kind != EventShortPress {
			t.Fatalf("first event %v", e.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRun_StopsOnError(t *testing.T) {
	f, d := newReady(t, AXP202, nil)
	f.failRead[regIntSts1202] = true
	w := NewWatcher(d, &recorder{}, WatcherConfig{QuickInterval: time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	select {
	case err := <-done:
		if errcode.Of(err) != errcode.IOError {
			t.Fatalf("Run: %v want io_error", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run kept going after a failed tick")
	}
}

func TestRun_OnErrorContinues(t *testing.T) {
	f, d := newReady(t, AXP202, nil)
	f.failRead[regIntSts1202] = true
	errs := make(chan error, 64)
	w := NewWatcher(d, &recorder{}, WatcherConfig{
		QuickInterval: time.Millisecond,
		OnError: func(err error) bool {
			select {
			case errs <- err:
			default:
			}
			return true
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	for i := 0; i < 3; i++ {
		select {
		case <-errs:
		case <-time.After(time.Second):
			t.Fatal("OnError not called")
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_NotInitialized(t *testing.T) {
	d, err := New(newChipFake(AXP202), DefaultConfig(AXP202))
	if err != nil {
		t.Fatal(err)
	}
	err = NewWatcher(d, &recorder{}, WatcherConfig{}).Run(context.Background())
	if !errors.Is(err, errcode.NotInitialized) {
		t.Fatalf("Run: %v", err)
	}
}

func TestChanSink_DropsOldest(t *testing.T) {
	s := NewChanSink(2)
	s.Emit(Event{Kind: EventLongPress})
	s.Emit(Event{Kind: EventShortPress})
	s.Emit(Event{Kind: EventTimerTimeout})
	if s.Dropped() != 1 {
		t.Fatalf("Dropped=%d", s.Dropped())
	}
	got := []EventKind{(<-s.C()).Kind, (<-s.C()).Kind}
	if !reflect.DeepEqual(got, []EventKind{EventShortPress, EventTimerTimeout}) {
		t.Fatalf("queued %v", got)
	}
}

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	var n int
	Fanout{a, b, SinkFunc(func(Event) { n++ })}.Emit(Event{Kind: EventChargeDone})
	if len(a.take()) != 1 || len(b.take()) != 1 || n != 1 {
		t.Fatal("fanout did not reach every sink")
	}
}

func TestEventKindString(t *testing.T) {
	if EventVBusPlug.String() != "vbus" || EventKind(0).String() != "event?" {
		t.Fatal("EventKind.String")
	}
}
