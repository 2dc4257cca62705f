package axp

import (
	"errors"
	"testing"
	"time"

	"axp-go/errcode"
)

func TestChargeCurrent(t *testing.T) {
	f, d := newReady(t, AXP192, func(f *fakeI2C) { f.regs[regCharge1] = 0xC0 })
	cases := []struct {
		req, want uint16
	}{
		{100, 100}, {450, 450}, {500, 450}, {1319, 1240}, {1320, 1320}, {5000, 1320},
	}
	for _, c := range cases {
		if err := d.SetChargeCurrent(c.req); err != nil {
			t.Fatalf("SetChargeCurrent(%d): %v", c.req, err)
		}
		got, _ := d.ChargeCurrent()
		if got != c.want {
			t.Errorf("SetChargeCurrent(%d): %d want %d", c.req, got, c.want)
		}
		if f.get(regCharge1)&0xF0 != 0xC0 {
			t.Errorf("SetChargeCurrent(%d) disturbed 0x33: %#02x", c.req, f.get(regCharge1))
		}
	}
	n := f.writeCount()
	if err := d.SetChargeCurrent(99); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("SetChargeCurrent(99): %v", err)
	}
	if f.writeCount() != n {
		t.Fatal("rejected current reached the bus")
	}
}

func TestChargeTargetAndEnable(t *testing.T) {
	f, d := newReady(t, AXP202, func(f *fakeI2C) { f.regs[regCharge1] = 0x08 })
	if err := d.SetChargeTargetVoltage(4360); err != nil {
		t.Fatal(err)
	}
	if err := d.SetChargingEnabled(true); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regCharge1); got != 0xE8 {
		t.Fatalf("0x33=%#02x want 0xe8", got)
	}
	if v, _ := d.ChargeTargetVoltage(); v != 4360 {
		t.Fatalf("target %d", v)
	}
	if on, _ := d.ChargingEnabled(); !on {
		t.Fatal("charging not enabled")
	}
	if err := d.SetChargeTargetVoltage(4300); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("4300mV: %v", err)
	}
}

func TestPOKTiming(t *testing.T) {
	f, d := newReady(t, AXP202, nil)
	steps := []struct {
		set  func() error
		want byte
	}{
		{func() error { return d.SetLongPressTime(2500 * time.Millisecond) }, 0x30},
		{func() error { return d.SetShutdownTime(8 * time.Second) }, 0x32},
		{func() error { return d.SetTimeoutShutdown(true) }, 0x3A},
		{func() error { return d.SetStartupTime(3 * time.Second) }, 0x7A},
	}
	for i, s := range steps {
		if err := s.set(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got := f.get(regPOKSet); got != s.want {
			t.Fatalf("step %d: 0x36=%#02x want %#02x", i, got, s.want)
		}
	}
	if v, _ := d.LongPressTime(); v != 2500*time.Millisecond {
		t.Errorf("LongPressTime=%v", v)
	}
	if v, _ := d.ShutdownTime(); v != 8*time.Second {
		t.Errorf("ShutdownTime=%v", v)
	}
	if v, _ := d.StartupTime(); v != 3*time.Second {
		t.Errorf("StartupTime=%v", v)
	}
	if err := d.SetLongPressTime(3 * time.Second); errcode.Of(err) != errcode.InvalidParams {
		t.Errorf("3s long press: %v", err)
	}
	// 3s is an AXP202 startup step only.
	_, d192 := newReady(t, AXP192, nil)
	if err := d192.SetStartupTime(3 * time.Second); errcode.Of(err) != errcode.InvalidParams {
		t.Errorf("AXP192 3s startup: %v", err)
	}
	_, d173 := newReady(t, AXP173, nil)
	if err := d173.SetStartupTime(time.Second); !errors.Is(err, errcode.Unsupported) {
		t.Errorf("AXP173 startup: %v", err)
	}
}

func TestCoulombCounter(t *testing.T) {
	f, d := newReady(t, AXP202, nil)
	if err := d.EnableCoulombCounter(); err != nil {
		t.Fatal(err)
	}
	if f.get(regCoulombCtl) != coulombEnable {
		t.Fatalf("0xb8=%#02x", f.get(regCoulombCtl))
	}
	if err := d.StopCoulombCounter(); err != nil {
		t.Fatal(err)
	}
	if f.get(regCoulombCtl) != coulombStop {
		t.Fatalf("0xb8=%#02x after stop", f.get(regCoulombCtl))
	}

	f.resetLog()
	for i := 0; i < 2; i++ {
		if err := d.ClearCoulombCounter(); err != nil {
			t.Fatal(err)
		}
	}
	clears := 0
	for _, w := range f.writes {
		if w.reg == regCoulombCtl && w.data[0] == coulombClear {
			clears++
		}
	}
	if clears != 2 {
		t.Fatalf("%d clear writes, want 2", clears)
	}

	// 7200 charge counts, 3600 discharge counts at 25Hz.
	copy(f.regs[regCoulombChg:], []byte{0, 0, 0x1C, 0x20, 0, 0, 0x0E, 0x10})
	c, dc, err := d.CoulombCounters()
	if err != nil {
		t.Fatal(err)
	}
	if c != 7200 || dc != 3600 {
		t.Fatalf("counters %d/%d", c, dc)
	}
	uAh, err := d.Coulomb_uAh()
	if err != nil {
		t.Fatal(err)
	}
	if uAh != 1_310_720 {
		t.Fatalf("Coulomb_uAh=%d want 1310720", uAh)
	}
}

func TestADCRateAndTS(t *testing.T) {
	f, d := newReady(t, AXP202, func(f *fakeI2C) { f.regs[regADCSpeed] = 0x32; f.regs[regADCEn1] = 0x01 })
	if r, _ := d.ADCSampleRate(); r != 25 {
		t.Fatalf("rate %d", r)
	}
	if err := d.SetADCSampleRate(200); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regADCSpeed); got != 0xF2 {
		t.Fatalf("0x84=%#02x want 0xf2", got)
	}
	if err := d.SetADCSampleRate(75); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("75Hz: %v", err)
	}
	if err := d.SetTSFunction(TSFunctionExternalADC); err != nil {
		t.Fatal(err)
	}
	if err := d.SetTSCurrent(TSCurrent80uA); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regADCSpeed); got != 0xF6 {
		t.Fatalf("0x84=%#02x want 0xf6", got)
	}
	if err := d.SetTSMode(TSModeOff); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regADCSpeed); got != 0xF4 {
		t.Fatalf("0x84=%#02x want 0xf4", got)
	}
	if f.get(regADCEn1)&0x01 != 0 {
		t.Fatal("TS channel left enabled")
	}
	if err := d.SetTSMode(TSModeAlways); err != nil {
		t.Fatal(err)
	}
	if f.get(regADCEn1)&0x01 == 0 {
		t.Fatal("TS channel not enabled")
	}
}

func TestEnableADC(t *testing.T) {
	f, d := newReady(t, AXP192, nil)
	if err := d.EnableADC(ADCBatteryVoltage|ADCBatteryCurrent|ADCInternalTemp, true); err != nil {
		t.Fatal(err)
	}
	if f.get(regADCEn1) != 0xC0 || f.get(regADCEn2) != 0x80 {
		t.Fatalf("enable regs %#02x %#02x", f.get(regADCEn1), f.get(regADCEn2))
	}
	if err := d.EnableADC(ADCBatteryCurrent, false); err != nil {
		t.Fatal(err)
	}
	ch, err := d.ADCEnabled()
	if err != nil {
		t.Fatal(err)
	}
	if ch != ADCBatteryVoltage|ADCInternalTemp {
		t.Fatalf("ADCEnabled=%#x", ch)
	}
}

func TestChargeLEDAndShutdown(t *testing.T) {
	f, d := newReady(t, AXP202, func(f *fakeI2C) { f.regs[regOffCtl] = 0x46 })
	if err := d.SetChargeLED(ChargeLEDBlink4Hz); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regOffCtl); got != 0x6E {
		t.Fatalf("0x32=%#02x want 0x6e", got)
	}
	if err := d.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regOffCtl); got != 0xEE {
		t.Fatalf("0x32=%#02x want 0xee", got)
	}
}

func TestLimitingOff(t *testing.T) {
	f192, d192 := newReady(t, AXP192, func(f *fakeI2C) { f.regs[regIPSSet] = 0x83 })
	if err := d192.LimitingOff(); err != nil {
		t.Fatal(err)
	}
	if got := f192.get(regIPSSet); got != 0x81 {
		t.Fatalf("AXP192 0x30=%#02x want 0x81", got)
	}
	f202, d202 := newReady(t, AXP202, func(f *fakeI2C) { f.regs[regIPSSet] = 0x80 })
	if err := d202.LimitingOff(); err != nil {
		t.Fatal(err)
	}
	if got := f202.get(regIPSSet); got != 0x83 {
		t.Fatalf("AXP202 0x30=%#02x want 0x83", got)
	}
}

func TestStatusAndBatteryPercentage(t *testing.T) {
	f, d := newReady(t, AXP202, nil)
	f.set(regStatus, 1<<statusVBusPresent)
	f.set(regBattPercent, 57)
	if v, _ := d.IsVBusPlugged(); !v {
		t.Fatal("vbus not reported")
	}
	if v, _ := d.IsACINPlugged(); v {
		t.Fatal("acin reported")
	}
	if p, _ := d.BatteryPercentage(); p != 0 {
		t.Fatalf("percentage %d without battery", p)
	}
	f.set(regModeChgState, 1<<modeBattery)
	if p, _ := d.BatteryPercentage(); p != 57 {
		t.Fatalf("percentage %d want 57", p)
	}
	f.set(regBattPercent, 0x80|57)
	if p, _ := d.BatteryPercentage(); p != 0 {
		t.Fatalf("percentage %d with invalid flag", p)
	}
	_, d192 := newReady(t, AXP192, nil)
	if _, err := d192.BatteryPercentage(); !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("AXP192: %v", err)
	}
}

func TestTimer(t *testing.T) {
	f, d := newReady(t, AXP173, nil)
	if err := d.SetTimer(0); err != nil || f.get(regTimerCtl) != 0 || !f.wroteTo(regTimerCtl) {
		t.Fatalf("SetTimer(0): %v 0x8a=%d", err, f.get(regTimerCtl))
	}
	if err := d.SetTimer(64); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("SetTimer(64): %v", err)
	}
	if err := d.SetTimer(30); err != nil {
		t.Fatal(err)
	}
	if f.get(regTimerCtl) != 30 {
		t.Fatalf("0x8a=%d", f.get(regTimerCtl))
	}
	f.resetLog()
	if err := d.ClearTimer(); err != nil {
		t.Fatal(err)
	}
	if len(f.writes) != 1 || f.writes[0].data[0] != 0x80|30 {
		t.Fatalf("ClearTimer writes %+v", f.writes)
	}
	if err := d.OffTimer(); err != nil {
		t.Fatal(err)
	}
	if f.get(regTimerCtl) != 0x80 {
		t.Fatalf("0x8a=%#02x after off", f.get(regTimerCtl))
	}
}

func TestGPIO_AXP202(t *testing.T) {
	f, d := newReady(t, AXP202, func(f *fakeI2C) { f.regs[regGPIO0Ctl] = 0x07 })
	if err := d.GPIOWrite(0, true); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regGPIO0Ctl); got != 0x01 {
		t.Fatalf("0x90=%#02x want 0x01", got)
	}
	if err := d.GPIOWrite(2, true); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("gpio2 high: %v", err)
	}
	f.set(regGPIO3Ctl, 0x02)
	if err := d.GPIOWrite(3, false); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regGPIO3Ctl); got != 0x00 {
		t.Fatalf("0x95=%#02x", got)
	}
	if err := d.SetGPIOMode(1, GPIOInput); err != nil {
		t.Fatal(err)
	}
	f.set(regGPIO012Sig, 1<<5)
	if v, _ := d.GPIORead(1); !v {
		t.Fatal("gpio1 input low")
	}
	if err := d.SetGPIOIRQ(1, GPIOEdgeBoth); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regGPIO1Ctl); got != 0xC2 {
		t.Fatalf("0x92=%#02x want 0xc2", got)
	}
	if err := d.SetGPIOMode(2, GPIOLDO); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("gpio2 ldo: %v", err)
	}
	if err := d.SetGPIOMode(4, GPIOInput); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("gpio4: %v", err)
	}
}

func TestGPIO_AXP192(t *testing.T) {
	f, d := newReady(t, AXP192, nil)
	if d.GPIOCount() != 5 {
		t.Fatalf("GPIOCount=%d", d.GPIOCount())
	}
	if err := d.SetGPIOMode(4, GPIOInput); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regGPIO3Ctl); got != 0x88 {
		t.Fatalf("0x95=%#02x want 0x88", got)
	}
	if err := d.GPIOWrite(1, true); err != nil {
		t.Fatal(err)
	}
	if got := f.get(regGPIO012Sig); got != 0x02 {
		t.Fatalf("0x94=%#02x", got)
	}
	if err := d.SetGPIOIRQ(0, GPIOEdgeRising); !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("SetGPIOIRQ: %v", err)
	}
}

func TestGPIO_AXP173(t *testing.T) {
	_, d := newReady(t, AXP173, nil)
	if _, err := d.GPIORead(0); !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("GPIORead: %v", err)
	}
	if d.GPIOCount() != 0 {
		t.Fatal("AXP173 has no gpio")
	}
}
