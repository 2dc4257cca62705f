package axp

import (
	"testing"

	"axp-go/errcode"
)

func TestRead_Conversions(t *testing.T) {
	cases := []struct {
		name string
		chip Chip
		r    Reading
		h, l byte
		want int32
	}{
		{"battery voltage", AXP202, BatteryVoltage, 0xBB, 0x08, 3300},
		{"internal temp", AXP192, InternalTemp, 0x6A, 0x04, 25300},
		{"charge current 12-bit", AXP202, BatteryChargeCurrent, 0x10, 0x1F, 135},
		{"charge current 13-bit", AXP192, BatteryChargeCurrent, 0x10, 0x1F, 271},
		{"discharge current", AXP202, BatteryDischargeCurrent, 0x10, 0x1F, 271},
		{"vbus voltage", AXP173, VBusVoltage, 0xB8, 0x00, 5004},
		{"aps voltage", AXP202, APSVoltage, 0xAB, 0x0E, 3850},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			reg := variantFor(c.chip).spec().adc[c.r].reg
			f, d := newReady(t, c.chip, func(f *fakeI2C) {
				f.regs[reg] = c.h
				f.regs[reg+1] = c.l
			})
			got, err := d.Read(c.r)
			if err != nil {
				t.Fatal(err)
			}
			if got != c.want {
				t.Fatalf("Read=%d want %d", got, c.want)
			}
			if len(f.reads) != 1 {
				t.Fatalf("%d transfers, want one two-byte read", len(f.reads))
			}
		})
	}
}

func TestRead_Unknown(t *testing.T) {
	_, d := newReady(t, AXP202, nil)
	if _, err := d.Read(Reading(0)); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("Read(0): %v", err)
	}
}

func TestBatteryPower(t *testing.T) {
	_, d := newReady(t, AXP202, func(f *fakeI2C) {
		f.regs[regBatPowerH] = 0x01
		f.regs[regBatPowerH+1] = 0x00
		f.regs[regBatPowerH+2] = 0x00
	})
	p, err := d.BatteryPower_uW()
	if err != nil {
		t.Fatal(err)
	}
	if p != 65536*11/10 {
		t.Fatalf("BatteryPower_uW=%d", p)
	}
}

func TestSnapshot(t *testing.T) {
	f, d := newReady(t, AXP202, func(f *fakeI2C) {
		f.regs[regBatVolH], f.regs[regBatVolH+1] = 0xBB, 0x08
		f.regs[regStatus] = 1<<statusVBusPresent | 1<<statusACINPresent
		f.regs[regModeChgState] = 1<<modeCharging | 1<<modeBattery
		f.regs[regBattPercent] = 80
	})
	f.failRead[regAPSVolH] = true

	s := d.Snapshot()
	if s.Battery_mV != 3300 {
		t.Errorf("Battery_mV=%d", s.Battery_mV)
	}
	if !s.VBusPresent || !s.AcinPresent || !s.BatteryPresent || !s.Charging {
		t.Errorf("status %+v", s)
	}
	if s.BatteryPercent != 80 {
		t.Errorf("BatteryPercent=%d", s.BatteryPercent)
	}
	if s.APS_mV != 0 {
		t.Errorf("APS_mV=%d after failed read", s.APS_mV)
	}
}
