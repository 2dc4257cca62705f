package axp

// Snapshot collects commonly used telemetry and status.
// Zero values remain where individual reads fail.
type Snapshot struct {
	Acin_mV, Acin_mA        int32
	VBus_mV, VBus_mA        int32
	Battery_mV              int32
	Charge_mA, Discharge_mA int32
	APS_mV                  int32
	Internal_mC             int32

	VBusPresent    bool
	AcinPresent    bool
	BatteryPresent bool
	Charging       bool
	BatteryPercent uint8 // AXP202 only
	CoulombNet_uAh int64
}

func (d *Device) Snapshot() Snapshot {
	var s Snapshot
	d.SnapshotInto(&s)
	return s
}

func (d *Device) SnapshotInto(out *Snapshot) {
	var s Snapshot
	read := func(r Reading, dst *int32) {
		if v, e := d.Read(r); e == nil {
			*dst = v
		}
	}
	read(AcinVoltage, &s.Acin_mV)
	read(AcinCurrent, &s.Acin_mA)
	read(VBusVoltage, &s.VBus_mV)
	read(VBusCurrent, &s.VBus_mA)
	read(BatteryVoltage, &s.Battery_mV)
	read(BatteryChargeCurrent, &s.Charge_mA)
	read(BatteryDischargeCurrent, &s.Discharge_mA)
	read(APSVoltage, &s.APS_mV)
	read(InternalTemp, &s.Internal_mC)

	if v, e := d.IsVBusPlugged(); e == nil {
		s.VBusPresent = v
	}
	if v, e := d.IsACINPlugged(); e == nil {
		s.AcinPresent = v
	}
	if v, e := d.IsBatteryConnected(); e == nil {
		s.BatteryPresent = v
	}
	if v, e := d.IsCharging(); e == nil {
		s.Charging = v
	}
	if v, e := d.BatteryPercentage(); e == nil {
		s.BatteryPercent = v
	}
	if v, e := d.Coulomb_uAh(); e == nil {
		s.CoulombNet_uAh = v
	}
	*out = s
}
