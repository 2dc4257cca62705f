package types

// ------------------------
// PMIC (AXP173/AXP192/AXP202)
// ------------------------

// Retained: pmic/<name>/info
type PMICInfo struct {
	Chip    string   `json:"chip"`
	ChipID  uint8    `json:"chip_id"`
	Addr    uint16   `json:"addr"`
	Rails   []string `json:"rails"`
	Outputs []string `json:"outputs"`
	GPIOs   int      `json:"gpios"`
	IRQRead bool     `json:"irq_read"`
}

// Retained: pmic/<name>/value
type PMICValue struct {
	Acin_mV      int32 `json:"acin_mV"`
	Acin_mA      int32 `json:"acin_mA"`
	VBus_mV      int32 `json:"vbus_mV"`
	VBus_mA      int32 `json:"vbus_mA"`
	Battery_mV   int32 `json:"battery_mV"`
	Charge_mA    int32 `json:"charge_mA"`
	Discharge_mA int32 `json:"discharge_mA"`
	APS_mV       int32 `json:"aps_mV"`
	Internal_mC  int32 `json:"internal_mC"`

	VBusPresent    bool  `json:"vbus_present"`
	AcinPresent    bool  `json:"acin_present"`
	BatteryPresent bool  `json:"battery_present"`
	Charging       bool  `json:"charging"`
	BatteryPercent uint8 `json:"battery_percent,omitempty"`
	Coulomb_uAh    int64 `json:"coulomb_uAh"`

	TS int64 `json:"ts_ms"`
}

// Event: pmic/<name>/event/<kind>
type PMICEvent struct {
	Kind     string `json:"kind"`
	Charging *bool  `json:"charging,omitempty"` // kind "charging"
	Plugged  *bool  `json:"plugged,omitempty"`  // kinds "vbus", "battery", "acin"
	Warning  string `json:"warning,omitempty"`  // kind "warning"
	TS       int64  `json:"ts_ms"`
}

// Controls: pmic/<name>/ctl/<verb>
type PMICSetVoltage struct { // verb: "set_voltage"
	Rail   string `json:"rail"`
	MilliV uint16 `json:"mV"`
}
type PMICSetOutput struct { // verb: "set_output"
	Rail string `json:"rail"`
	On   bool   `json:"on"`
}
type PMICSetCharging struct{ On bool }            // verb: "set_charging"
type PMICSetChargeCurrent struct{ MilliA uint16 } // verb: "set_charge_current"
type PMICSetTimer struct{ Minutes uint8 }         // verb: "set_timer"
type PMICIRQMask struct{ Mask uint64 }            // verbs: "enable_irq", "disable_irq"
type PMICClearIRQ struct{}                        // verb: "clear_irq"
type PMICReadSnapshot struct{}                    // verb: "read"
