package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgM5Core2 = `{
  "pmic": {
    "name": "main",
    "chip": "axp192",
    "addr": 52,
    "quick_ms": 100,
    "quick_per_slow": 3,
    "telemetry_ms": 1000,
    "irq_mask": 549756013580
  },
  "heartbeat": {
    "interval": 10
  }
}`

const cfgTTGOWatch = `{
  "pmic": {
    "name": "main",
    "chip": "axp202",
    "addr": 53,
    "quick_ms": 100,
    "quick_per_slow": 3,
    "telemetry_ms": 2000,
    "irq_mask": 549756013580
  }
}`

const cfgM5StickC = `{
  "pmic": {
    "name": "main",
    "chip": "auto",
    "telemetry_ms": 1000
  }
}`

var embeddedConfigs = map[string][]byte{
	"m5core2":   []byte(cfgM5Core2),
	"ttgowatch": []byte(cfgTTGOWatch),
	"m5stickc":  []byte(cfgM5StickC),
}
