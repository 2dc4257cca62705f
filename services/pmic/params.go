package pmic

import (
	"encoding/json"
	"strings"

	"axp-go/drivers/axp"
	"axp-go/errcode"
	"axp-go/x/mathx"
	"axp-go/x/timex"
)

// Params is supplied on the retained "config/pmic" topic.
type Params struct {
	Name         string `json:"name"`           // topic segment, default "main"
	Chip         string `json:"chip"`           // "axp173" | "axp192" | "axp202" | "auto"
	Addr         uint16 `json:"addr"`           // 0 => variant default
	QuickMs      int    `json:"quick_ms"`       // interrupt poll period
	QuickPerSlow int    `json:"quick_per_slow"` // interrupt polls per status poll
	TelemetryMs  int    `json:"telemetry_ms"`   // 0 disables the retained value
	IRQMask      uint64 `json:"irq_mask"`       // enabled at start, 0 leaves the bank alone
}

const (
	minQuickMs     = 10
	maxQuickMs     = 10_000
	minTelemetryMs = 100
)

// decodeParams accepts a Params value or the generic JSON object the config
// service publishes.
func decodeParams(payload any) (Params, error) {
	var p Params
	switch v := payload.(type) {
	case Params:
		p = v
	case *Params:
		if v == nil {
			return p, errcode.New(errcode.InvalidPayload, "pmic: params", "nil params")
		}
		p = *v
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return p, errcode.Wrap(errcode.InvalidPayload, "pmic: params", err)
		}
		if err := json.Unmarshal(b, &p); err != nil {
			return p, errcode.Wrap(errcode.InvalidPayload, "pmic: params", err)
		}
	}
	return p.normalise()
}

func (p Params) normalise() (Params, error) {
	if p.Name == "" {
		p.Name = "main"
	}
	p.Chip = strings.ToLower(p.Chip)
	if p.Chip == "" {
		p.Chip = "auto"
	}
	if p.Chip != "auto" {
		if _, err := axp.ParseChip(p.Chip); err != nil {
			return p, err
		}
	}
	if p.Addr > 0x7F {
		return p, errcode.New(errcode.InvalidParams, "pmic: params", "addr must be 7-bit")
	}
	if p.IRQMask&^uint64(axp.IRQAll) != 0 {
		return p, errcode.New(errcode.InvalidParams, "pmic: params", "irq_mask exceeds 40 bits")
	}
	if p.QuickMs != 0 {
		p.QuickMs = mathx.Clamp(p.QuickMs, minQuickMs, maxQuickMs)
	}
	if p.TelemetryMs != 0 {
		p.TelemetryMs = mathx.Max(p.TelemetryMs, minTelemetryMs)
	}
	return p, nil
}

func (p Params) watcherConfig() axp.WatcherConfig {
	return axp.WatcherConfig{
		QuickInterval: timex.Ms(p.QuickMs),
		QuickPerSlow:  p.QuickPerSlow,
	}
}
