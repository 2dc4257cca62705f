package pmic

import (
	"context"
	"encoding/json"

	"axp-go/bus"
	"axp-go/drivers/axp"
	"axp-go/errcode"
	"axp-go/types"
)

// controlLoop serves pmic/<name>/ctl/<verb> requests one at a time.
func (s *Service) controlLoop(ctx context.Context, sub *bus.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-sub.Channel():
			if !ok {
				return nil
			}
			s.handle(m)
		}
	}
}

func (s *Service) handle(m *bus.Message) {
	verb, _ := m.Topic[len(m.Topic)-1].(string)
	reply, err := s.dispatch(verb, m.Payload)
	if err != nil {
		s.log.Println("Warn: ctl", verb, "failed:", err)
		s.conn.Reply(m, types.ErrorReply{OK: false, Error: string(errcode.Of(err))}, false)
		return
	}
	if reply == nil {
		reply = types.OKReply{OK: true}
	}
	s.conn.Reply(m, reply, false)
}

func (s *Service) dispatch(verb string, payload any) (any, error) {
	d := s.dev
	switch verb {
	case "set_voltage":
		var a types.PMICSetVoltage
		if err := decodeInto(payload, &a); err != nil {
			return nil, err
		}
		r, err := parseRail(a.Rail)
		if err != nil {
			return nil, err
		}
		return nil, d.SetVoltage(r, a.MilliV)
	case "set_output":
		var a types.PMICSetOutput
		if err := decodeInto(payload, &a); err != nil {
			return nil, err
		}
		r, err := parseRail(a.Rail)
		if err != nil {
			return nil, err
		}
		return nil, d.SetPowerOutput(r, a.On)
	case "set_charging":
		var a types.PMICSetCharging
		if err := decodeInto(payload, &a); err != nil {
			return nil, err
		}
		return nil, d.SetChargingEnabled(a.On)
	case "set_charge_current":
		var a types.PMICSetChargeCurrent
		if err := decodeInto(payload, &a); err != nil {
			return nil, err
		}
		return nil, d.SetChargeCurrent(a.MilliA)
	case "set_timer":
		var a types.PMICSetTimer
		if err := decodeInto(payload, &a); err != nil {
			return nil, err
		}
		return nil, d.SetTimer(a.Minutes)
	case "clear_timer":
		return nil, d.ClearTimer()
	case "enable_irq", "disable_irq":
		var a types.PMICIRQMask
		if err := decodeInto(payload, &a); err != nil {
			return nil, err
		}
		if verb == "enable_irq" {
			return nil, d.EnableIRQ(axp.IRQ(a.Mask))
		}
		return nil, d.DisableIRQ(axp.IRQ(a.Mask))
	case "clear_irq":
		return nil, d.ClearIRQ()
	case "read":
		return s.value(), nil
	case "shutdown":
		return nil, d.Shutdown()
	}
	return nil, errcode.New(errcode.InvalidTopic, "pmic: ctl", "unknown verb "+verb)
}

func parseRail(s string) (axp.Rail, error) {
	r, ok := axp.ParseRail(s)
	if !ok {
		return 0, errcode.New(errcode.InvalidParams, "pmic: ctl", "unknown rail "+s)
	}
	return r, nil
}

// decodeInto fills dst from a typed payload of the same type or from a
// generic JSON-shaped value.
func decodeInto[T any](payload any, dst *T) error {
	switch v := payload.(type) {
	case T:
		*dst = v
		return nil
	case *T:
		if v != nil {
			*dst = *v
			return nil
		}
	case nil:
		return errcode.New(errcode.InvalidPayload, "pmic: ctl", "missing payload")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return errcode.Wrap(errcode.InvalidPayload, "pmic: ctl", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return errcode.Wrap(errcode.InvalidPayload, "pmic: ctl", err)
	}
	return nil
}
