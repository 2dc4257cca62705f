// Package pmic runs one AXP power management IC on the bus. It waits for its
// retained config, initializes the chip, then publishes watcher events and
// telemetry and serves control requests until its context ends.
//
// Topics, with <name> from Params.Name:
//
//	pmic/<name>/state         retained types.ServiceState
//	pmic/<name>/info          retained types.Info{Detail: types.PMICInfo}
//	pmic/<name>/value         retained types.PMICValue
//	pmic/<name>/status        retained types.DeviceStatus, on link change
//	pmic/<name>/event/<kind>  types.PMICEvent
//	pmic/<name>/ctl/<verb>    requests; replies are types.OKReply or types.ErrorReply
package pmic

import (
	"context"
	"io"
	"log"
	"time"

	"axp-go/bus"
	"axp-go/drivers/axp"
	"axp-go/errcode"
	"axp-go/types"
	"axp-go/x/timex"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
	"tinygo.org/x/drivers"
)

var topicConfigPMIC = bus.Topic{"config", "pmic"}

// Config wires the service to its hardware. Either Bus or both Read and
// Write must be set; Bus is required for chip "auto".
type Config struct {
	Bus         drivers.I2C
	Read, Write axp.TransferFunc
	Logger      *log.Logger

	// Params skips waiting for config/pmic when non-nil.
	Params *Params
}

type Service struct {
	cfg  Config
	conn *bus.Connection
	log  *log.Logger

	// Set by Run.
	p   Params
	dev *axp.Device

	link types.Link // owned by telemetryLoop
}

func New(conn *bus.Connection, cfg Config) (*Service, error) {
	if conn == nil {
		return nil, errcode.New(errcode.InvalidParams, "pmic: new", "nil connection")
	}
	if cfg.Bus == nil && (cfg.Read == nil || cfg.Write == nil) {
		return nil, errcode.New(errcode.InvalidParams, "pmic: new", "no bus and no transfer callbacks")
	}
	lg := cfg.Logger
	if lg == nil {
		lg = log.New(io.Discard, "", 0)
	}
	return &Service{cfg: cfg, conn: conn, log: lg}, nil
}

// Device returns the driver once Run has initialized it.
func (s *Service) Device() *axp.Device { return s.dev }

// Run blocks until ctx ends or a loop fails. A cancelled context is a clean
// stop and returns nil.
func (s *Service) Run(ctx context.Context) error {
	p, err := s.awaitParams(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return xerrors.Errorf("pmic: could not read config: %w", err)
	}
	s.p = p
	s.publishState("starting", "ok", nil)

	dev, err := s.open(p)
	if err != nil {
		s.publishState("stopped", string(errcode.Of(err)), err)
		return xerrors.Errorf("pmic: could not open %s: %w", p.Chip, err)
	}
	s.dev = dev
	if p.IRQMask != 0 {
		if err := dev.EnableIRQ(axp.IRQ(p.IRQMask)); err != nil {
			s.publishState("stopped", string(errcode.Of(err)), err)
			return xerrors.Errorf("pmic: could not enable interrupts: %w", err)
		}
	}
	s.publishInfo()
	s.publishState("ready", "ok", nil)
	s.log.Println("Info:", dev.Chip(), "ready at", dev.Address(), "as", p.Name)

	wcfg := p.watcherConfig()
	wcfg.Logger = s.log
	// Bus faults are reported through pmic/<name>/status; anything else ends Run.
	wcfg.OnError = func(err error) bool { return errcode.Of(err) == errcode.IOError }
	w := axp.NewWatcher(dev, axp.SinkFunc(s.publishEvent), wcfg)

	ctl := s.conn.Subscribe(s.topic("ctl", bus.SingleWild))
	defer s.conn.Unsubscribe(ctl)

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		if err := w.Run(gctx); err != nil {
			return xerrors.Errorf("pmic: watcher stopped: %w", err)
		}
		return nil
	})
	if p.TelemetryMs > 0 {
		grp.Go(func() error { return s.telemetryLoop(gctx, timex.Ms(p.TelemetryMs)) })
	}
	grp.Go(func() error { return s.controlLoop(gctx, ctl) })

	err = grp.Wait()
	s.publishState("stopped", string(errcode.Of(err)), err)
	s.log.Println("Info: pmic service stopping")
	return err
}

func (s *Service) awaitParams(ctx context.Context) (Params, error) {
	if s.cfg.Params != nil {
		return s.cfg.Params.normalise()
	}
	sub := s.conn.Subscribe(topicConfigPMIC)
	defer s.conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return Params{}, ctx.Err()
		case m := <-sub.Channel():
			p, err := decodeParams(m.Payload)
			if err != nil {
				s.log.Println("Warn: ignoring config:", err)
				continue
			}
			return p, nil
		}
	}
}

// open builds and initializes the device.
func (s *Service) open(p Params) (*axp.Device, error) {
	chip := axp.ChipUnknown
	if p.Chip == "auto" {
		if s.cfg.Bus == nil {
			return nil, errcode.New(errcode.InvalidParams, "pmic: open", "chip auto needs a direct bus")
		}
		for _, addr := range autoAddrs(p.Addr) {
			c, err := axp.Detect(s.cfg.Bus, addr)
			if err == nil {
				chip, p.Addr = c, addr
				break
			}
			s.log.Println("Info: no chip at", addr, ":", err)
		}
		if chip == axp.ChipUnknown {
			return nil, errcode.New(errcode.IdentityMismatch, "pmic: open", "no supported chip found")
		}
	} else {
		chip, _ = axp.ParseChip(p.Chip)
	}

	cfg := axp.Config{Chip: chip, Address: p.Addr}
	var (
		dev *axp.Device
		err error
	)
	if s.cfg.Read != nil && s.cfg.Write != nil {
		dev, err = axp.NewWithTransport(s.cfg.Read, s.cfg.Write, cfg)
	} else {
		dev, err = axp.New(s.cfg.Bus, cfg)
	}
	if err != nil {
		return nil, err
	}
	if err := dev.Initialize(); err != nil {
		return nil, err
	}
	return dev, nil
}

func autoAddrs(addr uint16) []uint16 {
	if addr != 0 {
		return []uint16{addr}
	}
	return []uint16{axp.AddressAXP202, axp.AddressAXP192}
}

// ---- publishing ----

func (s *Service) topic(rest ...any) bus.Topic {
	return append(bus.Topic{"pmic", s.p.Name}, rest...)
}

func (s *Service) pubRet(t bus.Topic, p any) {
	s.conn.Publish(s.conn.NewMessage(t, p, true))
}

func (s *Service) publishState(level, status string, err error) {
	st := types.ServiceState{Level: level, Status: status, TS: timex.NowMs()}
	if err != nil {
		st.Error = err.Error()
	}
	s.pubRet(s.topic("state"), st)
}

func (s *Service) publishInfo() {
	c := s.dev.Capabilities()
	info := types.PMICInfo{
		Chip:    c.Chip.String(),
		ChipID:  s.dev.ChipID(),
		Addr:    s.dev.Address(),
		GPIOs:   c.GPIOs,
		IRQRead: c.IRQRead,
	}
	for _, r := range c.Rails {
		info.Rails = append(info.Rails, r.String())
	}
	for _, r := range c.Outputs {
		info.Outputs = append(info.Outputs, r.String())
	}
	s.pubRet(s.topic("info"), types.Info{SchemaVersion: 1, Driver: "axp", Detail: info})
}

// publishEvent is the watcher's sink.
func (s *Service) publishEvent(e axp.Event) {
	ev := types.PMICEvent{Kind: e.Kind.String(), TS: timex.NowMs()}
	switch e.Kind {
	case axp.EventChargingChanged:
		ev.Charging = &e.Charging
	case axp.EventVBusPlug, axp.EventBatteryPlug, axp.EventAcinPlug:
		ev.Plugged = &e.Plugged
	case axp.EventWarning:
		ev.Warning = e.Warning.String()
	}
	s.conn.Publish(s.conn.NewMessage(s.topic("event", ev.Kind), ev, false))
}

func (s *Service) telemetryLoop(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	s.publishValue()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.publishValue()
		}
	}
}

func (s *Service) publishValue() {
	_, err := s.dev.IsVBusPlugged()
	s.publishLink(err)
	s.pubRet(s.topic("value"), s.value())
}

// publishLink reports bus health on pmic/<name>/status when it changes.
func (s *Service) publishLink(err error) {
	link := types.LinkUp
	if err != nil {
		link = types.LinkDegraded
	}
	if link == s.link {
		return
	}
	s.link = link
	st := types.DeviceStatus{Link: link, TS: timex.NowMs()}
	if err != nil {
		st.Error = string(errcode.Of(err))
		s.log.Println("Warn: pmic link degraded:", err)
	}
	s.pubRet(s.topic("status"), st)
}

func (s *Service) value() types.PMICValue {
	var snap axp.Snapshot
	s.dev.SnapshotInto(&snap)
	return types.PMICValue{
		Acin_mV:        snap.Acin_mV,
		Acin_mA:        snap.Acin_mA,
		VBus_mV:        snap.VBus_mV,
		VBus_mA:        snap.VBus_mA,
		Battery_mV:     snap.Battery_mV,
		Charge_mA:      snap.Charge_mA,
		Discharge_mA:   snap.Discharge_mA,
		APS_mV:         snap.APS_mV,
		Internal_mC:    snap.Internal_mC,
		VBusPresent:    snap.VBusPresent,
		AcinPresent:    snap.AcinPresent,
		BatteryPresent: snap.BatteryPresent,
		Charging:       snap.Charging,
		BatteryPercent: snap.BatteryPercent,
		Coulomb_uAh:    snap.CoulombNet_uAh,
		TS:             timex.NowMs(),
	}
}
