//go:build linux

// Command pmicd runs the pmic service against an AXP chip on a Linux i2c-dev
// bus and prints its events and telemetry.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"axp-go/bus"
	"axp-go/drivers/axp"
	"axp-go/services/config"
	"axp-go/services/heartbeat"
	"axp-go/services/pmic"
	"axp-go/transport/hostbus"
	"axp-go/types"

	"golang.org/x/xerrors"
)

func main() {
	var (
		busNum  = flag.Int("bus", 0, "i2c bus number (/dev/i2c-N)")
		backend = flag.String("backend", "smbus", "i2c backend: smbus or platina")
		device  = flag.String("device", "m5core2", "embedded device config to publish")
		values  = flag.Bool("values", false, "print telemetry as well as events")
	)
	flag.Parse()

	lg := log.New(os.Stderr, "pmicd: ", log.LstdFlags)
	if err := run(*busNum, *backend, *device, *values, lg); err != nil {
		lg.Fatalf("%+v", err)
	}
}

func run(busNum int, backend, device string, values bool, lg *log.Logger) error {
	tr, err := open(backend, busNum)
	if err != nil {
		return err
	}
	defer tr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, device)

	b := bus.NewBus(16)
	cfgSvc := config.NewConfigService()
	cfgSvc.Log = lg
	cfgSvc.Start(ctx, b.NewConnection("config"))

	hb := heartbeat.New()
	hb.Log = lg
	hb.Start(ctx, b.NewConnection("heartbeat"))

	svc, err := pmic.New(b.NewConnection("pmic"), pmic.Config{
		Bus:    tr,
		Read:   tr.Read,
		Write:  tr.Write,
		Logger: lg,
	})
	if err != nil {
		return xerrors.Errorf("pmicd: could not create service: %w", err)
	}

	ui := b.NewConnection("ui")
	go printLoop(ctx, ui.Subscribe(bus.T("pmic", bus.SingleWild, "event", bus.MultiWild)), lg)
	go printLoop(ctx, ui.Subscribe(bus.T("pmic", bus.SingleWild, "state")), lg)
	if values {
		go printLoop(ctx, ui.Subscribe(bus.T("pmic", bus.SingleWild, "value")), lg)
	}

	if err := svc.Run(ctx); err != nil {
		var te *axp.TransferError
		if xerrors.As(err, &te) {
			lg.Println("Error: last bus fault:", tr.LastError())
		}
		return err
	}
	return nil
}

func open(backend string, busNum int) (*hostbus.Transport, error) {
	switch backend {
	case "smbus":
		return hostbus.OpenSMBus(busNum, axp.AddressAXP192)
	case "platina":
		return hostbus.OpenPlatina(busNum)
	}
	return nil, xerrors.Errorf("pmicd: unknown backend %q", backend)
}

func printLoop(ctx context.Context, sub *bus.Subscription, lg *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			switch p := m.Payload.(type) {
			case types.PMICEvent:
				lg.Printf("%v %s", m.Topic, p.Kind)
			case types.PMICValue:
				lg.Printf("%v bat=%dmV vbus=%dmV chg=%dmA %d%%", m.Topic, p.Battery_mV, p.VBus_mV, p.Charge_mA, p.BatteryPercent)
			default:
				lg.Printf("%v %+v", m.Topic, p)
			}
		}
	}
}
