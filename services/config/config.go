package config

import (
	"context"
	"encoding/json"
	"io"
	"log"

	"axp-go/bus"
	"axp-go/errcode"

	"golang.org/x/xerrors"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	Log  *log.Logger
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName, Log: log.New(io.Discard, "", 0)}
}

// publishConfig reads the device config from embedded data and publishes each
// top-level key as a retained config/<key> message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errcode.New(errcode.InvalidParams, "config: publish", "missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errcode.New(errcode.InvalidParams, "config: publish", "no embedded config for device "+device)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return xerrors.Errorf("config: could not decode config for %q: %w", device, errcode.Wrap(errcode.InvalidPayload, "config: decode", err))
	}

	for k, v := range m {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}
	s.Log.Println("Info: published", len(m), "config keys for", device)
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			s.Log.Println("Warn:", err)
		}
	}()
}
