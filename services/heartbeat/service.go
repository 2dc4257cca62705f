// Package heartbeat publishes a retained liveness beat on "heartbeat" so bus
// clients can tell the process is still scheduling work.
package heartbeat

import (
	"context"
	"io"
	"log"
	"time"

	"axp-go/bus"
	"axp-go/x/timex"
)

var (
	topicConfigHeartbeat = bus.Topic{"config", "heartbeat"}
	topicHeartbeat       = bus.Topic{"heartbeat"}
)

const defaultInterval = time.Second

// Beat is the retained heartbeat payload.
type Beat struct {
	Seq      uint64 `json:"seq"`
	UptimeMs int64  `json:"uptime_ms"`
	TS       int64  `json:"ts_ms"`
}

type Service struct {
	Log      *log.Logger
	Interval time.Duration

	start time.Time
	seq   uint64
}

func New() *Service {
	return &Service{Log: log.New(io.Discard, "", 0), Interval: defaultInterval}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	if s.Interval <= 0 {
		s.Interval = defaultInterval
	}
	tick := time.NewTicker(s.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Log.Println("Info: heartbeat service stopping")
			return
		case <-tick.C:
			s.beat(conn)
		case msg := <-cfgSub.Channel():
			if iv, ok := interval(msg.Payload); ok {
				s.Interval = iv
				tick.Reset(iv)
				s.Log.Println("Info: heartbeat interval set to", iv)
			} else {
				s.Log.Println("Warn: ignoring heartbeat config:", msg.Payload)
			}
		}
	}
}

func (s *Service) beat(conn *bus.Connection) {
	s.seq++
	now := time.Now()
	b := Beat{Seq: s.seq, UptimeMs: now.Sub(s.start).Milliseconds(), TS: timex.NowMs()}
	conn.Publish(conn.NewMessage(topicHeartbeat, b, true))
}

// interval reads {"interval": seconds} or {"interval_ms": ms}.
func interval(payload any) (time.Duration, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	if v, ok := m["interval_ms"].(float64); ok && v > 0 {
		return timex.Ms(int64(v)), true
	}
	if v, ok := m["interval"].(float64); ok && v > 0 {
		return time.Duration(v * float64(time.Second)), true
	}
	return 0, false
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	s.start = time.Now()
	go s.serviceLoop(ctx, conn)
	return nil
}
