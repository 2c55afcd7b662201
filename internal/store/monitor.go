package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.uber.org/zap"

	"github.com/mongovc/mongovc/server/logging"
)

// QueryMonitor logs slow and failed MongoDB commands.
type QueryMonitor struct {
	logger logging.Logger
	config *MonitorConfig
}

// MonitorConfig configures QueryMonitor.
type MonitorConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
}

// NewQueryMonitor creates a QueryMonitor.
func NewQueryMonitor(config *MonitorConfig) *QueryMonitor {
	return &QueryMonitor{
		logger: logging.New("store"),
		config: config,
	}
}

// CreateCommandMonitor builds the driver hook, or nil when disabled.
func (m *QueryMonitor) CreateCommandMonitor() *event.CommandMonitor {
	if !m.config.Enabled {
		return nil
	}

	return &event.CommandMonitor{
		Started: func(_ context.Context, evt *event.CommandStartedEvent) {
			if logging.Enabled(zap.DebugLevel) {
				m.logger.Debugf("STAR: %d(%s): %s", evt.RequestID, evt.CommandName, evt.Command)
			}
		},
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			duration := evt.Duration.Milliseconds()
			if m.config.SlowQueryThreshold > 0 && evt.Duration > m.config.SlowQueryThreshold {
				m.logger.Warnf("SLOW: %d(%s): %dms", evt.RequestID, evt.CommandName, duration)
				return
			}
			m.logger.Debugf("SUCC: %d(%s): %dms", evt.RequestID, evt.CommandName, duration)
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			m.logger.Warnf("FAIL: %d(%s), %s: %dms",
				evt.RequestID, evt.CommandName, evt.Failure, evt.Duration.Milliseconds())
		},
	}
}
