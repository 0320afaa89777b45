// Package notification implements the NotificationSink port. Sinks are
// fire-and-forget: callers log failures and move on, so no sink may block
// or retry indefinitely.
package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
)

// LogSink writes notifications to the application log. It is the default
// channel for development and test deployments.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a new log-backed sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify implements port.NotificationSink.
func (s *LogSink) Notify(ctx context.Context, n port.Notification) error {
	s.logger.Info("Notification dispatched",
		zap.String("kind", n.Kind),
		zap.String("recipient", n.RecipientEmail),
		zap.String("subject", n.Subject),
		zap.String("body", n.Body),
		zap.Strings("attachments", n.Attachments))
	return nil
}

// Verify interface compliance
var _ port.NotificationSink = (*LogSink)(nil)
