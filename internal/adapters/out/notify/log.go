package notify

import (
	"context"

	"dronedispatch/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes every event to the log and never fails.
type LogNotifier struct {
	log *logrus.Entry
}

// NewLogNotifier logs under the "log-notifier" component.
func NewLogNotifier(log *logrus.Entry) *LogNotifier {
	if log == nil {
		log = logger.Discard()
	}
	return &LogNotifier{log: logger.Component(log, "log-notifier")}
}

func (n *LogNotifier) Emit(ctx context.Context, channel, event string, payload any) error {
	logger.FromContext(ctx, n.log).
		WithField("channel", channel).
		WithField("event_type", event).
		WithField("payload", payload).
		Info("Event")
	return nil
}
