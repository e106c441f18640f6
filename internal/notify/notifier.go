package notify

import (
	"github.com/ledgerline/ledgerline/internal/config"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/types"
)

// Notifier is the user facing notification surface. Notify is fire and
// forget: callers never wait on delivery and never fail on its account.
type Notifier interface {
	Notify(kind types.NotificationKind, message string)
}

// NewNotifier picks the notification backend from config
func NewNotifier(cfg *config.Configuration, log *logger.Logger) Notifier {
	if cfg.Webhook.URL != "" {
		return NewWebhookNotifier(cfg.Webhook, log)
	}
	return NewLogNotifier(log)
}

// LogNotifier writes notifications to the application log. Used in local
// mode and as the fallback when no webhook is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(kind types.NotificationKind, message string) {
	switch kind {
	case types.NotificationError:
		n.log.Warnw("notification", "kind", kind, "message", message)
	default:
		n.log.Infow("notification", "kind", kind, "message", message)
	}
}
