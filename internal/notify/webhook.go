package notify

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ledgerline/ledgerline/internal/config"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/types"
)

// WebhookNotifier posts notifications to a configured endpoint. Delivery
// retries with backoff belong here, not to the caller: the core treats
// notifications as fire and forget.
type WebhookNotifier struct {
	url    string
	client *retryablehttp.Client
	log    *logger.Logger
}

type webhookPayload struct {
	ID        string                 `json:"id"`
	Kind      types.NotificationKind `json:"kind"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewWebhookNotifier(cfg config.WebhookConfig, log *logger.Logger) *WebhookNotifier {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.Logger = nil
	client.HTTPClient.Timeout = 10 * time.Second

	return &WebhookNotifier{
		url:    cfg.URL,
		client: client,
		log:    log,
	}
}

// Notify delivers the notification on a background goroutine. Failures are
// logged and dropped.
func (n *WebhookNotifier) Notify(kind types.NotificationKind, message string) {
	payload := webhookPayload{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION_EVENT),
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			n.log.Errorw("failed to marshal notification", "error", err)
			return
		}

		resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
		if err != nil {
			n.log.Errorw("failed to deliver notification",
				"error", err,
				"kind", kind,
			)
			return
		}
		defer resp.Body.Close()
	}()
}
