package testutil

import (
	"sync"

	"github.com/ledgerline/ledgerline/internal/types"
)

// Notification is one captured notification
type Notification struct {
	Kind    types.NotificationKind
	Message string
}

// CaptureNotifier records notifications for assertions
type CaptureNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewCaptureNotifier() *CaptureNotifier {
	return &CaptureNotifier{}
}

func (n *CaptureNotifier) Notify(kind types.NotificationKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, Notification{Kind: kind, Message: message})
}

// Notifications returns a copy of everything captured so far
func (n *CaptureNotifier) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification{}, n.notifications...)
}

// Last returns the most recent notification, if any
func (n *CaptureNotifier) Last() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notifications) == 0 {
		return Notification{}, false
	}
	return n.notifications[len(n.notifications)-1], true
}

// Reset clears captured notifications
func (n *CaptureNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = nil
}
