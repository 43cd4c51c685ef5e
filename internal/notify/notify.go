// Package notify raises desktop alerts when a recompute fails.
package notify

import (
	"fmt"
	"unicode/utf8"

	"github.com/gen2brain/beeep"
)

// AppName is shown as the alert's originating application.
const AppName = "Order Ledger"

// maxMessageLen keeps alerts readable in notification popups.
const maxMessageLen = 240

// alertFunc is replaced in tests.
var alertFunc = beeep.Alert

// Notifier sends failure alerts. A disabled notifier does nothing.
type Notifier struct {
	enabled bool
}

// New creates a notifier.
func New(enabled bool) *Notifier {
	if enabled {
		beeep.AppName = AppName
	}
	return &Notifier{enabled: enabled}
}

// Enabled reports whether alerts are sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.enabled
}

// RecomputeFailed alerts that a pass from source failed with err.
func (n *Notifier) RecomputeFailed(source string, err error) error {
	if !n.Enabled() || err == nil {
		return nil
	}
	title := fmt.Sprintf("Order summary failed (%s)", source)
	if alertErr := alertFunc(title, truncate(err.Error()), ""); alertErr != nil {
		return fmt.Errorf("send alert: %w", alertErr)
	}
	return nil
}

// truncate shortens s to maxMessageLen bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
