package ui

import (
	"github.com/rs/zerolog/log"
)

// NotificationManager handles showing desktop notifications across platforms.
type NotificationManager struct {
	enabled      bool
	appName      string
	embeddedIcon []byte
}

// NewNotificationManager creates a new notification manager
func NewNotificationManager(enabled bool, appName string, embeddedIcon []byte) *NotificationManager {
	return &NotificationManager{
		enabled:      enabled,
		appName:      appName,
		embeddedIcon: embeddedIcon,
	}
}

// Show displays a desktop notification if notifications are enabled.
func (n *NotificationManager) Show(title, message string) {
	if !n.enabled {
		log.Debug().Str("title", title).Msg("notification suppressed by settings")
		return
	}
	if err := n.platformNotify(title, message); err != nil {
		log.Warn().Err(err).Str("title", title).Msg("failed to show notification")
	}
}

// SetEnabled flips notification display at runtime (settings reload).
func (n *NotificationManager) SetEnabled(enabled bool) {
	n.enabled = enabled
}
