//go:build windows

package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-toast/toast"
	"github.com/rs/zerolog/log"
)

func (n *NotificationManager) platformNotify(title, message string) error {
	var iconPath string

	if len(n.embeddedIcon) > 0 {
		written, err := writeTempIcon(n.embeddedIcon)
		if err != nil {
			log.Warn().Err(err).Msg("failed to write temporary toast icon")
		} else {
			iconPath = written
			// Remove the temporary file after a short delay.
			time.AfterFunc(10*time.Second, func() {
				if errRem := os.Remove(written); errRem != nil && !os.IsNotExist(errRem) {
					log.Warn().Err(errRem).Str("path", written).Msg("failed to remove temporary icon")
				}
			})
		}
	}

	notification := toast.Notification{
		AppID:   n.appName,
		Title:   title,
		Message: message,
		Icon:    iconPath,
	}
	return notification.Push()
}

func writeTempIcon(iconData []byte) (string, error) {
	if len(iconData) == 0 {
		return "", fmt.Errorf("cannot write empty icon data")
	}
	tmpFile, err := os.CreateTemp("", "deskchat-icon-*.ico")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	if _, err := tmpFile.Write(iconData); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", err
	}

	absPath, err := filepath.Abs(tmpFile.Name())
	if err != nil {
		return tmpFile.Name(), nil
	}
	return absPath, nil
}
