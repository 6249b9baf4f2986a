package scheduler

import "github.com/gen2brain/beeep"

// Notifier delivers a reminder to the user.
type Notifier func(title, message string) error

// SendNotification shows a desktop notification.
func SendNotification(title, message string) error {
	return beeep.Notify(title, message, "")
}
