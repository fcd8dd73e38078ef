// Package notify carries user-visible notifications from the data pipeline
// to whichever surface presents them (toasts in the TUI, stderr in the CLI).
package notify

import (
	"github.com/zjrosen/propdesk/internal/pubsub"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

// Notification is one transient, dismissible message.
type Notification struct {
	Level       Level
	Title       string
	Description string
}

// Notifier presents notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

// Notify implements Notifier.
func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// BrokerNotifier publishes notifications on a broker so UI listeners can
// render them.
type BrokerNotifier struct {
	broker *pubsub.Broker[Notification]
}

// NewBrokerNotifier wraps broker.
func NewBrokerNotifier(broker *pubsub.Broker[Notification]) *BrokerNotifier {
	return &BrokerNotifier{broker: broker}
}

// Notify implements Notifier.
func (b *BrokerNotifier) Notify(n Notification) {
	b.broker.Publish(pubsub.NotifyEvent, n)
}

// Error is shorthand for an error-level notification.
func Error(title, description string) Notification {
	return Notification{Level: LevelError, Title: title, Description: description}
}

// Success is shorthand for a success-level notification.
func Success(title string) Notification {
	return Notification{Level: LevelSuccess, Title: title}
}
