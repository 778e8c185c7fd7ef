package core

import "fmt"

// Notifier is the transient notification surface ("toast" in the web client).
// Failures in the feed and composer degrade to a notification plus continued
// interactivity; nothing here is fatal.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type ConsoleNotifier struct{}

var _ Notifier = (*ConsoleNotifier)(nil)

func (ConsoleNotifier) Success(msg string) { fmt.Println("OK:", msg) }
func (ConsoleNotifier) Error(msg string) { fmt.Println("ERROR:", msg) }

// NopNotifier ignores all notifications.
type NopNotifier struct{}

var _ Notifier = (*NopNotifier)(nil)

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string) {}
