// Package notify delivers best-effort order notifications to users. A
// notification is stored for in-app retrieval and published as an event for
// downstream delivery channels (push, e-mail); how many channels consume it
// is not this package's concern.
package notify

import "context"

type Dispatcher interface {
	Notify(ctx context.Context, userID, orderID, title, message string) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, userID, orderID, title, message string) error

func (f DispatcherFunc) Notify(ctx context.Context, userID, orderID, title, message string) error {
	return f(ctx, userID, orderID, title, message)
}
