package notify

import (
	"context"
	"fmt"
)

type notificationStore interface {
	Save(ctx context.Context, userID, orderID, title, message string) error
}

type eventPublisher interface {
	PublishOrderNotification(ctx context.Context, userID, orderID, title, message string) error
}

// StoreAndPublishDispatcher writes the notification row, then publishes the
// delivery event. Both halves are attempted even if the first fails; callers
// treat any returned error as non-fatal.
type StoreAndPublishDispatcher struct {
	store     notificationStore
	publisher eventPublisher
}

func NewDispatcher(store notificationStore, publisher eventPublisher) *StoreAndPublishDispatcher {
	return &StoreAndPublishDispatcher{store: store, publisher: publisher}
}

func (d *StoreAndPublishDispatcher) Notify(ctx context.Context, userID, orderID, title, message string) error {
	var saveErr, pubErr error

	if d.store != nil {
		saveErr = d.store.Save(ctx, userID, orderID, title, message)
	}
	if d.publisher != nil {
		pubErr = d.publisher.PublishOrderNotification(ctx, userID, orderID, title, message)
	}

	switch {
	case saveErr != nil && pubErr != nil:
		return fmt.Errorf("save notification: %v; publish notification: %w", saveErr, pubErr)
	case saveErr != nil:
		return fmt.Errorf("save notification: %w", saveErr)
	case pubErr != nil:
		return fmt.Errorf("publish notification: %w", pubErr)
	}
	return nil
}
