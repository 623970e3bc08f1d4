package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	calls int
	err   error
}

func (f *fakeStore) Save(ctx context.Context, userID, orderID, title, message string) error {
	f.calls++
	return f.err
}

type fakePublisher struct {
	calls int
	err   error
}

func (f *fakePublisher) PublishOrderNotification(ctx context.Context, userID, orderID, title, message string) error {
	f.calls++
	return f.err
}

func TestDispatcher_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and publishes", func(t *testing.T) {
		store := &fakeStore{}
		pub := &fakePublisher{}
		d := NewDispatcher(store, pub)

		require.NoError(t, d.Notify(ctx, "u1", "o1", "Order Approved", "msg"))
		assert.Equal(t, 1, store.calls)
		assert.Equal(t, 1, pub.calls)
	})

	t.Run("still publishes when store fails", func(t *testing.T) {
		store := &fakeStore{err: errors.New("insert failed")}
		pub := &fakePublisher{}
		d := NewDispatcher(store, pub)

		err := d.Notify(ctx, "u1", "o1", "t", "m")
		require.Error(t, err)
		assert.Equal(t, 1, pub.calls, "publish must be attempted despite store failure")
	})

	t.Run("reports publish failure", func(t *testing.T) {
		pubErr := errors.New("broker gone")
		store := &fakeStore{}
		pub := &fakePublisher{err: pubErr}
		d := NewDispatcher(store, pub)

		err := d.Notify(ctx, "u1", "o1", "t", "m")
		require.ErrorIs(t, err, pubErr)
		assert.Equal(t, 1, store.calls)
	})

	t.Run("combines both failures", func(t *testing.T) {
		store := &fakeStore{err: errors.New("db down")}
		pub := &fakePublisher{err: errors.New("broker down")}
		d := NewDispatcher(store, pub)

		err := d.Notify(ctx, "u1", "o1", "t", "m")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
		assert.Contains(t, err.Error(), "broker down")
	})

	t.Run("nil halves are skipped", func(t *testing.T) {
		d := NewDispatcher(nil, nil)
		require.NoError(t, d.Notify(ctx, "u1", "o1", "t", "m"))
	})
}
