package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishFansOutByType(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var got []Event
	d.Subscribe(EventAccountRegistered, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventAccountRegistered, AccountID: "acc-1"}))
	require.Len(t, got, 1)
	require.Equal(t, "acc-1", got[0].AccountID)
	require.NotEmpty(t, got[0].ID)
	require.False(t, got[0].Timestamp.IsZero())
}

func TestDispatcher_HandlerFailuresAreIsolated(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	calls := 0
	d.Subscribe(EventTokensRotated, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	d.Subscribe(EventTokensRotated, func(context.Context, Event) error {
		calls++
		panic("handler bug")
	})
	d.Subscribe(EventTokensRotated, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTokensRotated}))
	require.Equal(t, 3, calls)
}

func TestDispatcher_ConcurrentSubscribeAndPublish(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Subscribe(EventAccountUpdated, func(context.Context, Event) error { return nil })
		}()
		go func() {
			defer wg.Done()
			_ = d.Publish(context.Background(), Event{Type: EventAccountUpdated})
		}()
	}
	wg.Wait()
}
