package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/jacklau/reposcope/internal/insight"
	"github.com/jacklau/reposcope/internal/pubsub"
)

func TestPendingNotification(t *testing.T) {
	broker := pubsub.NewBroker[insight.Notification]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := broker.Subscribe(ctx)

	broker.Publish(pubsub.Completed, insight.Notification{
		URL:      "https://github.com/octo/proj",
		Mode:     insight.ModeStandard,
		Duration: 42 * time.Millisecond,
	})

	n, ok := pendingNotification(sub)
	if !ok {
		t.Fatal("expected a buffered notification")
	}
	if n.URL != "https://github.com/octo/proj" || n.Err != "" {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestPendingNotificationEmpty(t *testing.T) {
	broker := pubsub.NewBroker[insight.Notification]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := broker.Subscribe(ctx)

	// A cache replay publishes nothing; the check must return immediately.
	if _, ok := pendingNotification(sub); ok {
		t.Error("expected no notification on an idle subscription")
	}
}
