package amqp

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestClient_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL not set, skipping RabbitMQ tests")
	}

	queue := "dauvest_test_" + uuid.NewString()[:8]
	client, err := NewClient(url, "dauvest_test", queue)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan *LedgerChangeMessage, 1)
	go func() {
		_ = client.ConsumeLedgerChanges(ctx, func(_ context.Context, msg *LedgerChangeMessage) error {
			received <- msg
			return nil
		})
	}()

	if err := client.PublishLedgerChange(ctx, NamespaceGoals, OpUpdate, "goal-1"); err != nil {
		t.Fatalf("PublishLedgerChange: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Namespace != NamespaceGoals || msg.Operation != OpUpdate || msg.ID != "goal-1" {
			t.Errorf("received %+v", msg)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}
