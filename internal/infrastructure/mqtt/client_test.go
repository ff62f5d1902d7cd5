package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atticlabs/attic/internal/infrastructure/config"
)

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		got  string
		want string
	}{
		{topics.SystemStatus(), "attic/system/status"},
		{topics.SnapshotStatus("abc-123"), "attic/snapshot/abc-123/status"},
		{topics.ImportEvent("import_completed"), "attic/event/import_completed"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("topic: got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{} // Disconnected client, validation runs before connection check

	if err := c.Publish("", []byte("x"), 0, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}

	if err := c.Publish("attic/test", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3: got %v, want ErrInvalidQoS", err)
	}

	huge := []byte(strings.Repeat("a", maxPayloadSize+1))
	if err := c.Publish("attic/test", huge, 0, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversized payload: got %v, want ErrPublishFailed", err)
	}

	if err := c.Publish("attic/test", []byte("x"), 0, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected client: got %v, want ErrNotConnected", err)
	}
}

func TestPublishHelpers_Disconnected(t *testing.T) {
	c := &Client{}
	topics := Topics{}

	if err := c.PublishRetained(topics.SnapshotStatus("abc-123"), []byte("{}")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishRetained: got %v, want ErrNotConnected", err)
	}
	if err := c.PublishEvent(topics.ImportEvent("import_failed"), []byte("{}")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishEvent: got %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := &Client{}

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck: got %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_CancelledContext(t *testing.T) {
	c := &Client{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck: got %v, want context.Canceled", err)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "broker.local",
			Port:     8883,
			TLS:      true,
			ClientID: "attic-test",
		},
		Auth: config.MQTTAuthConfig{Username: "user", Password: "pass"},
		QoS:  1,
	}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
	}
	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme: got %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.ClientID != "attic-test" {
		t.Errorf("client id: got %q", opts.ClientID)
	}
	if opts.Username != "user" {
		t.Errorf("username: got %q", opts.Username)
	}
	if opts.TLSConfig == nil {
		t.Error("TLS config should be set when broker.tls is true")
	}
}
