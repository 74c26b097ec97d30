package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-buttonnode/internal/node"
)

func mqttTestConfig() config.MQTTConfig {
	cfg := config.Default().MQTT
	cfg.Broker.Host = "127.0.0.1"
	return cfg
}

// wireLED builds an executor with a handler on "led" that records payloads.
func wireLED(t *testing.T, s *Session) (*Executor, *[][]byte) {
	t.Helper()
	ctx := context.Background()
	sub, err := s.CreateSubscription(ctx, "led")
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	ex, err := s.CreateExecutor(ctx, 1)
	if err != nil {
		t.Fatalf("CreateExecutor() error = %v", err)
	}

	var got [][]byte
	if err := ex.AddSubscription(sub, func(p []byte) error {
		got = append(got, p)
		return nil
	}); err != nil {
		t.Fatalf("AddSubscription() error = %v", err)
	}
	return ex.(*Executor), &got
}

func TestExecutor_HandlersOnlyRunInSpin(t *testing.T) {
	s, lb := setupSession(t, Options{InboxSize: 4}, "")
	ex, got := wireLED(t, s)

	_ = lb.Publish("led", []byte{7}, 1, false)
	if len(*got) != 0 {
		t.Fatal("handler ran on the publishing goroutine")
	}

	if err := ex.SpinSome(context.Background(), 50*time.Millisecond); err != nil {
		t.Fatalf("SpinSome() error = %v", err)
	}
	if len(*got) != 1 || (*got)[0][0] != 7 {
		t.Errorf("delivered %v, want [[7]]", *got)
	}
}

func TestExecutor_SpinDeliversNewestPerTopic(t *testing.T) {
	s, lb := setupSession(t, Options{InboxSize: 4}, "")
	ex, got := wireLED(t, s)

	for _, v := range []byte{1, 2, 3} {
		_ = lb.Publish("led", []byte{v}, 1, false)
	}
	_ = ex.SpinSome(context.Background(), 10*time.Millisecond)

	if len(*got) != 1 || (*got)[0][0] != 3 {
		t.Errorf("delivered %v, want only the newest [[3]]", *got)
	}
}

func TestExecutor_SpinBoundedWhenIdle(t *testing.T) {
	s, _ := setupSession(t, Options{}, "")
	ex, _ := wireLED(t, s)

	start := time.Now()
	if err := ex.SpinSome(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("SpinSome() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("SpinSome() took %v, want ~20ms", elapsed)
	}
}

func TestExecutor_SpinFailsWhenDisconnected(t *testing.T) {
	s, lb := setupSession(t, Options{}, "")
	ex, got := wireLED(t, s)

	_ = lb.Publish("led", []byte{1}, 1, false)
	lb.SetConnected(false)

	err := ex.SpinSome(context.Background(), 10*time.Millisecond)
	if !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("SpinSome() error = %v, want ErrNotConnected", err)
	}
	if len(*got) != 1 {
		t.Error("pending message not delivered before reporting the link failure")
	}
}

func TestExecutor_HandlerErrorIsCounted(t *testing.T) {
	s, lb := setupSession(t, Options{}, "")
	ctx := context.Background()
	sub, _ := s.CreateSubscription(ctx, "led")
	ex, _ := s.CreateExecutor(ctx, 1)
	_ = ex.AddSubscription(sub, func([]byte) error { return node.ErrInvalidPayload })

	_ = lb.Publish("led", []byte{1, 2}, 1, false)
	if err := ex.SpinSome(ctx, 10*time.Millisecond); err != nil {
		t.Fatalf("SpinSome() error = %v, want handler errors to stay soft", err)
	}
	if stats := ex.(*Executor).Stats(); stats.HandlerErrors != 1 || stats.Delivered != 1 {
		t.Errorf("Stats() = %+v, want one delivered with one error", stats)
	}
}

func TestExecutor_HandleLimit(t *testing.T) {
	s, _ := setupSession(t, Options{}, "")
	ctx := context.Background()
	led, _ := s.CreateSubscription(ctx, "led")
	other, _ := s.CreateSubscription(ctx, "other")
	ex, _ := s.CreateExecutor(ctx, 1)
	noop := func([]byte) error { return nil }

	if err := ex.AddSubscription(led, noop); err != nil {
		t.Fatalf("first AddSubscription() error = %v", err)
	}
	if err := ex.AddSubscription(other, noop); !errors.Is(err, ErrExecutorFull) {
		t.Errorf("second AddSubscription() error = %v, want ErrExecutorFull", err)
	}
	// Re-registering the same topic reuses its handle.
	if err := ex.AddSubscription(led, noop); err != nil {
		t.Errorf("re-register error = %v", err)
	}
}

func TestExecutor_RejectsForeignSubscription(t *testing.T) {
	a, _ := setupSession(t, Options{}, "")
	b, _ := setupSession(t, Options{}, "")
	ctx := context.Background()

	sub, _ := a.CreateSubscription(ctx, "led")
	ex, _ := b.CreateExecutor(ctx, 1)
	if err := ex.AddSubscription(sub, func([]byte) error { return nil }); !errors.Is(err, ErrForeignSubscription) {
		t.Errorf("AddSubscription() error = %v, want ErrForeignSubscription", err)
	}
}

func TestExecutor_InvalidHandles(t *testing.T) {
	s, _ := setupSession(t, Options{}, "")
	if _, err := s.CreateExecutor(context.Background(), 0); !errors.Is(err, ErrInvalidHandles) {
		t.Errorf("CreateExecutor(0) error = %v, want ErrInvalidHandles", err)
	}
}
