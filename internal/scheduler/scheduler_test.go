package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"finbot/internal/conversation"
)

func TestScheduler_Add(t *testing.T) {
	s := New(zap.NewNop().Sugar())

	if err := s.Add(Job{Name: "ok", Schedule: "@every 1m", Run: func() {}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := s.Add(Job{Name: "bad", Schedule: "not a schedule", Run: func() {}}); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestScheduler_RunsJob(t *testing.T) {
	s := New(zap.NewNop().Sugar())
	ran := make(chan struct{}, 1)

	err := s.Add(Job{Name: "tick", Schedule: "@every 1s", Run: func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestScheduler_RecoversPanics(t *testing.T) {
	s := New(zap.NewNop().Sugar())
	ran := make(chan struct{}, 2)

	_ = s.Add(Job{Name: "panics", Schedule: "@every 1s", Run: func() {
		select {
		case ran <- struct{}{}:
		default:
		}
		panic("boom")
	}})
	s.Start()

	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(3 * time.Second):
			t.Fatal("job stopped running after a panic")
		}
	}
	<-s.Stop().Done()
}

func TestConversationSweepJob(t *testing.T) {
	ctx := context.Background()
	store := conversation.NewMemoryStore(time.Minute)
	_ = store.Put(ctx, conversation.Key{Actor: 1, Flow: "add_card"}, &conversation.State{
		UpdatedAt: time.Now().Add(-time.Hour),
	})
	_ = store.Put(ctx, conversation.Key{Actor: 2, Flow: "login"}, &conversation.State{
		UpdatedAt: time.Now(),
	})

	core, logs := observer.New(zap.InfoLevel)
	job := ConversationSweepJob(store, "@every 5m", zap.New(core).Sugar())
	job.Run()

	if store.Len() != 1 {
		t.Errorf("expected only the fresh entry to remain, %d entries left", store.Len())
	}

	entries := logs.FilterMessage("swept abandoned conversations").All()
	if len(entries) != 1 {
		t.Fatalf("expected one sweep log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["removed"] != int64(1) || fields["active"] != int64(1) {
		t.Errorf("unexpected sweep fields %v", fields)
	}
}
