package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finbot/internal/bot"
	"finbot/internal/config"
	"finbot/internal/conversation"
	"finbot/internal/scheduler"
)

func TestNewEngine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop().Sugar()
	dispatcher := bot.NewDispatcher(context.Background(), nil, nil, log)
	engine := newEngine(&config.Config{}, dispatcher, log)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK, `"status":"ok"`},
		{"swagger spec", http.MethodGet, "/swagger/doc.json", http.StatusOK, "/telegram/webhook"},
		{"swagger ui", http.MethodGet, "/swagger/index.html", http.StatusOK, "swagger"},
		{"webhook without secret", http.MethodPost, "/telegram/webhook", http.StatusServiceUnavailable, "WEBHOOK_NOT_CONFIGURED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, http.NoBody))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestNewConversationStore(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop().Sugar()
	key := conversation.Key{Actor: 1, Flow: "add_card"}

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{RedisURL: "redis://" + mr.Addr(), ConversationTTL: time.Minute}

		store, closeStore, err := newConversationStore(cfg, scheduler.New(log), log)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.(*conversation.RedisStore); !ok {
			t.Fatalf("expected redis store, got %T", store)
		}
		if err := store.Put(ctx, key, &conversation.State{FlowID: "add_card", UpdatedAt: time.Now()}); err != nil {
			t.Fatalf("unexpected put error: %v", err)
		}
		if !mr.Exists("finbot:conversation:" + key.String()) {
			t.Error("expected state to be written to redis")
		}

		if err := closeStore(); err != nil {
			t.Fatalf("unexpected close error: %v", err)
		}
		if _, err := store.Get(ctx, key); err == nil {
			t.Error("expected error after the client is closed")
		}
	})

	t.Run("invalid redis url", func(t *testing.T) {
		cfg := &config.Config{RedisURL: "not-a-url"}

		if _, _, err := newConversationStore(cfg, scheduler.New(log), log); err == nil {
			t.Error("expected error for invalid REDIS_URL")
		}
	})

	t.Run("memory", func(t *testing.T) {
		cfg := &config.Config{ConversationTTL: time.Minute, SweepSchedule: "@every 5m"}

		store, closeStore, err := newConversationStore(cfg, scheduler.New(log), log)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.(*conversation.MemoryStore); !ok {
			t.Fatalf("expected memory store, got %T", store)
		}
		if err := closeStore(); err != nil {
			t.Errorf("unexpected close error: %v", err)
		}
	})

	t.Run("invalid sweep schedule", func(t *testing.T) {
		cfg := &config.Config{SweepSchedule: "whenever"}

		if _, _, err := newConversationStore(cfg, scheduler.New(log), log); err == nil {
			t.Error("expected error for invalid schedule")
		}
	})
}
