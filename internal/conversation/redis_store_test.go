package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"finbot/internal/testutil"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, ttl), mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	key := Key{Actor: 42, Flow: "add_card"}

	t.Run("round_trip", func(t *testing.T) {
		s, _ := setupRedisStore(t, time.Minute)
		err := s.Put(ctx, key, &State{FlowID: "add_card", Step: 2, Fields: Fields{"name": "Visa", "closing_day": 10}, UpdatedAt: time.Now()})
		testutil.AssertNoError(t, err)

		st, err := s.Get(ctx, key)
		testutil.AssertNoError(t, err)
		if st == nil || st.Step != 2 {
			t.Fatalf("unexpected state %+v", st)
		}
		if st.Fields.Int("closing_day") != 10 {
			t.Errorf("expected closing day to survive JSON, got %v", st.Fields["closing_day"])
		}
	})

	t.Run("missing_key", func(t *testing.T) {
		s, _ := setupRedisStore(t, time.Minute)
		st, err := s.Get(ctx, key)
		testutil.AssertNoError(t, err)
		if st != nil {
			t.Error("expected nil state")
		}
	})

	t.Run("ttl_expiry", func(t *testing.T) {
		s, mr := setupRedisStore(t, time.Minute)
		_ = s.Put(ctx, key, &State{FlowID: "add_card", UpdatedAt: time.Now()})

		mr.FastForward(2 * time.Minute)

		st, err := s.Get(ctx, key)
		testutil.AssertNoError(t, err)
		if st != nil {
			t.Error("expected state to expire")
		}
	})

	t.Run("delete", func(t *testing.T) {
		s, _ := setupRedisStore(t, time.Minute)
		_ = s.Put(ctx, key, &State{FlowID: "add_card", UpdatedAt: time.Now()})
		testutil.AssertNoError(t, s.Delete(ctx, key))

		st, _ := s.Get(ctx, key)
		if st != nil {
			t.Error("expected state to be deleted")
		}
	})

	t.Run("drives_machine", func(t *testing.T) {
		s, _ := setupRedisStore(t, time.Minute)
		var got Fields
		m := NewMachine(s, testFlow(func(_ context.Context, _ int64, f Fields) (string, error) {
			got = f
			return "ok", nil
		}))

		_, _ = m.Start(ctx, 9, "wizard", nil)
		_, _ = m.Handle(ctx, 9, "Card")
		_, _ = m.Handle(ctx, 9, "12")
		_, err := m.Handle(ctx, 9, "20")
		testutil.AssertNoError(t, err)

		if got.Int("closing") != 12 || got.Int("due") != 20 {
			t.Errorf("unexpected fields %v", got)
		}
	})
}
