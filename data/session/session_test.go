package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/risk_analysis_bot/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
)

type store interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, s model.Session) error
	DeleteSession(ctx context.Context, key string) error
}

func newRedisStore(t *testing.T, expiration time.Duration) (*RedisSession, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisSession(client, expiration), mr
}

func testStoreRoundTrip(t *testing.T, s store) {
	ctx := context.Background()

	if _, err := s.GetSession(ctx, "42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSession() on empty store error = %v, want ErrNotFound", err)
	}

	sess := model.NewSession()
	sess.Selection.Add("NVDA")
	sess.Selection.Add("AMD")
	sess.Risk = 12
	sess.Screen = model.ScreenPortfolio

	if err := s.SetSession(ctx, "42", sess); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	got, err := s.GetSession(ctx, "42")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if diff := cmp.Diff([]string{"AMD", "NVDA"}, got.Selection.SortedList()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	if got.Risk != 12 || got.Screen != model.ScreenPortfolio {
		t.Errorf("got risk=%d screen=%s, want 12 portfolio", got.Risk, got.Screen)
	}

	// the stored copy is independent of the caller's selection
	sess.Selection.Add("TSLA")
	got, _ = s.GetSession(ctx, "42")
	if got.Selection.Contains("TSLA") {
		t.Errorf("store shares selection with the caller")
	}

	if err := s.DeleteSession(ctx, "42"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := s.GetSession(ctx, "42"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemorySession_RoundTrip(t *testing.T) {
	testStoreRoundTrip(t, NewMemorySession(time.Hour))
}

func TestRedisSession_RoundTrip(t *testing.T) {
	s, _ := newRedisStore(t, time.Hour)
	testStoreRoundTrip(t, s)
}

func TestMemorySession_Expiration(t *testing.T) {
	now := time.Date(2025, time.November, 12, 10, 0, 0, 0, time.UTC)
	m := NewMemorySession(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.SetSession(ctx, "1", model.NewSession())
	_ = m.SetSession(ctx, "2", model.NewSession())

	now = now.Add(30 * time.Second)
	_ = m.SetSession(ctx, "2", model.NewSession()) // refreshes the deadline

	now = now.Add(45 * time.Second)
	if _, err := m.GetSession(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession(1) error = %v, want ErrNotFound after expiration", err)
	}
	if _, err := m.GetSession(ctx, "2"); err != nil {
		t.Errorf("GetSession(2) error = %v, want refreshed session", err)
	}

	now = now.Add(time.Minute)
	if err := m.EvictExpired(ctx); err != nil {
		t.Fatalf("EvictExpired() error = %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after eviction, want 0", m.Len())
	}
}

func TestRedisSession_Expiration(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	if err := s.SetSession(ctx, "7", model.NewSession()); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "7"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := s.GetSession(ctx, "7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession() error = %v, want ErrNotFound after expiration", err)
	}
}

func TestRedisSession_CorruptedValue(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)

	if err := mr.Set(keyPrefix+"9", "{not json"); err != nil {
		t.Fatalf("miniredis Set error = %v", err)
	}

	_, err := s.GetSession(context.Background(), "9")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession() error = %v, want decode error", err)
	}
}
