package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shaiso/Mentor/internal/domain"
)

func newTestCache(t *testing.T) (*AnalysisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, Config{TTL: time.Minute}), mr
}

func TestAnalysisCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "graphs", ""); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := domain.Analysis{
		Topic:      "graphs",
		Intent:     domain.IntentAssessment,
		Complexity: domain.ComplexitySimple,
		Source:     domain.SourceLLM,
	}
	if err := c.Set(ctx, "graphs", "", in); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Нормализация: регистр и пробелы не влияют на ключ
	out, ok, err := c.Get(ctx, "  GRAPHS ", "")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Topic != in.Topic || out.Intent != in.Intent {
		t.Errorf("unexpected analysis %+v", out)
	}

	// Документ меняет ключ
	if _, ok, _ := c.Get(ctx, "graphs", "chapter 1"); ok {
		t.Error("different document must miss")
	}
}

func TestAnalysisCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "sets", "", domain.Analysis{Topic: "sets"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if ttl := mr.TTL(c.Key("sets", "")); ttl != time.Minute {
		t.Errorf("expected ttl 1m, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, _ := c.Get(ctx, "sets", ""); ok {
		t.Error("expired entry must miss")
	}
}

func TestAnalysisCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)

	if err := mr.Set(c.Key("x", ""), "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, ok, err := c.Get(context.Background(), "x", ""); err == nil || ok {
		t.Errorf("expected decode error, got ok=%v err=%v", ok, err)
	}
}
