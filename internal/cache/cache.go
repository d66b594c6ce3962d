package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaiso/Mentor/internal/domain"
)

const (
	defaultPrefix = "mentor:analysis:"
	defaultTTL    = time.Hour
)

// Config — конфигурация AnalysisCache.
type Config struct {
	// Prefix — префикс ключей (default: "mentor:analysis:").
	Prefix string

	// TTL — время жизни записи (default: 1h).
	TTL time.Duration
}

// AnalysisCache хранит результаты классификации в Redis.
//
// Ключ — sha256 нормализованного текста и документа.
type AnalysisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New создаёт кэш поверх существующего клиента Redis.
func New(client redis.UniversalClient, cfg Config) *AnalysisCache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &AnalysisCache{client: client, prefix: prefix, ttl: ttl}
}

// NewClient создаёт клиент Redis по адресу.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Key возвращает ключ записи для текста и документа.
func (c *AnalysisCache) Key(text, document string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))

	h := sha256.New()
	h.Write([]byte(normalized))
	h.Write([]byte{0})
	h.Write([]byte(document))
	return c.prefix + hex.EncodeToString(h.Sum(nil))
}

// Get возвращает сохранённый анализ. Второе значение false при промахе.
func (c *AnalysisCache) Get(ctx context.Context, text, document string) (domain.Analysis, bool, error) {
	data, err := c.client.Get(ctx, c.Key(text, document)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Analysis{}, false, nil
	}
	if err != nil {
		return domain.Analysis{}, false, fmt.Errorf("get analysis: %w", err)
	}

	var a domain.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.Analysis{}, false, fmt.Errorf("decode analysis: %w", err)
	}
	return a, true, nil
}

// Set сохраняет анализ с TTL.
func (c *AnalysisCache) Set(ctx context.Context, text, document string, a domain.Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(text, document), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set analysis: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (c *AnalysisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
