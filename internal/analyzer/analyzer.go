package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.opentelemetry.io/otel/attribute"

	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/llm"
	"github.com/shaiso/Mentor/internal/telemetry"
)

const (
	defaultTimeout   = 15 * time.Second
	classifyTemp     = 0.3
	classifyMaxToken = 300
)

// Cache — хранилище результатов классификации.
//
// Кэшируются только ответы модели: эвристика дешёвая, а её результат
// не должен закрепляться на время недоступности модели.
type Cache interface {
	Get(ctx context.Context, text, document string) (domain.Analysis, bool, error)
	Set(ctx context.Context, text, document string, a domain.Analysis) error
}

// Config — конфигурация Analyzer.
type Config struct {
	// Client — клиент модели (опционально; если nil — только эвристика).
	Client llm.Client

	// Cache — кэш классификаций (опционально).
	Cache Cache

	// Timeout — потолок времени вызова модели (default: 15s).
	Timeout time.Duration

	// Logger
	Logger *slog.Logger
}

// Analyzer превращает текст запроса в domain.Analysis.
type Analyzer struct {
	client  llm.Client
	cache   Cache
	timeout time.Duration
	logger  *slog.Logger
}

// New создаёт Analyzer.
func New(cfg Config) *Analyzer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Analyzer{
		client:  cfg.Client,
		cache:   cfg.Cache,
		timeout: timeout,
		logger:  logger,
	}
}

// Analyze классифицирует запрос. Никогда не возвращает ошибку:
// при любой проблеме с моделью результат строится эвристикой.
//
// Блок документа вырезается из текста; явно переданный document
// имеет приоритет над встроенным блоком.
func (a *Analyzer) Analyze(ctx context.Context, text, document string) domain.Analysis {
	ctx, span := telemetry.StartSpan(ctx, "analyzer.Analyze")
	defer span.End()

	clean, embedded := ExtractDocument(text)
	if strings.TrimSpace(document) == "" {
		document = embedded
	}
	document = strings.TrimSpace(document)

	logger := telemetry.FromContextOr(ctx, a.logger)

	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx, clean, document)
		if err != nil {
			logger.Warn("analysis cache lookup failed", "error", err)
		}
		telemetry.ObserveCacheLookup(ok)
		if ok {
			cached.Source = domain.SourceCache
			cached.Text = clean
			cached.Document = document
			span.SetAttributes(attribute.String("analysis.source", string(cached.Source)))
			return cached
		}
	}

	result, err := a.classify(ctx, clean, document)
	if err != nil {
		logger.Warn("analysis fallback to heuristic", "error", err)
		telemetry.IncAnalysisFallback()
		result = Heuristic(clean, document)
	} else if a.cache != nil {
		if err := a.cache.Set(ctx, clean, document, result); err != nil {
			logger.Warn("analysis cache store failed", "error", err)
		}
	}

	result.Text = clean
	result.Document = document
	span.SetAttributes(
		attribute.String("analysis.source", string(result.Source)),
		attribute.String("analysis.intent", string(result.Intent)),
	)
	return result
}

// classification — ожидаемая форма ответа модели.
type classification struct {
	Topic                string `mapstructure:"topic"`
	Intent               string `mapstructure:"intent"`
	Complexity           string `mapstructure:"complexity"`
	HasTimeConstraint    bool   `mapstructure:"has_time_constraint"`
	NeedsPersonalization bool   `mapstructure:"needs_personalization"`
	HasUploadedContent   bool   `mapstructure:"has_uploaded_content"`
}

// classify вызывает модель и разбирает ответ.
func (a *Analyzer) classify(ctx context.Context, text, document string) (domain.Analysis, error) {
	if a.client == nil {
		return domain.Analysis{}, ErrNoClient
	}

	prompt, err := renderPrompt(text, document)
	if err != nil {
		return domain.Analysis{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: classifyTemp,
		MaxTokens:   classifyMaxToken,
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("classify: %w", err)
	}

	return ParseClassification(resp.Content, document != "")
}

// ParseClassification разбирает ответ модели в domain.Analysis.
//
// Снимает обёртку ```json ... ```, вырезает первый JSON-объект из текста
// и требует непустые topic и известный intent.
func ParseClassification(content string, hasDocument bool) (domain.Analysis, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return domain.Analysis{}, err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	var c classification
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &c,
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if err := decoder.Decode(fields); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	topic := strings.TrimSpace(c.Topic)
	if topic == "" {
		return domain.Analysis{}, fmt.Errorf("%w: topic", ErrMissingField)
	}
	if strings.TrimSpace(c.Intent) == "" {
		return domain.Analysis{}, fmt.Errorf("%w: intent", ErrMissingField)
	}
	intent, ok := domain.ParseIntent(c.Intent)
	if !ok {
		return domain.Analysis{}, fmt.Errorf("%w: %q", ErrUnknownIntent, c.Intent)
	}

	return domain.Analysis{
		Topic:                topic,
		Intent:               intent,
		Complexity:           domain.ParseComplexity(c.Complexity),
		HasDocument:          hasDocument || c.HasUploadedContent,
		HasTimeConstraint:    c.HasTimeConstraint,
		NeedsPersonalization: c.NeedsPersonalization,
		Source:               domain.SourceLLM,
	}, nil
}

// extractJSONObject снимает code fence и возвращает подстроку от первой
// '{' до последней '}'.
func extractJSONObject(content string) (string, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrMalformedOutput
	}
	return s[start : end+1], nil
}
