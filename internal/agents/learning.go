package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/llm"
	"github.com/shaiso/Mentor/internal/telemetry"
)

const (
	// maxResources — сколько материалов попадает в ответ.
	maxResources = 5

	// documentLimit — сколько символов документа уходит в модель.
	documentLimit = 3000

	maxStudyHours = 8
	baseStudyHrs  = 2
)

// hoursByType — вклад материала в оценку времени.
var hoursByType = map[string]int{
	"video":   1,
	"article": 1,
	"book":    3,
}

// LearningConfig — конфигурация обработчика learning.
type LearningConfig struct {
	// Client — модель для подбора статей и разбора документа (опционально).
	Client llm.Client

	Logger *slog.Logger
}

// Learning подбирает учебные материалы по теме.
//
// Без клиента модели работает на шаблонах платформ. Ошибки модели
// не считаются ошибкой узла: шаблонный набор всегда доступен.
type Learning struct {
	client llm.Client
	logger *slog.Logger
}

// NewLearning создаёт обработчик learning.
func NewLearning(cfg LearningConfig) *Learning {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Learning{client: cfg.Client, logger: logger}
}

// Node возвращает узел обработчика.
func (l *Learning) Node() domain.NodeID { return domain.NodeLearning }

// Invoke подбирает материалы.
func (l *Learning) Invoke(ctx context.Context, in *Input) (domain.Result, error) {
	logger := telemetry.FromContextOr(ctx, l.logger)
	topic := in.Topic()

	var docTopics []string
	if in.Analysis.Document != "" {
		docTopics = l.analyzeDocument(ctx, logger, topic, in.Analysis.Document)
		if len(docTopics) > 0 {
			topic = docTopics[0]
		}
	}

	resources := curatedResources(topic)
	if l.client != nil {
		suggested, err := l.suggestArticles(ctx, topic)
		if err != nil {
			logger.Warn("article suggestions unavailable", "error", err)
		} else if len(suggested) > 0 {
			resources = append(suggested, resources...)
		}
	}

	if p, ok := personalizationOf(in); ok {
		resources = rankResources(resources, p)
	}
	if len(resources) > maxResources {
		resources = resources[:maxResources]
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &domain.LearningResult{
		Topic:          topic,
		Resources:      resources,
		Difficulty:     EstimateDifficulty(topic),
		EstimatedTime:  fmt.Sprintf("%d hours", EstimateStudyHours(resources)),
		DocumentTopics: docTopics,
	}, nil
}

// EstimateStudyHours оценивает время изучения набора материалов.
func EstimateStudyHours(resources []domain.Resource) int {
	hours := baseStudyHrs
	for _, r := range resources {
		hours += hoursByType[r.Type]
	}
	return min(hours, maxStudyHours)
}

// curatedResources — шаблонный набор материалов по теме.
func curatedResources(topic string) []domain.Resource {
	slug := slugify(topic)
	compact := strings.ReplaceAll(slug, "-", "")

	return []domain.Resource{
		{
			Title:       fmt.Sprintf("%s Tutorial for Beginners - Full Course", topic),
			Platform:    "YouTube",
			Type:        "video",
			URL:         "https://www.youtube.com/results?search_query=" + compact + "+tutorial",
			Description: fmt.Sprintf("Complete tutorial covering %s fundamentals, intermediate concepts and practical examples", topic),
		},
		{
			Title:       fmt.Sprintf("Complete %s Tutorial - GeeksforGeeks", topic),
			Platform:    "GeeksforGeeks",
			Type:        "article",
			URL:         "https://www.geeksforgeeks.org/" + slug + "-tutorial/",
			Description: fmt.Sprintf("Comprehensive %s tutorial with examples, code snippets and practice problems", topic),
		},
		{
			Title:       fmt.Sprintf("%s Interview Questions", topic),
			Platform:    "GeeksforGeeks",
			Type:        "article",
			URL:         "https://www.geeksforgeeks.org/" + slug + "-interview-questions/",
			Description: fmt.Sprintf("Common %s questions and worked solutions", topic),
		},
		{
			Title:       fmt.Sprintf("Learn %s in One Video", topic),
			Platform:    "YouTube",
			Type:        "video",
			URL:         "https://www.youtube.com/results?search_query=learn+" + compact,
			Description: fmt.Sprintf("Comprehensive overview of %s concepts for quick learning", topic),
		},
		{
			Title:       fmt.Sprintf("%s: A Practical Textbook", topic),
			Platform:    "Google Books",
			Type:        "book",
			URL:         "https://www.google.com/books?q=" + compact,
			Description: "Educational textbook",
		},
	}
}

// rankResources упорядочивает материалы по предпочтениям студента.
func rankResources(resources []domain.Resource, p *domain.PersonalizationResult) []domain.Resource {
	rank := make(map[string]int, len(p.PreferredTypes))
	for i, t := range p.PreferredTypes {
		rank[t] = i
	}

	ranked := make([]domain.Resource, len(resources))
	copy(ranked, resources)
	for i := range ranked {
		pos, ok := rank[ranked[i].Type]
		switch {
		case ok && pos == 0:
			ranked[i].Priority = "high"
			ranked[i].Reasoning = fmt.Sprintf("Matches your %s learning style", p.Profile.LearningStyle)
		case ok && pos == 1:
			ranked[i].Priority = "medium"
		default:
			ranked[i].Priority = "low"
		}
	}

	order := map[string]int{"high": 0, "medium": 1, "low": 2}
	sort.SliceStable(ranked, func(i, j int) bool {
		return order[ranked[i].Priority] < order[ranked[j].Priority]
	})
	return ranked
}

// suggestion — статья, предложенная моделью.
type suggestion struct {
	Title       string `mapstructure:"title"`
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
}

const suggestPrompt = `Recommend 2 GeeksforGeeks articles for learning %q.
Return ONLY a JSON array of objects with keys "title", "url" (starting with https://www.geeksforgeeks.org/) and "description".`

// suggestArticles просит модель предложить статьи.
func (l *Learning) suggestArticles(ctx context.Context, topic string) ([]domain.Resource, error) {
	resp, err := l.client.Generate(ctx, llm.Request{
		Prompt:      fmt.Sprintf(suggestPrompt, topic),
		Temperature: 0.7,
		MaxTokens:   600,
	})
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := json.Unmarshal([]byte(stripFence(resp.Content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSuggestion, err)
	}

	var items []suggestion
	if err := mapstructure.WeakDecode(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSuggestion, err)
	}

	out := make([]domain.Resource, 0, 2)
	for _, it := range items {
		if it.Title == "" || !strings.HasPrefix(it.URL, "https://") {
			continue
		}
		out = append(out, domain.Resource{
			Title:       it.Title,
			Platform:    "GeeksforGeeks",
			Type:        "article",
			URL:         it.URL,
			Description: it.Description,
		})
		if len(out) == 2 {
			break
		}
	}
	return out, nil
}

// documentAnalysis — разбор документа моделью.
type documentAnalysis struct {
	KeyTopics []string `mapstructure:"key_topics"`
}

const documentPrompt = `Analyze the provided study material and return ONLY a JSON object with "key_topics": an array of at most 3 main topics.

Content:
%s`

// analyzeDocument извлекает ключевые темы документа.
// Без модели или при ошибке тема документа совпадает с темой запроса.
func (l *Learning) analyzeDocument(ctx context.Context, logger *slog.Logger, topic, document string) []string {
	if l.client == nil {
		return []string{topic}
	}

	runes := []rune(document)
	if len(runes) > documentLimit {
		document = string(runes[:documentLimit]) + "..."
	}

	resp, err := l.client.Generate(ctx, llm.Request{
		Prompt:      fmt.Sprintf(documentPrompt, document),
		Temperature: 0.3,
		MaxTokens:   400,
	})
	if err != nil {
		logger.Warn("document analysis unavailable", "error", err)
		return []string{topic}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFence(resp.Content)), &raw); err != nil {
		logger.Warn("document analysis malformed", "error", err)
		return []string{topic}
	}

	var da documentAnalysis
	if err := mapstructure.WeakDecode(raw, &da); err != nil || len(da.KeyTopics) == 0 {
		return []string{topic}
	}
	if len(da.KeyTopics) > 3 {
		da.KeyTopics = da.KeyTopics[:3]
	}
	return da.KeyTopics
}

// stripFence снимает обёртку ```json ... ```.
func stripFence(content string) string {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
