package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/llm"
)

// stubClient возвращает заранее заданный ответ или ошибку.
type stubClient struct {
	content string
	err     error
	delay   time.Duration

	mu    sync.Mutex
	calls int
	last  llm.Request
}

func (s *stubClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	s.calls++
	s.last = req
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content}, nil
}

// memCache — кэш в памяти для тестов.
type memCache struct {
	mu    sync.Mutex
	items map[string]domain.Analysis
}

func (m *memCache) Get(_ context.Context, text, document string) (domain.Analysis, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[text+"|"+document]
	return a, ok, nil
}

func (m *memCache) Set(_ context.Context, text, document string, a domain.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]domain.Analysis)
	}
	m.items[text+"|"+document] = a
	return nil
}

func TestAnalyze_LLM(t *testing.T) {
	client := &stubClient{content: "```json\n" +
		`{"topic": "Linear Algebra", "intent": "resource_finding", "complexity": "complex", ` +
		`"has_time_constraint": "true", "needs_personalization": false, "has_uploaded_content": false}` +
		"\n```"}
	a := New(Config{Client: client})

	got := a.Analyze(context.Background(), "Find me videos on linear algebra", "")

	if got.Source != domain.SourceLLM {
		t.Fatalf("expected llm source, got %s", got.Source)
	}
	if got.Topic != "Linear Algebra" || got.Intent != domain.IntentResourceFinding {
		t.Errorf("unexpected analysis: %+v", got)
	}
	if got.Complexity != domain.ComplexityComplex {
		t.Errorf("expected complex, got %s", got.Complexity)
	}
	// "true" строкой приводится к bool
	if !got.HasTimeConstraint {
		t.Error("expected weakly typed has_time_constraint to decode")
	}
	if client.last.Temperature != 0.3 || client.last.MaxTokens != 300 {
		t.Errorf("unexpected request params: %+v", client.last)
	}
}

// Scenario A: эвристика на типичном запросе.
func TestAnalyze_HeuristicScenario(t *testing.T) {
	a := New(Config{})

	got := a.Analyze(context.Background(), "Help me prepare for my Machine Learning exam", "")

	if got.Topic != "machine learning exam" {
		t.Errorf("expected topic %q, got %q", "machine learning exam", got.Topic)
	}
	if got.Intent != domain.IntentStudyPlanning {
		t.Errorf("expected STUDY_PLANNING, got %s", got.Intent)
	}
	if got.Complexity != domain.ComplexityModerate || !got.NeedsPersonalization {
		t.Errorf("unexpected heuristic defaults: %+v", got)
	}
	if got.Source != domain.SourceHeuristic {
		t.Errorf("expected heuristic source, got %s", got.Source)
	}
}

// Scenario C: мусор от модели.
func TestAnalyze_GarbageOutputFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		client *stubClient
	}{
		{"not json", &stubClient{content: "Sure! The topic is probably calculus :)"}},
		{"missing topic", &stubClient{content: `{"intent": "study_planning"}`}},
		{"missing intent", &stubClient{content: `{"topic": "calculus"}`}},
		{"unknown intent", &stubClient{content: `{"topic": "calculus", "intent": "dance"}`}},
		{"wrong type", &stubClient{content: `{"topic": {"a": 1}, "intent": "assessment"}`}},
		{"service error", &stubClient{err: errors.New("503")}},
		{"timeout", &stubClient{content: `{"topic":"x","intent":"assessment"}`, delay: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(Config{Client: tt.client, Timeout: 20 * time.Millisecond})

			got := a.Analyze(context.Background(), "Help me with Calculus derivatives!", "")

			if got.Source != domain.SourceHeuristic {
				t.Fatalf("expected heuristic, got %s", got.Source)
			}
			if got.Topic != "calculus derivatives" {
				t.Errorf("unexpected topic %q", got.Topic)
			}
		})
	}
}

func TestAnalyze_ExtractsDocument(t *testing.T) {
	client := &stubClient{content: `{"topic":"thermodynamics","intent":"study_planning"}`}
	a := New(Config{Client: client})

	text := "Summarize this " + DocumentStart + "Entropy always increases." + DocumentEnd + " for my exam"
	got := a.Analyze(context.Background(), text, "")

	if !got.HasDocument {
		t.Error("expected HasDocument")
	}
	if got.Document != "Entropy always increases." {
		t.Errorf("unexpected document %q", got.Document)
	}
	if got.Text != "Summarize this for my exam" {
		t.Errorf("unexpected clean text %q", got.Text)
	}
	if strings.Contains(client.last.Prompt, DocumentStart) {
		t.Error("sentinel leaked into prompt")
	}

	// Явный document важнее встроенного
	got = a.Analyze(context.Background(), text, "explicit body")
	if got.Document != "explicit body" {
		t.Errorf("explicit document should win, got %q", got.Document)
	}
}

func TestAnalyze_Cache(t *testing.T) {
	client := &stubClient{content: `{"topic":"graphs","intent":"assessment"}`}
	cache := &memCache{}
	a := New(Config{Client: client, Cache: cache})

	first := a.Analyze(context.Background(), "quiz me on graphs", "")
	second := a.Analyze(context.Background(), "quiz me on graphs", "")

	if client.calls != 1 {
		t.Errorf("expected 1 llm call, got %d", client.calls)
	}
	if first.Source != domain.SourceLLM || second.Source != domain.SourceCache {
		t.Errorf("unexpected sources: %s, %s", first.Source, second.Source)
	}
	if second.Topic != "graphs" {
		t.Errorf("unexpected cached topic %q", second.Topic)
	}

	// Эвристика не кэшируется
	failing := New(Config{Client: &stubClient{err: errors.New("down")}, Cache: cache})
	failing.Analyze(context.Background(), "help me with sets", "")
	if _, ok, _ := cache.Get(context.Background(), "help me with sets", ""); ok {
		t.Error("heuristic result must not be cached")
	}
}

func TestHeuristic(t *testing.T) {
	tests := []struct {
		text       string
		wantTopic  string
		wantIntent domain.Intent
		wantTime   bool
	}{
		{"Help me prepare for my Machine Learning exam", "machine learning exam", domain.IntentStudyPlanning, true},
		{"Quiz me on binary trees please", "binary trees", domain.IntentAssessment, false},
		{"Find resources for Rust tutorial", "rust tutorial", domain.IntentResourceFinding, false},
		{"please", DefaultTopic, domain.IntentStudyPlanning, false},
		{"   ", DefaultTopic, domain.IntentStudyPlanning, false},
		{"xkcd qwerty 42", "xkcd qwerty 42", domain.IntentStudyPlanning, false},
		{"I need help with statistics, test is in 3 days", "statistics, test is in 3 days", domain.IntentStudyPlanning, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Heuristic(tt.text, "")
			if got.Topic != tt.wantTopic {
				t.Errorf("topic: expected %q, got %q", tt.wantTopic, got.Topic)
			}
			if got.Intent != tt.wantIntent {
				t.Errorf("intent: expected %s, got %s", tt.wantIntent, got.Intent)
			}
			if got.HasTimeConstraint != tt.wantTime {
				t.Errorf("time constraint: expected %v, got %v", tt.wantTime, got.HasTimeConstraint)
			}
		})
	}
}

func TestExtractDocument(t *testing.T) {
	clean, doc := ExtractDocument("Read " + DocumentStart + " chapter one ")
	if clean != "Read" || doc != "chapter one" {
		t.Errorf("unclosed block: got %q / %q", clean, doc)
	}

	clean, doc = ExtractDocument("no document here")
	if clean != "no document here" || doc != "" {
		t.Errorf("plain text: got %q / %q", clean, doc)
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("a", 1500)
	p := Preview(long)
	if len(p) != 1003 || !strings.HasSuffix(p, "...") {
		t.Errorf("unexpected preview length %d", len(p))
	}
	if Preview("short") != "short" {
		t.Error("short documents are not truncated")
	}
}
