package agents

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/llm"
)

var morning = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func input(topic string, deps MapDeps) *Input {
	return &Input{
		Analysis: domain.Analysis{Topic: topic, Intent: domain.IntentStudyPlanning},
		Request:  domain.Request{Text: topic, StudentID: "student-1"},
		Deps:     deps,
	}
}

type stubLLM struct {
	content string
	err     error
}

func (s stubLLM) Generate(context.Context, llm.Request) (*llm.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content}, nil
}

type failingPerformance struct{}

func (failingPerformance) RecentPerformance(context.Context, string, int) ([]domain.PerformanceEntry, error) {
	return nil, errors.New("db down")
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry(Config{})

	if r.Count() != len(domain.HandlerNodes()) {
		t.Fatalf("expected %d handlers, got %d", len(domain.HandlerNodes()), r.Count())
	}
	for _, id := range domain.HandlerNodes() {
		h, err := r.Get(id)
		if err != nil {
			t.Fatalf("handler %s: %v", id, err)
		}
		if h.Node() != id {
			t.Errorf("handler registered under %s serves %s", id, h.Node())
		}
	}

	// aggregate не имеет обработчика
	if _, err := r.Get(domain.NodeAggregate); !errors.Is(err, ErrHandlerNotFound) {
		t.Errorf("expected ErrHandlerNotFound, got %v", err)
	}

	r.Unregister(domain.NodeLearning)
	if r.Has(domain.NodeLearning) {
		t.Error("learning should be unregistered")
	}
}

func TestLearning_Curated(t *testing.T) {
	h := NewLearning(LearningConfig{})

	res, err := h.Invoke(context.Background(), input("machine learning exam", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lr := res.(*domain.LearningResult)

	if len(lr.Resources) == 0 || len(lr.Resources) > maxResources {
		t.Errorf("unexpected resource count %d", len(lr.Resources))
	}
	if lr.Difficulty != DifficultyAdvanced {
		t.Errorf("expected advanced, got %s", lr.Difficulty)
	}
	if lr.EstimatedTime != "8 hours" {
		t.Errorf("expected capped 8 hours, got %s", lr.EstimatedTime)
	}
}

func TestLearning_RanksByPersonalization(t *testing.T) {
	h := NewLearning(LearningConfig{})
	p := domain.FallbackPersonalization("css")
	p.PreferredTypes = []string{"book", "video", "article"}

	res, _ := h.Invoke(context.Background(), input("css basics", MapDeps{domain.NodePersonalization: p}))
	lr := res.(*domain.LearningResult)

	if lr.Resources[0].Type != "book" || lr.Resources[0].Priority != "high" {
		t.Errorf("expected book first with high priority, got %+v", lr.Resources[0])
	}
	if lr.Difficulty != DifficultyBeginner {
		t.Errorf("expected beginner, got %s", lr.Difficulty)
	}
}

func TestLearning_LLMSuggestions(t *testing.T) {
	client := stubLLM{content: "```json\n" + `[{"title": "Graph Theory Basics", "url": "https://www.geeksforgeeks.org/graph-theory/", "description": "Intro"}, {"title": "", "url": "x"}]` + "\n```"}
	h := NewLearning(LearningConfig{Client: client})

	res, err := h.Invoke(context.Background(), input("graph theory", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lr := res.(*domain.LearningResult)
	if lr.Resources[0].Title != "Graph Theory Basics" {
		t.Errorf("suggested article should come first, got %q", lr.Resources[0].Title)
	}

	// Ошибка модели не является ошибкой узла
	h = NewLearning(LearningConfig{Client: stubLLM{err: errors.New("503")}})
	if _, err := h.Invoke(context.Background(), input("graph theory", nil)); err != nil {
		t.Errorf("llm failure must fall back to curated resources, got %v", err)
	}
}

func TestEstimateStudyHours(t *testing.T) {
	tests := []struct {
		types []string
		want  int
	}{
		{nil, 2},
		{[]string{"video"}, 3},
		{[]string{"book", "article"}, 6},
		{[]string{"book", "book", "book"}, 8},
	}
	for _, tt := range tests {
		var rs []domain.Resource
		for _, ty := range tt.types {
			rs = append(rs, domain.Resource{Type: ty})
		}
		if got := EstimateStudyHours(rs); got != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.types, tt.want, got)
		}
	}
}

func TestWellness_Defaults(t *testing.T) {
	h := NewWellness(WellnessConfig{Clock: func() time.Time { return morning }})

	res, err := h.Invoke(context.Background(), input("anything", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := res.(*domain.WellnessResult)

	if w.FatigueLevel != 0.3 || w.StressLevel != 0.2 || w.EmotionalState != "focused" {
		t.Errorf("unexpected defaults: %+v", w)
	}
	if len(w.Recommendations) == 0 || len(w.Recommendations) > 3 || len(w.Breaks) > 3 {
		t.Errorf("unexpected list sizes: %d recs, %d breaks", len(w.Recommendations), len(w.Breaks))
	}
}

func TestAssess_Clamps(t *testing.T) {
	night := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	sig := Signals{
		Emotion:              "tired",
		EmotionConfidence:    0.9,
		FatigueIndicators:    []string{"tired_eyes", "yawning"},
		StressIndicators:     []string{"frown", "tense_jaw"},
		StepsToday:           1000,
		HeartRateVariability: 20,
	}

	w := Assess(sig, night)

	if w.FatigueLevel != 1 {
		t.Errorf("fatigue should clamp to 1, got %v", w.FatigueLevel)
	}
	if w.StressLevel != 1 {
		t.Errorf("stress should clamp to 1, got %v", w.StressLevel)
	}
	if w.Recommendations[0].Type != "rest" {
		t.Errorf("high fatigue should lead with rest, got %s", w.Recommendations[0].Type)
	}
}

func TestAssessment_UsesLearningResult(t *testing.T) {
	h := NewAssessment(AssessmentConfig{})

	learning := domain.FallbackLearning("machine learning exam")
	learning.Difficulty = DifficultyAdvanced

	res, err := h.Invoke(context.Background(), input("machine learning exam", MapDeps{domain.NodeLearning: learning}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := res.(*domain.AssessmentResult)

	if len(a.Questions) != DefaultQuestionCount {
		t.Fatalf("expected %d questions, got %d", DefaultQuestionCount, len(a.Questions))
	}
	if a.Difficulty != DifficultyAdvanced || a.EstimatedTime != "6 minutes" {
		t.Errorf("unexpected quiz meta: %s / %s", a.Difficulty, a.EstimatedTime)
	}
	// advanced начинается с fill_blank
	if a.Questions[0].Type != QuestionFillBlank {
		t.Errorf("expected fill_blank first, got %s", a.Questions[0].Type)
	}
	for _, q := range a.Questions {
		if q.Type == QuestionMultipleChoice && !strings.Contains(strings.Join(q.Options, "|"), q.CorrectAnswer) {
			t.Errorf("correct answer missing from options: %+v", q)
		}
	}
}

func TestBuildQuiz_Deterministic(t *testing.T) {
	learning := domain.FallbackLearning("data science")
	a := BuildQuiz("data science", learning, 5)
	b := BuildQuiz("data science", learning, 5)
	if !reflect.DeepEqual(a, b) {
		t.Error("quiz generation must be deterministic")
	}

	mc := BuildQuiz("data science", learning, 1).Questions[0]
	if mc.Type != QuestionMultipleChoice || len(mc.Options) != 4 {
		t.Errorf("intermediate quiz starts with a 4-option question, got %+v", mc)
	}
}

func TestExtractConcepts(t *testing.T) {
	if c := ExtractConcepts("Intro to Deep Learning"); c[0] != "convolutional neural networks" {
		t.Errorf("unexpected deep learning concepts %v", c)
	}
	if c := ExtractConcepts("pottery"); !reflect.DeepEqual(c, genericConcepts) {
		t.Errorf("expected generic concepts, got %v", c)
	}
}

func TestSchedule_SessionsAndEvents(t *testing.T) {
	h := NewSchedule(ScheduleConfig{Clock: func() time.Time { return morning }})

	learning := domain.FallbackLearning("statistics")
	learning.Difficulty = DifficultyBeginner
	learning.EstimatedTime = "3 hours"
	learning.Resources = []domain.Resource{{Title: "R1", Type: "video"}}

	wellness := domain.FallbackWellness("")
	wellness.FatigueLevel = 0.6

	res, err := h.Invoke(context.Background(), input("statistics", MapDeps{
		domain.NodeLearning: learning,
		domain.NodeWellness: wellness,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := res.(*domain.ScheduleResult)

	if len(s.Sessions) != 3 {
		t.Fatalf("expected 3 one-hour sessions, got %d", len(s.Sessions))
	}
	first := s.Sessions[0]
	if first.Date != "2025-03-10" || first.Time != "09:00" {
		t.Errorf("first session should start today at 09:00, got %s %s", first.Date, first.Time)
	}
	if first.Break == nil || first.Break.Duration != "5 minutes" {
		t.Errorf("medium fatigue should add a stretch break, got %+v", first.Break)
	}

	// сессия + перерыв на каждую сессию
	if len(s.CalendarEvents) != 6 {
		t.Fatalf("expected 6 events, got %d", len(s.CalendarEvents))
	}
	ev := s.CalendarEvents[0]
	if ev.Start.DateTime != "2025-03-10T09:00:00" || ev.End.DateTime != "2025-03-10T10:00:00" || ev.Start.TimeZone != "UTC" {
		t.Errorf("unexpected event times: %+v", ev)
	}
	if len(ev.Reminders) != 1 || ev.Reminders[0].Minutes != 15 {
		t.Errorf("expected 15-minute popup reminder, got %+v", ev.Reminders)
	}
	if s.TotalDuration != "3 hours" {
		t.Errorf("unexpected total %q", s.TotalDuration)
	}
}

func TestSchedule_FallbackInputs(t *testing.T) {
	// Нет результатов предшественников — берутся fallback'и
	h := NewSchedule(ScheduleConfig{Clock: func() time.Time { return morning }})

	res, err := h.Invoke(context.Background(), input("history", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := res.(*domain.ScheduleResult)
	if len(s.Sessions) == 0 {
		t.Error("fallback learning must still produce a session")
	}
	if s.Sessions[0].Break != nil {
		t.Error("default fatigue needs no break")
	}
}

func TestSchedule_PreferenceAndInvalidCron(t *testing.T) {
	p := domain.FallbackPersonalization("x")
	p.AdaptivePlan.SchedulePreference = "evening"

	h := NewSchedule(ScheduleConfig{Clock: func() time.Time { return morning }})
	res, _ := h.Invoke(context.Background(), input("x", MapDeps{domain.NodePersonalization: p}))
	if got := res.(*domain.ScheduleResult).Sessions[0].Time; got != "18:00" {
		t.Errorf("evening preference should start at 18:00, got %s", got)
	}

	h = NewSchedule(ScheduleConfig{Cron: "bogus", Clock: func() time.Time { return morning }})
	if _, err := h.Invoke(context.Background(), input("x", nil)); err == nil {
		t.Error("invalid cron should fail the node")
	}
}

func TestBuildProfile(t *testing.T) {
	a := BuildProfile("alice", nil)
	b := BuildProfile("alice", nil)
	if !reflect.DeepEqual(a, b) {
		t.Error("profile must be deterministic per student")
	}
	if a.AverageScore != 75 {
		t.Errorf("no history should default to 75, got %v", a.AverageScore)
	}

	high := BuildProfile("alice", []domain.PerformanceEntry{{Score: 95}, {Score: 97}})
	if high.ConfidenceLevel <= a.ConfidenceLevel && a.ConfidenceLevel < 0.9 {
		t.Errorf("high scores should raise confidence: %v → %v", a.ConfidenceLevel, high.ConfidenceLevel)
	}
	if difficultyIndex(high.PreferredChallenge) < difficultyIndex(a.PreferredChallenge) {
		t.Error("high scores must not lower the challenge")
	}
}

func TestAverageScore_LastFive(t *testing.T) {
	history := []domain.PerformanceEntry{{Score: 0}, {Score: 80}, {Score: 80}, {Score: 80}, {Score: 80}, {Score: 80}}
	avg, ok := AverageScore(history)
	if !ok || avg != 80 {
		t.Errorf("expected 80 from last five, got %v", avg)
	}
}

func TestPerformanceLevel(t *testing.T) {
	tests := map[float64]string{
		90: "excellent_performance",
		85: "excellent_performance",
		75: "good_performance",
		60: "needs_improvement",
		40: "struggling",
	}
	for avg, want := range tests {
		if got := PerformanceLevel(avg); got != want {
			t.Errorf("%v: expected %s, got %s", avg, want, got)
		}
	}
}

func TestPersonalization_Invoke(t *testing.T) {
	h := NewPersonalization(PersonalizationConfig{})
	res, err := h.Invoke(context.Background(), input("algorithms", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := res.(*domain.PersonalizationResult)

	// 75, 82, 68 → 75
	if p.Profile.AverageScore != 75 || p.PerformanceLevel != "good_performance" {
		t.Errorf("unexpected performance: %v %s", p.Profile.AverageScore, p.PerformanceLevel)
	}
	if len(p.PreferredTypes) != 3 || p.Reasoning == "" {
		t.Errorf("incomplete personalization: %+v", p)
	}

	h = NewPersonalization(PersonalizationConfig{Performance: failingPerformance{}})
	if _, err := h.Invoke(context.Background(), input("algorithms", nil)); err == nil {
		t.Error("expected source error to fail the node")
	}
}

func TestMotivation(t *testing.T) {
	h := NewMotivation(MotivationConfig{})
	wellness := domain.FallbackWellness("")
	wellness.EmotionalState = "tired"
	wellness.FatigueLevel = 0.8

	res, err := h.Invoke(context.Background(), input("calculus", MapDeps{domain.NodeWellness: wellness}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := res.(*domain.MotivationResult)

	if !strings.HasSuffix(m.PrimaryMessage, "Remember to take care of yourself too!") {
		t.Errorf("tired students get a self-care suffix, got %q", m.PrimaryMessage)
	}
	if len(m.Support) != 3 || m.Support[0].Type != "rest_reminder" {
		t.Errorf("unexpected support: %+v", m.Support)
	}
	if m.NextGoal.Goal == "" || m.NextGoal.Timeline == "" {
		t.Errorf("next goal must be filled: %+v", m.NextGoal)
	}

	again, _ := h.Invoke(context.Background(), input("calculus", MapDeps{domain.NodeWellness: wellness}))
	if !reflect.DeepEqual(res, again) {
		t.Error("motivation must be deterministic for the same input")
	}
}
