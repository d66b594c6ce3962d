package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shaiso/Mentor/internal/domain"
)

// recentWindow — сколько последних оценок учитывается.
const recentWindow = 5

// PerformanceSource — источник прошлых результатов студента.
type PerformanceSource interface {
	// RecentPerformance возвращает не более limit последних оценок,
	// от старых к новым.
	RecentPerformance(ctx context.Context, studentID string, limit int) ([]domain.PerformanceEntry, error)
}

// DefaultPerformance — источник со статичной историей оценок.
type DefaultPerformance struct{}

// RecentPerformance возвращает статичную историю.
func (DefaultPerformance) RecentPerformance(context.Context, string, int) ([]domain.PerformanceEntry, error) {
	return []domain.PerformanceEntry{
		{Subject: "mathematics", Score: 75, TakenAt: time.Time{}},
		{Subject: "programming", Score: 82, TakenAt: time.Time{}},
		{Subject: "algorithms", Score: 68, TakenAt: time.Time{}},
	}, nil
}

var (
	learningStyles = []string{"visual", "auditory", "kinesthetic", "reading_writing"}
	pacePrefs      = []string{"fast", "moderate", "slow"}
	studyTimes     = []string{"morning", "afternoon", "evening", "night"}
)

// PersonalizationConfig — конфигурация обработчика personalization.
type PersonalizationConfig struct {
	Performance PerformanceSource
}

// Personalization вычисляет профиль студента и адаптивный план.
type Personalization struct {
	performance PerformanceSource
}

// NewPersonalization создаёт обработчик personalization.
func NewPersonalization(cfg PersonalizationConfig) *Personalization {
	p := &Personalization{performance: cfg.Performance}
	if p.performance == nil {
		p.performance = DefaultPerformance{}
	}
	return p
}

// Node возвращает узел обработчика.
func (p *Personalization) Node() domain.NodeID { return domain.NodePersonalization }

// Invoke строит персональные рекомендации.
func (p *Personalization) Invoke(ctx context.Context, in *Input) (domain.Result, error) {
	history, err := p.performance.RecentPerformance(ctx, in.StudentID(), recentWindow)
	if err != nil {
		return nil, fmt.Errorf("load performance: %w", err)
	}
	return Personalize(in.Topic(), BuildProfile(in.StudentID(), history)), nil
}

// BuildProfile строит профиль: базовые привычки детерминированно
// выводятся из id студента, уверенность и уровень вызова
// калибруются по последним оценкам.
func BuildProfile(studentID string, history []domain.PerformanceEntry) domain.StudentProfile {
	s := seed(studentID)

	profile := domain.StudentProfile{
		StudentID:          studentID,
		LearningStyle:      pick(learningStyles, s),
		PacePreference:     pick(pacePrefs, s>>3),
		PreferredChallenge: pick(difficultyLevels, s>>6),
		PreferredTime:      pick(studyTimes, s>>9),
		SessionMinutes:     30 + int((s>>12)%91),
		BreakMinutes:       45 + int((s>>16)%46),
		ConfidenceLevel:    round2(0.4 + float64((s>>20)%41)/100),
		MotivationLevel:    round2(0.3 + float64((s>>24)%61)/100),
		AverageScore:       75,
	}

	if avg, ok := AverageScore(history); ok {
		profile.AverageScore = round2(avg)
		switch {
		case avg > 85:
			profile.ConfidenceLevel = round2(min(0.9, profile.ConfidenceLevel+0.1))
		case avg < 70:
			profile.ConfidenceLevel = round2(max(0.3, profile.ConfidenceLevel-0.1))
		}
		switch idx := difficultyIndex(profile.PreferredChallenge); {
		case avg > 90 && idx < 2:
			profile.PreferredChallenge = difficultyLevels[idx+1]
		case avg < 60 && idx > 0:
			profile.PreferredChallenge = difficultyLevels[idx-1]
		}
	}
	return profile
}

// AverageScore — среднее последних оценок (не более 5).
func AverageScore(history []domain.PerformanceEntry) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}
	if len(history) > recentWindow {
		history = history[len(history)-recentWindow:]
	}
	var sum float64
	for _, h := range history {
		sum += h.Score
	}
	return sum / float64(len(history)), true
}

// PerformanceLevel переводит средний балл в уровень успеваемости.
func PerformanceLevel(avg float64) string {
	switch {
	case avg >= 85:
		return "excellent_performance"
	case avg >= 70:
		return "good_performance"
	case avg >= 55:
		return "needs_improvement"
	default:
		return "struggling"
	}
}

// Personalize строит рекомендации по профилю.
func Personalize(topic string, profile domain.StudentProfile) *domain.PersonalizationResult {
	adjusted := adjustDifficulty(EstimateDifficulty(topic), profile)

	return &domain.PersonalizationResult{
		Profile:            profile,
		AdjustedDifficulty: adjusted,
		PerformanceLevel:   PerformanceLevel(profile.AverageScore),
		PreferredTypes:     preferredTypes(profile.LearningStyle),
		AdaptivePlan: domain.AdaptivePlan{
			Topic:                 topic,
			Difficulty:            adjusted,
			SchedulePreference:    profile.PreferredTime,
			SessionMinutes:        profile.SessionMinutes,
			BreakFrequencyMinutes: profile.BreakMinutes,
			ResourcesPerSession:   2,
			Elements:              adaptiveElements(profile),
		},
		Reasoning: explain(profile),
	}
}

// adjustDifficulty сдвигает сложность на одну ступень в сторону
// перевешивающих факторов.
func adjustDifficulty(base string, profile domain.StudentProfile) string {
	idx := difficultyIndex(base)

	var down, up int
	if profile.ConfidenceLevel < 0.5 {
		down++
	}
	if profile.AverageScore < 70 {
		down++
	}
	if profile.ConfidenceLevel > 0.8 {
		up++
	}
	if profile.PreferredChallenge == DifficultyAdvanced {
		up++
	}
	if profile.AverageScore > 85 {
		up++
	}

	switch {
	case down > up && idx > 0:
		idx--
	case up > down && idx < 2:
		idx++
	}
	return difficultyLevels[idx]
}

func preferredTypes(style string) []string {
	switch style {
	case "visual", "auditory":
		return []string{"video", "article", "book"}
	default:
		return []string{"article", "book", "video"}
	}
}

func adaptiveElements(profile domain.StudentProfile) []domain.AdaptiveElement {
	elements := []domain.AdaptiveElement{}
	if profile.PacePreference == "slow" {
		elements = append(elements, domain.AdaptiveElement{
			Type:        "paced_learning",
			Description: "Extended time for concept absorption",
			Benefit:     "Better understanding through deliberate pacing",
		})
	}
	if profile.MotivationLevel < 0.6 {
		elements = append(elements, domain.AdaptiveElement{
			Type:        "gamification",
			Description: "Achievement badges and progress rewards",
			Benefit:     "Increased motivation through gamified elements",
		})
	}
	return elements
}

func explain(profile domain.StudentProfile) string {
	reasons := []string{
		fmt.Sprintf("Prioritized resources matching your %s learning style", profile.LearningStyle),
	}
	if profile.ConfidenceLevel < 0.6 {
		reasons = append(reasons, "Adjusted difficulty downward due to confidence considerations")
	}
	if profile.AverageScore > 85 {
		reasons = append(reasons, "Raised the challenge to match your recent results")
	}
	return strings.Join(reasons, " | ")
}
