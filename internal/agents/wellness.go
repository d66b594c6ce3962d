package agents

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shaiso/Mentor/internal/domain"
)

// Signals — сырые сигналы самочувствия студента.
type Signals struct {
	// Emotion — распознанная эмоция.
	Emotion string
	// EmotionConfidence — уверенность распознавания, 0..1.
	// Ниже 0.6 эмоция не влияет на усталость и стресс.
	EmotionConfidence float64

	FatigueIndicators []string // tired_eyes, yawning
	StressIndicators  []string // frown, tense_jaw

	StepsToday           int
	ActiveMinutes        int
	CaloriesBurned       int
	HeartRateVariability int
}

// SignalSource — поставщик сигналов самочувствия.
type SignalSource interface {
	Signals(ctx context.Context, studentID string) (Signals, error)
}

// DefaultSignals — источник с нейтральными значениями.
type DefaultSignals struct{}

// Signals возвращает нейтральные сигналы.
func (DefaultSignals) Signals(context.Context, string) (Signals, error) {
	return Signals{
		Emotion:              "focused",
		StepsToday:           8500,
		ActiveMinutes:        75,
		CaloriesBurned:       2100,
		HeartRateVariability: 50,
	}, nil
}

// WellnessConfig — конфигурация обработчика wellness.
type WellnessConfig struct {
	Signals SignalSource
	Clock   func() time.Time
}

// Wellness оценивает усталость, стресс и эмоциональное состояние.
type Wellness struct {
	signals SignalSource
	clock   func() time.Time
}

// NewWellness создаёт обработчик wellness.
func NewWellness(cfg WellnessConfig) *Wellness {
	w := &Wellness{signals: cfg.Signals, clock: cfg.Clock}
	if w.signals == nil {
		w.signals = DefaultSignals{}
	}
	if w.clock == nil {
		w.clock = time.Now
	}
	return w
}

// Node возвращает узел обработчика.
func (w *Wellness) Node() domain.NodeID { return domain.NodeWellness }

// Invoke оценивает самочувствие.
func (w *Wellness) Invoke(ctx context.Context, in *Input) (domain.Result, error) {
	sig, err := w.signals.Signals(ctx, in.StudentID())
	if err != nil {
		return nil, fmt.Errorf("read wellness signals: %w", err)
	}
	return Assess(sig, w.clock()), nil
}

// Assess строит оценку самочувствия по сигналам и времени суток.
func Assess(sig Signals, now time.Time) *domain.WellnessResult {
	fatigue := round2(clamp01(fatigueLevel(sig, now.Hour())))
	stress := round2(clamp01(stressLevel(sig)))
	emotion := emotionalState(sig, now.Hour())

	return &domain.WellnessResult{
		FatigueLevel:    fatigue,
		StressLevel:     stress,
		EmotionalState:  emotion,
		Recommendations: recommendations(fatigue, stress, emotion),
		Breaks:          wellnessBreaks(fatigue, stress, emotion),
	}
}

func isNight(hour int) bool { return hour >= 22 || hour <= 6 }

func fatigueLevel(sig Signals, hour int) float64 {
	v := 0.3
	switch {
	case isNight(hour):
		v += 0.4
	case hour >= 18:
		v += 0.2
	}

	if sig.EmotionConfidence > 0.6 {
		switch sig.Emotion {
		case "tired", "sleepy", "bored":
			v += 0.4
		case "focused", "determined", "curious":
			v -= 0.2
		case "frustrated", "irritated":
			v += 0.3
		}
	}

	if slices.Contains(sig.FatigueIndicators, "tired_eyes") {
		v += 0.3
	}
	if slices.Contains(sig.FatigueIndicators, "yawning") {
		v += 0.2
	}
	if sig.StepsToday > 0 && sig.StepsToday < 3000 {
		v += 0.2
	}
	return v
}

func stressLevel(sig Signals) float64 {
	v := 0.2

	if sig.EmotionConfidence > 0.6 {
		switch sig.Emotion {
		case "stressed", "anxious", "fearful", "angry", "frustrated":
			v += 0.4
		case "relaxed", "content":
			v -= 0.2
		}
	}

	if slices.Contains(sig.StressIndicators, "frown") {
		v += 0.3
	}
	if slices.Contains(sig.StressIndicators, "tense_jaw") {
		v += 0.2
	}

	switch hrv := sig.HeartRateVariability; {
	case hrv > 0 && hrv < 30:
		v += 0.3
	case hrv > 70:
		v -= 0.2
	}
	return v
}

func emotionalState(sig Signals, hour int) string {
	if sig.Emotion != "" {
		return sig.Emotion
	}
	if isNight(hour) {
		return "tired"
	}
	return "focused"
}

func recommendations(fatigue, stress float64, emotion string) []domain.Recommendation {
	var recs []domain.Recommendation

	if fatigue > 0.7 {
		recs = append(recs, domain.Recommendation{
			Type:        "rest",
			Priority:    "high",
			Title:       "Immediate Rest Break",
			Description: "Signs of high fatigue. Take a 15-minute break with deep breathing.",
			Duration:    "15 minutes",
		})
	}
	if stress > 0.6 || emotion == "anxious" || emotion == "stressed" || emotion == "frustrated" {
		recs = append(recs, domain.Recommendation{
			Type:        "mindfulness",
			Priority:    "medium",
			Title:       "Stress Management",
			Description: fmt.Sprintf("You seem %s. Try progressive muscle relaxation or a short meditation.", emotion),
			Duration:    "10 minutes",
		})
	}
	switch emotion {
	case "confused":
		recs = append(recs, domain.Recommendation{
			Type:        "study_technique",
			Priority:    "low",
			Title:       "Change Study Approach",
			Description: "Try a different explanation of the concept or take short breaks.",
			Duration:    "N/A",
		})
	case "tired", "sleepy":
		recs = append(recs, domain.Recommendation{
			Type:        "hydration_nutrition",
			Priority:    "medium",
			Title:       "Energy Boost Check",
			Description: "Drink water, have a healthy snack and consider a 5-minute walk.",
			Duration:    "5 minutes",
		})
	case "happy", "excited", "focused":
		recs = append(recs, domain.Recommendation{
			Type:        "motivation",
			Priority:    "low",
			Title:       "Ride the Momentum",
			Description: fmt.Sprintf("You're feeling %s. Use this state to tackle challenging material.", emotion),
			Duration:    "N/A",
		})
	}

	if len(recs) == 0 {
		recs = domain.FallbackWellness("").Recommendations
	}
	if len(recs) > 3 {
		recs = recs[:3]
	}
	return recs
}

func wellnessBreaks(fatigue, stress float64, emotion string) []domain.WellnessBreak {
	var breaks []domain.WellnessBreak

	if fatigue > 0.5 || emotion == "tired" || emotion == "bored" {
		breaks = append(breaks, domain.WellnessBreak{
			Timing:   "every_45_minutes",
			Duration: "10 minutes",
			Activity: "mindfulness_meditation",
			Purpose:  "combat_fatigue",
		})
	}
	if stress > 0.5 || emotion == "anxious" || emotion == "frustrated" || emotion == "stressed" {
		breaks = append(breaks, domain.WellnessBreak{
			Timing:   "every_75_minutes",
			Duration: "5 minutes",
			Activity: "deep_breathing",
			Purpose:  "reduce_stress",
		})
	}
	if emotion == "confused" {
		breaks = append(breaks, domain.WellnessBreak{
			Timing:   "every_90_minutes",
			Duration: "10 minutes",
			Activity: "concept_review",
			Purpose:  "clarify_confusion",
		})
	}
	breaks = append(breaks, domain.WellnessBreak{
		Timing:   "every_60_minutes",
		Duration: "5 minutes",
		Activity: "eye_rest_walk",
		Purpose:  "general_wellness",
	})

	if len(breaks) > 3 {
		breaks = breaks[:3]
	}
	return breaks
}
