package agents

import (
	"context"
	"fmt"

	"github.com/shaiso/Mentor/internal/domain"
)

var affirmations = []string{
	"You're capable of amazing things when you put your mind to it.",
	"Every expert was once a beginner. You're right where you need to be.",
	"Your brain is getting stronger with every concept you learn.",
	"Mistakes are proof that you're trying - that's something to be proud of!",
	"You're building knowledge that will serve you for the rest of your life.",
	"Learning is a journey, not a race. Celebrate your progress.",
	"You have the power to master this material, one step at a time.",
	"Your dedication to learning sets you apart from the crowd.",
}

var encouragement = map[string][]string{
	"excellent_performance": {
		"Outstanding work! You're mastering this material brilliantly.",
		"Exceptional performance! Keep up this incredible momentum.",
		"You're absolutely crushing it! This level of understanding is impressive.",
	},
	"good_performance": {
		"Great job! You're building a solid foundation.",
		"Well done! Your hard work is paying off.",
		"Nice work! You're making excellent progress.",
	},
	"needs_improvement": {
		"Keep pushing forward! Every expert has faced challenges like this.",
		"You're building resilience with every attempt. That's valuable too!",
		"Learning takes time. You're getting stronger every day.",
	},
	"struggling": {
		"Remember: every journey has difficult stretches. You've got this!",
		"Take a moment to breathe. You're capable of more than you know.",
		"This challenge is shaping you into an even stronger learner.",
	},
}

var milestones = []string{
	"🎉 Milestone achieved! You've grown so much!",
	"🌟 Progress celebration! Pat yourself on the back!",
	"⭐ Achievement unlocked! You're making real progress!",
	"🏆 Goal reached! You deserve to feel proud of this!",
}

// MotivationConfig — конфигурация обработчика motivation.
type MotivationConfig struct {
	Performance PerformanceSource
}

// Motivation формирует поддерживающее сообщение.
type Motivation struct {
	performance PerformanceSource
}

// NewMotivation создаёт обработчик motivation.
func NewMotivation(cfg MotivationConfig) *Motivation {
	m := &Motivation{performance: cfg.Performance}
	if m.performance == nil {
		m.performance = DefaultPerformance{}
	}
	return m
}

// Node возвращает узел обработчика.
func (m *Motivation) Node() domain.NodeID { return domain.NodeMotivation }

// MotivationContext — входные сигналы мотивации.
type MotivationContext struct {
	PerformanceLevel string
	EmotionalState   string
	FatigueLevel     float64
	Topic            string
	Milestone        bool
	Seed             string
}

// Invoke формирует сообщение по самочувствию и успеваемости.
func (m *Motivation) Invoke(ctx context.Context, in *Input) (domain.Result, error) {
	history, err := m.performance.RecentPerformance(ctx, in.StudentID(), recentWindow)
	if err != nil {
		return nil, fmt.Errorf("load performance: %w", err)
	}

	level := "good_performance"
	if avg, ok := AverageScore(history); ok {
		level = PerformanceLevel(avg)
	}

	wellness := wellnessOf(in)
	return Motivate(MotivationContext{
		PerformanceLevel: level,
		EmotionalState:   wellness.EmotionalState,
		FatigueLevel:     wellness.FatigueLevel,
		Topic:            in.Topic(),
		Milestone:        true,
		Seed:             in.Topic() + "|" + in.StudentID(),
	}), nil
}

// Motivate детерминированно собирает сообщение: выбор фраз зависит
// только от mc.Seed.
func Motivate(mc MotivationContext) *domain.MotivationResult {
	s := seed(mc.Seed)
	fallback := domain.FallbackMotivation(mc.Topic)

	celebration := fallback.ProgressCelebration
	if mc.Milestone {
		celebration = pick(milestones, s>>5)
	}

	return &domain.MotivationResult{
		PrimaryMessage:      primaryMessage(mc.PerformanceLevel, mc.EmotionalState, s),
		Affirmation:         pick(affirmations, s>>3),
		ProgressCelebration: celebration,
		Support:             supportElements(mc.FatigueLevel, mc.EmotionalState),
		NextGoal:            nextGoal(mc.PerformanceLevel, mc.Topic, s>>7),
	}
}

func primaryMessage(level, emotion string, s uint32) string {
	messages, ok := encouragement[level]
	if !ok {
		messages = encouragement["good_performance"]
	}
	msg := pick(messages, s)

	switch emotion {
	case "tired":
		return msg + " Remember to take care of yourself too!"
	case "stressed":
		return msg + " Take a deep breath - you've got this!"
	case "confused":
		return "You're making progress even when it doesn't feel like it!"
	case "focused":
		return msg + " Your concentration is paying off!"
	default:
		return msg
	}
}

func supportElements(fatigue float64, emotion string) []domain.SupportElement {
	var out []domain.SupportElement

	if fatigue > 0.7 {
		out = append(out, domain.SupportElement{
			Type:    "rest_reminder",
			Message: "Your body and mind need rest to perform at their best.",
			Action:  "Consider a short break or earlier bedtime tonight.",
		})
	}
	if fatigue > 0.5 {
		out = append(out, domain.SupportElement{
			Type:    "energy_boost",
			Message: "Keep hydrated and fuel your brain with healthy snacks.",
			Action:  "Drink water and eat something nutritious soon.",
		})
	}
	switch emotion {
	case "confused":
		out = append(out, domain.SupportElement{
			Type:    "perspective_shift",
			Message: "Confusion is often a sign you're about to have an 'aha!' moment.",
			Action:  "Be patient with yourself - clarity often comes after wrestling with ideas.",
		})
	case "stressed":
		out = append(out, domain.SupportElement{
			Type:    "stress_relief",
			Message: "Learning works best when your nervous system is calm.",
			Action:  "Try box breathing: inhale for 4 counts, hold for 4, exhale for 4.",
		})
	case "tired":
		out = append(out, domain.SupportElement{
			Type:    "gentle_encouragement",
			Message: "Even tired minds can learn - you're capable of more than you think.",
			Action:  "If possible, study during your peak energy time tomorrow.",
		})
	}
	out = append(out, domain.SupportElement{
		Type:    "self_compassion",
		Message: "Be kind to yourself on this learning journey.",
		Action:  "Acknowledge that learning is challenging and you're doing your best.",
	})

	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func nextGoal(level, topic string, s uint32) domain.NextGoal {
	if topic == "" {
		topic = "your studies"
	}

	var goals []domain.NextGoal
	switch level {
	case "excellent_performance":
		goals = []domain.NextGoal{
			{Goal: "Master an advanced concept in " + topic, Timeline: "this week", Reward: "A special treat or celebration"},
			{Goal: "Help someone else understand a concept you've mastered", Timeline: "within 2 days", Reward: "The satisfaction of teaching"},
		}
	case "needs_improvement", "struggling":
		goals = []domain.NextGoal{
			{Goal: "Spend focused time on difficult parts of " + topic, Timeline: "next study session", Reward: "Celebrate the effort, regardless of outcome"},
			{Goal: "Break down one complex concept into smaller parts", Timeline: "today", Reward: "Progress is the real victory"},
		}
	default:
		goals = []domain.NextGoal{
			{Goal: "Complete one more practice session on " + topic, Timeline: "today", Reward: "Time for something enjoyable"},
			{Goal: "Review what you've learned this week", Timeline: "tomorrow", Reward: "A sense of accomplishment"},
		}
	}
	return pick(goals, s)
}
