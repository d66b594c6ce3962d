package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/scheduler"
)

const (
	eventTimeLayout  = "2006-01-02T15:04:05"
	reminderMinutes  = 15
	defaultTotalHrs  = 2.0
	breakOffsetHours = 1
)

// sessionHours — длительность одной сессии по сложности.
var sessionHours = map[string]float64{
	DifficultyBeginner:     1.0,
	DifficultyIntermediate: 1.5,
	DifficultyAdvanced:     2.0,
}

// ScheduleConfig — конфигурация обработчика schedule.
type ScheduleConfig struct {
	// Cron — слоты сессий. Пустое значение: по предпочтению студента,
	// иначе scheduler.DefaultSessionCron.
	Cron string

	Clock func() time.Time
}

// Schedule раскладывает материалы по учебным сессиям.
type Schedule struct {
	cron  string
	clock func() time.Time
}

// NewSchedule создаёт обработчик schedule.
func NewSchedule(cfg ScheduleConfig) *Schedule {
	s := &Schedule{cron: cfg.Cron, clock: cfg.Clock}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Node возвращает узел обработчика.
func (s *Schedule) Node() domain.NodeID { return domain.NodeSchedule }

// Invoke строит план занятий.
func (s *Schedule) Invoke(ctx context.Context, in *Input) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cronExpr := s.cron
	if cronExpr == "" {
		cronExpr = scheduler.DefaultSessionCron
		if p, ok := personalizationOf(in); ok {
			cronExpr = scheduler.PreferenceCron(p.AdaptivePlan.SchedulePreference)
		}
	}

	return BuildSchedule(in.Topic(), learningOf(in), wellnessOf(in), cronExpr, s.clock())
}

// BuildSchedule собирает сессии и события календаря.
func BuildSchedule(topic string, learning *domain.LearningResult, wellness *domain.WellnessResult, cronExpr string, now time.Time) (*domain.ScheduleResult, error) {
	difficulty := learning.Difficulty
	perSession, ok := sessionHours[difficulty]
	if !ok {
		difficulty = DifficultyIntermediate
		perSession = sessionHours[difficulty]
	}

	total := parseHours(learning.EstimatedTime)
	count := max(1, int(total/perSession))
	hours := total / float64(count)

	slots, err := scheduler.Slots(cronExpr, now, count)
	if err != nil {
		return nil, fmt.Errorf("plan session slots: %w", err)
	}

	brk := sessionBreak(wellness.FatigueLevel)

	sessions := make([]domain.Session, 0, count)
	events := make([]domain.CalendarEvent, 0, count*2)
	for i, start := range slots {
		session := domain.Session{
			ID:         fmt.Sprintf("session_%d", i+1),
			Date:       start.Format("2006-01-02"),
			Time:       start.Format("15:04"),
			Duration:   fmt.Sprintf("%.1f hours", hours),
			Topic:      fmt.Sprintf("%s - Part %d", topic, i+1),
			Resources:  []domain.Resource{},
			Activities: sessionActivities(i, count),
			Break:      brk,
		}
		if len(learning.Resources) > 0 {
			session.Resources = []domain.Resource{learning.Resources[i%len(learning.Resources)]}
		}
		sessions = append(sessions, session)

		end := start.Add(time.Duration(hours * float64(time.Hour)))
		events = append(events, domain.CalendarEvent{
			Summary:     "Study Session: " + session.Topic,
			Description: fmt.Sprintf("Study %s for %s", session.Topic, session.Duration),
			Start:       utcEventTime(start),
			End:         utcEventTime(end),
			Reminders:   []domain.Reminder{{Method: "popup", Minutes: reminderMinutes}},
		})

		if brk != nil {
			breakStart := start.Add(breakOffsetHours * time.Hour)
			events = append(events, domain.CalendarEvent{
				Summary:     "Wellness Break: " + brk.Activity,
				Description: brk.Reason,
				Start:       utcEventTime(breakStart),
				End:         utcEventTime(breakStart.Add(breakMinutes(brk))),
			})
		}
	}

	return &domain.ScheduleResult{
		Topic:          topic,
		TotalDuration:  strconv.FormatFloat(total, 'f', -1, 64) + " hours",
		Difficulty:     difficulty,
		Sessions:       sessions,
		CalendarEvents: events,
	}, nil
}

// parseHours разбирает "N hours"; при ошибке возвращает 2.
func parseHours(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return defaultTotalHrs
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || v <= 0 {
		return defaultTotalHrs
	}
	return v
}

// sessionBreak — перерыв внутри сессии по уровню усталости.
func sessionBreak(fatigue float64) *domain.SessionBreak {
	switch {
	case fatigue > 0.7:
		return &domain.SessionBreak{
			Duration: "10 minutes",
			Activity: "Mindfulness meditation",
			Reason:   "High fatigue detected - mental health break needed",
		}
	case fatigue > 0.5:
		return &domain.SessionBreak{
			Duration: "5 minutes",
			Activity: "Quick stretch break",
			Reason:   "Medium fatigue - physical break recommended",
		}
	default:
		return nil
	}
}

func breakMinutes(b *domain.SessionBreak) time.Duration {
	fields := strings.Fields(b.Duration)
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			return time.Duration(n) * time.Minute
		}
	}
	return 5 * time.Minute
}

func sessionActivities(i, total int) []string {
	switch {
	case i == 0:
		return []string{"Review fundamental concepts", "Watch introductory video", "Take notes on key terms"}
	case i == total-1:
		return []string{"Review all learned concepts", "Practice with example problems", "Self-assessment quiz"}
	default:
		return []string{"Deep dive into specific topic areas", "Practical exercises and examples", "Review previous session material"}
	}
}

func utcEventTime(t time.Time) domain.EventTime {
	return domain.EventTime{DateTime: t.UTC().Format(eventTimeLayout), TimeZone: "UTC"}
}
