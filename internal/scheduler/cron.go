package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSessionCron — учебные сессии каждый день в 9:00.
const DefaultSessionCron = "0 9 * * *"

// ErrNoSlots — запрошено неположительное количество слотов.
var ErrNoSlots = errors.New("slot count must be positive")

// cronParser — парсер cron-выражений.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	_, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

// NextSlot вычисляет ближайшее время по cron-выражению после from.
func NextSlot(cronExpr string, from time.Time) (time.Time, error) {
	slots, err := Slots(cronExpr, from, 1)
	if err != nil {
		return time.Time{}, err
	}
	return slots[0], nil
}

// Slots возвращает n последовательных моментов срабатывания cron-выражения
// после from. Выражение интерпретируется в часовом поясе from,
// результат возвращается в UTC.
func Slots(cronExpr string, from time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, ErrNoSlots
	}

	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}

	slots := make([]time.Time, 0, n)
	next := from
	for i := 0; i < n; i++ {
		next = schedule.Next(next)
		if next.IsZero() {
			// выражение без будущих срабатываний (например, 30 февраля)
			return nil, fmt.Errorf("cron expression %q has no upcoming slots", cronExpr)
		}
		slots = append(slots, next.UTC())
	}
	return slots, nil
}

// PreferenceCron возвращает cron-выражение для предпочтительного
// времени занятий. Неизвестные значения → DefaultSessionCron.
func PreferenceCron(preferredTime string) string {
	switch preferredTime {
	case "afternoon":
		return "0 14 * * *"
	case "evening":
		return "0 18 * * *"
	case "night":
		return "0 20 * * *"
	default:
		return DefaultSessionCron
	}
}
