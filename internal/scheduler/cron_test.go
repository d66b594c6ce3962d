package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestSlots_Daily(t *testing.T) {
	from := time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)

	slots, err := Slots(DefaultSessionCron, from, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 9:00 сегодня уже прошло — начинаем с завтра
	want := []time.Time{
		time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Errorf("slot %d: expected %v, got %v", i, want[i], slots[i])
		}
	}
}

func TestSlots_Timezone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	from := time.Date(2025, 3, 10, 7, 0, 0, 0, loc)

	slot, err := NextSlot(DefaultSessionCron, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 9:00 по UTC+3 = 6:00 UTC
	if slot.Location() != time.UTC || slot.Hour() != 6 {
		t.Errorf("expected 06:00 UTC, got %v", slot)
	}
}

func TestSlots_Errors(t *testing.T) {
	if _, err := Slots(DefaultSessionCron, time.Now(), 0); !errors.Is(err, ErrNoSlots) {
		t.Errorf("expected ErrNoSlots, got %v", err)
	}
	if _, err := Slots("not a cron", time.Now(), 1); err == nil {
		t.Error("expected parse error")
	}
	if err := ValidateCronExpr("*/5 * * * *"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateCronExpr("61 * * * *"); err == nil {
		t.Error("expected invalid minute to fail")
	}
}

func TestPreferenceCron(t *testing.T) {
	tests := map[string]string{
		"morning":   DefaultSessionCron,
		"afternoon": "0 14 * * *",
		"evening":   "0 18 * * *",
		"night":     "0 20 * * *",
		"":          DefaultSessionCron,
	}
	for pref, want := range tests {
		if got := PreferenceCron(pref); got != want {
			t.Errorf("%q: expected %q, got %q", pref, want, got)
		}
	}
}
