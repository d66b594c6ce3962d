package agents

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Уровни сложности.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

var difficultyLevels = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

var (
	advancedTopics = []string{"machine learning", "deep learning", "quantum computing", "advanced algorithms"}
	beginnerTopics = []string{"html", "css", "basic programming", "introduction"}
)

// EstimateDifficulty оценивает сложность темы по ключевым словам.
func EstimateDifficulty(topic string) string {
	lower := strings.ToLower(topic)
	for _, t := range advancedTopics {
		if strings.Contains(lower, t) {
			return DifficultyAdvanced
		}
	}
	for _, t := range beginnerTopics {
		if strings.Contains(lower, t) {
			return DifficultyBeginner
		}
	}
	return DifficultyIntermediate
}

// difficultyIndex возвращает позицию уровня; неизвестный → intermediate.
func difficultyIndex(d string) int {
	for i, level := range difficultyLevels {
		if level == d {
			return i
		}
	}
	return 1
}

// seed — детерминированное зерно выбора из набора строк.
func seed(parts ...string) uint32 {
	h := fnv.New32a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum32()
}

// pick выбирает элемент списка по зерну.
func pick[T any](items []T, s uint32) T {
	return items[int(s%uint32(len(items)))]
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// round2 округляет до сотых, чтобы в JSON не было 0.30000000000000004.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify превращает тему в фрагмент URL.
func slugify(topic string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(topic), "-"), "-")
	if slug == "" {
		return "study"
	}
	return slug
}
