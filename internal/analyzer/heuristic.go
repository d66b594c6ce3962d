package analyzer

import (
	"regexp"
	"strings"

	"github.com/shaiso/Mentor/internal/domain"
)

// DefaultTopic — тема, если из текста ничего не осталось.
const DefaultTopic = "general studies"

// fillerPrefixes снимаются с начала текста, длинные раньше коротких.
var fillerPrefixes = []string{
	"can you help me prepare for my",
	"can you help me prepare for",
	"can you help me with",
	"help me prepare for my",
	"help me prepare for",
	"help me study for my",
	"help me study for",
	"help me understand",
	"help me study",
	"help me learn",
	"help me with",
	"i need help with",
	"i want to learn about",
	"i want to learn",
	"i want to study",
	"find resources for",
	"find resources on",
	"teach me about",
	"teach me",
	"quiz me on",
	"test me on",
	"explain",
	"please",
}

var (
	assessmentHints = []string{"quiz", "test me", "practice questions", "mock test"}
	resourceHints   = []string{"resources", "videos", "books", "tutorial", "materials", "links", "articles"}

	timePattern = regexp.MustCompile(`\b(today|tomorrow|tonight|deadline|exam|midterm|finals?|this week|next week|in \d+ (hours?|days?|weeks?))\b`)
	punctTrim   = ".,!?;:\"' "
)

// Heuristic классифицирует текст без модели.
//
// Всегда возвращает непустую тему: intent по умолчанию STUDY_PLANNING,
// сложность moderate, персонализация нужна.
func Heuristic(text, document string) domain.Analysis {
	lower := strings.ToLower(strings.Join(strings.Fields(text), " "))

	return domain.Analysis{
		Topic:                heuristicTopic(lower),
		Intent:               heuristicIntent(lower),
		Complexity:           domain.ComplexityModerate,
		HasDocument:          strings.TrimSpace(document) != "",
		HasTimeConstraint:    timePattern.MatchString(lower),
		NeedsPersonalization: true,
		Source:               domain.SourceHeuristic,
	}
}

func heuristicTopic(lower string) string {
	topic := strings.Trim(lower, punctTrim)

	for changed := true; changed; {
		changed = false
		for _, prefix := range fillerPrefixes {
			if strings.HasPrefix(topic, prefix+" ") || topic == prefix {
				topic = strings.Trim(strings.TrimPrefix(topic, prefix), punctTrim)
				changed = true
			}
		}
	}
	topic = strings.TrimSuffix(topic, " please")
	topic = strings.Trim(topic, punctTrim)

	if topic == "" {
		return DefaultTopic
	}
	return topic
}

func heuristicIntent(lower string) domain.Intent {
	for _, hint := range assessmentHints {
		if strings.Contains(lower, hint) {
			return domain.IntentAssessment
		}
	}
	for _, hint := range resourceHints {
		if strings.Contains(lower, hint) {
			return domain.IntentResourceFinding
		}
	}
	return domain.IntentStudyPlanning
}
