package domain

import "strings"

// Intent — намерение, стоящее за запросом.
type Intent string

const (
	IntentStudyPlanning   Intent = "STUDY_PLANNING"
	IntentResourceFinding Intent = "RESOURCE_FINDING"
	IntentAssessment      Intent = "ASSESSMENT"
	IntentGeneralHelp     Intent = "GENERAL_HELP"
)

// ParseIntent парсит строку в Intent (регистр не важен).
// Второе значение false, если строка не распознана.
func ParseIntent(s string) (Intent, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STUDY_PLANNING":
		return IntentStudyPlanning, true
	case "RESOURCE_FINDING":
		return IntentResourceFinding, true
	case "ASSESSMENT":
		return IntentAssessment, true
	case "GENERAL_HELP":
		return IntentGeneralHelp, true
	default:
		return Intent(s), false
	}
}

// Complexity — оценка сложности запроса.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// ParseComplexity парсит строку в Complexity. Неизвестные значения → moderate.
func ParseComplexity(s string) Complexity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return ComplexitySimple
	case "complex":
		return ComplexityComplex
	default:
		return ComplexityModerate
	}
}

// AnalysisSource — откуда получен результат анализа.
type AnalysisSource string

const (
	SourceLLM       AnalysisSource = "llm"
	SourceHeuristic AnalysisSource = "heuristic"
	SourceCache     AnalysisSource = "cache"
)

// Analysis — результат классификации запроса.
//
// Вычисляется один раз на запрос и дальше только читается.
type Analysis struct {
	Topic                string         `json:"topic"`
	Intent               Intent         `json:"intent"`
	Complexity           Complexity     `json:"complexity"`
	HasDocument          bool           `json:"has_document"`
	HasTimeConstraint    bool           `json:"has_time_constraint"`
	NeedsPersonalization bool           `json:"needs_personalization"`
	Source               AnalysisSource `json:"source"`

	// Text — текст запроса без блока документа.
	Text string `json:"-"`

	// Document — извлечённый текст документа.
	Document string `json:"-"`
}
