package domain

// Ключи верхнего уровня ответа. Присутствуют в каждом ответе.
const (
	KeyGreeting            = "greeting"
	KeyStudyPlan           = "study_plan"
	KeyLearningResources   = "learning_resources"
	KeyWellnessInsights    = "wellness_insights"
	KeyAssessment          = "assessment"
	KeyMotivationalSupport = "motivational_support"
	KeyCalendarEvents      = "calendar_events"
	KeyMetadata            = "metadata"
)

// ResponseKeys возвращает все обязательные ключи ответа.
func ResponseKeys() []string {
	return []string{
		KeyGreeting,
		KeyStudyPlan,
		KeyLearningResources,
		KeyWellnessInsights,
		KeyAssessment,
		KeyMotivationalSupport,
		KeyCalendarEvents,
		KeyMetadata,
	}
}

// Response — ответ фиксированной формы.
//
// Все поля-срезы всегда не nil, чтобы в JSON не появлялся null.
type Response struct {
	Greeting            string          `json:"greeting"`
	StudyPlan           StudyPlan       `json:"study_plan"`
	LearningResources   LearningView    `json:"learning_resources"`
	WellnessInsights    WellnessView    `json:"wellness_insights"`
	Assessment          AssessmentView  `json:"assessment"`
	MotivationalSupport MotivationView  `json:"motivational_support"`
	CalendarEvents      []CalendarEvent `json:"calendar_events"`
	Metadata            Metadata        `json:"metadata"`
}

// StudyPlan — раздел study_plan.
type StudyPlan struct {
	Topic              string       `json:"topic"`
	Duration           string       `json:"duration"`
	Difficulty         string       `json:"difficulty"`
	AdjustedDifficulty string       `json:"adjusted_difficulty"`
	Sessions           []Session    `json:"sessions"`
	AdaptivePlan       AdaptivePlan `json:"adaptive_plan"`
}

// LearningView — раздел learning_resources.
type LearningView struct {
	Resources     []Resource `json:"resources"`
	Difficulty    string     `json:"difficulty"`
	EstimatedTime string     `json:"estimated_time"`
}

// WellnessView — раздел wellness_insights.
type WellnessView struct {
	FatigueLevel    float64          `json:"fatigue_level"`
	StressLevel     float64          `json:"stress_level"`
	EmotionalState  string           `json:"emotional_state"`
	Recommendations []Recommendation `json:"recommendations"`
	Breaks          []WellnessBreak  `json:"wellness_breaks"`
}

// AssessmentView — раздел assessment.
type AssessmentView struct {
	AvailableQuiz bool       `json:"available_quiz"`
	QuestionCount int        `json:"question_count"`
	Difficulty    string     `json:"difficulty"`
	EstimatedTime string     `json:"estimated_time"`
	Questions     []Question `json:"questions"`
}

// MotivationView — раздел motivational_support.
type MotivationView struct {
	PrimaryMessage string           `json:"primary_message"`
	Affirmation    string           `json:"affirmation"`
	Celebration    string           `json:"progress_celebration"`
	Support        []SupportElement `json:"support_elements"`
	NextGoal       NextGoal         `json:"next_goal"`
}

// Metadata — раздел metadata.
type Metadata struct {
	SessionID       string           `json:"session_id"`
	RequestID       string           `json:"request_id,omitempty"`
	StudentID       string           `json:"student_id"`
	Topic           string           `json:"topic"`
	Intent          Intent           `json:"intent"`
	Complexity      Complexity       `json:"complexity"`
	AnalysisSource  AnalysisSource   `json:"analysis_source"`
	Policy          string           `json:"policy"`
	ActiveNodes     []NodeID         `json:"active_nodes"`
	Errors          []ErrorInfo      `json:"errors"`
	NodeDurationsMS map[NodeID]int64 `json:"node_durations_ms"`
	HasDocument     bool             `json:"has_document"`
	DocumentPreview string           `json:"document_preview,omitempty"`
}
