package domain

// Result — результат узла графа.
//
// Закрытое объединение: реализации есть только в этом пакете.
// У каждого варианта есть обязательный Fallback-конструктор.
type Result interface {
	Node() NodeID
	isResult()
}

// Resource — учебный материал.
type Resource struct {
	Title       string `json:"title"`
	Platform    string `json:"platform"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
	Reasoning   string `json:"reasoning,omitempty"`
}

// LearningResult — результат поиска материалов.
type LearningResult struct {
	Topic         string     `json:"topic"`
	Resources     []Resource `json:"resources"`
	Difficulty    string     `json:"difficulty"`
	EstimatedTime string     `json:"estimated_time"`

	// DocumentTopics — ключевые темы приложенного документа.
	DocumentTopics []string `json:"document_topics,omitempty"`
}

func (*LearningResult) Node() NodeID { return NodeLearning }
func (*LearningResult) isResult()    {}

// FallbackLearning возвращает пустой набор материалов.
func FallbackLearning(topic string) *LearningResult {
	return &LearningResult{
		Topic:         topic,
		Resources:     []Resource{},
		Difficulty:    "intermediate",
		EstimatedTime: "2 hours",
	}
}

// Recommendation — рекомендация по самочувствию.
type Recommendation struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

// WellnessBreak — рекомендуемый перерыв.
type WellnessBreak struct {
	Timing   string `json:"timing"`
	Duration string `json:"duration"`
	Activity string `json:"activity"`
	Purpose  string `json:"purpose"`
}

// WellnessResult — оценка самочувствия.
type WellnessResult struct {
	FatigueLevel    float64          `json:"fatigue_level"`
	StressLevel     float64          `json:"stress_level"`
	EmotionalState  string           `json:"emotional_state"`
	Recommendations []Recommendation `json:"recommendations"`
	Breaks          []WellnessBreak  `json:"wellness_breaks"`
}

func (*WellnessResult) Node() NodeID { return NodeWellness }
func (*WellnessResult) isResult()    {}

// FallbackWellness возвращает нейтральную оценку.
func FallbackWellness(string) *WellnessResult {
	return &WellnessResult{
		FatigueLevel:   0.3,
		StressLevel:    0.2,
		EmotionalState: "focused",
		Recommendations: []Recommendation{{
			Type:        "general",
			Priority:    "low",
			Title:       "Regular Breaks",
			Description: "Take a short break every hour and stay hydrated.",
			Duration:    "5 minutes",
		}},
		Breaks: []WellnessBreak{{
			Timing:   "every_60_minutes",
			Duration: "5 minutes",
			Activity: "eye_rest_walk",
			Purpose:  "general_wellness",
		}},
	}
}

// Question — вопрос квиза.
type Question struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Topic         string   `json:"topic"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// AssessmentResult — сгенерированный квиз.
type AssessmentResult struct {
	Topic         string     `json:"topic"`
	Difficulty    string     `json:"difficulty"`
	Questions     []Question `json:"questions"`
	EstimatedTime string     `json:"estimated_time"`
}

func (*AssessmentResult) Node() NodeID { return NodeAssessment }
func (*AssessmentResult) isResult()    {}

// FallbackAssessment возвращает квиз без вопросов.
func FallbackAssessment(topic string) *AssessmentResult {
	return &AssessmentResult{
		Topic:         topic,
		Difficulty:    "intermediate",
		Questions:     []Question{},
		EstimatedTime: "3 minutes",
	}
}

// SessionBreak — перерыв внутри учебной сессии.
type SessionBreak struct {
	Duration string `json:"duration"`
	Activity string `json:"activity"`
	Reason   string `json:"reason"`
}

// Session — одна учебная сессия.
type Session struct {
	ID         string        `json:"session_id"`
	Date       string        `json:"date"`
	Time       string        `json:"time"`
	Duration   string        `json:"duration"`
	Topic      string        `json:"topic"`
	Resources  []Resource    `json:"resources"`
	Activities []string      `json:"activities"`
	Break      *SessionBreak `json:"wellness_break,omitempty"`
}

// EventTime — момент события календаря.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Reminder — напоминание события.
type Reminder struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// CalendarEvent — событие календаря.
type CalendarEvent struct {
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Start       EventTime  `json:"start"`
	End         EventTime  `json:"end"`
	Reminders   []Reminder `json:"reminders,omitempty"`
}

// ScheduleResult — план занятий.
type ScheduleResult struct {
	Topic          string          `json:"topic"`
	TotalDuration  string          `json:"total_duration"`
	Difficulty     string          `json:"difficulty"`
	Sessions       []Session       `json:"sessions"`
	CalendarEvents []CalendarEvent `json:"calendar_events"`
}

func (*ScheduleResult) Node() NodeID { return NodeSchedule }
func (*ScheduleResult) isResult()    {}

// FallbackSchedule возвращает пустой план.
func FallbackSchedule(topic string) *ScheduleResult {
	return &ScheduleResult{
		Topic:          topic,
		TotalDuration:  "2 hours",
		Difficulty:     "intermediate",
		Sessions:       []Session{},
		CalendarEvents: []CalendarEvent{},
	}
}

// StudentProfile — профиль студента, вычисленный персонализацией.
type StudentProfile struct {
	StudentID          string  `json:"student_id"`
	LearningStyle      string  `json:"learning_style"`
	PacePreference     string  `json:"pace_preference"`
	PreferredChallenge string  `json:"preferred_challenge"`
	PreferredTime      string  `json:"preferred_time"`
	SessionMinutes     int     `json:"session_minutes"`
	BreakMinutes       int     `json:"break_minutes"`
	ConfidenceLevel    float64 `json:"confidence_level"`
	MotivationLevel    float64 `json:"motivation_level"`
	AverageScore       float64 `json:"average_score"`
}

// AdaptiveElement — элемент адаптивного плана.
type AdaptiveElement struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Benefit     string `json:"benefit"`
}

// AdaptivePlan — структура сессий под конкретного студента.
type AdaptivePlan struct {
	Topic                 string            `json:"topic"`
	Difficulty            string            `json:"difficulty"`
	SchedulePreference    string            `json:"schedule_preference"`
	SessionMinutes        int               `json:"duration_minutes"`
	BreakFrequencyMinutes int               `json:"break_frequency_minutes"`
	ResourcesPerSession   int               `json:"resources_per_session"`
	Elements              []AdaptiveElement `json:"adaptive_elements"`
}

// PersonalizationResult — рекомендации персонализации.
//
// Носит совещательный характер: learning и schedule учитывают его,
// если он успел появиться, но не ждут его структурно.
type PersonalizationResult struct {
	Profile            StudentProfile `json:"student_profile"`
	AdjustedDifficulty string         `json:"adjusted_difficulty"`
	PerformanceLevel   string         `json:"performance_level"`

	// PreferredTypes — типы материалов в порядке приоритета (video, article, book).
	PreferredTypes []string     `json:"preferred_types"`
	AdaptivePlan   AdaptivePlan `json:"adaptive_plan"`
	Reasoning      string       `json:"reasoning"`
}

func (*PersonalizationResult) Node() NodeID { return NodePersonalization }
func (*PersonalizationResult) isResult()    {}

// FallbackPersonalization возвращает профиль «по умолчанию».
func FallbackPersonalization(topic string) *PersonalizationResult {
	return &PersonalizationResult{
		Profile: StudentProfile{
			StudentID:          DefaultStudentID,
			LearningStyle:      "reading_writing",
			PacePreference:     "moderate",
			PreferredChallenge: "intermediate",
			PreferredTime:      "morning",
			SessionMinutes:     60,
			BreakMinutes:       60,
			ConfidenceLevel:    0.6,
			MotivationLevel:    0.6,
			AverageScore:       75,
		},
		AdjustedDifficulty: "intermediate",
		PerformanceLevel:   "good_performance",
		PreferredTypes:     []string{"article", "video", "book"},
		AdaptivePlan: AdaptivePlan{
			Topic:                 topic,
			Difficulty:            "intermediate",
			SchedulePreference:    "morning",
			SessionMinutes:        60,
			BreakFrequencyMinutes: 60,
			ResourcesPerSession:   2,
			Elements:              []AdaptiveElement{},
		},
		Reasoning: "Default study profile",
	}
}

// NextGoal — следующая цель студента.
type NextGoal struct {
	Goal     string `json:"goal"`
	Timeline string `json:"timeline"`
	Reward   string `json:"reward"`
}

// SupportElement — элемент поддержки.
type SupportElement struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// MotivationResult — мотивационное сообщение.
type MotivationResult struct {
	PrimaryMessage      string           `json:"primary_message"`
	Affirmation         string           `json:"affirmation"`
	ProgressCelebration string           `json:"progress_celebration"`
	Support             []SupportElement `json:"support_elements"`
	NextGoal            NextGoal         `json:"next_goal"`
}

func (*MotivationResult) Node() NodeID { return NodeMotivation }
func (*MotivationResult) isResult()    {}

// FallbackMotivation возвращает универсальную поддержку.
func FallbackMotivation(string) *MotivationResult {
	return &MotivationResult{
		PrimaryMessage:      "You've got this!",
		Affirmation:         "Learning is a journey, not a race. Celebrate your progress.",
		ProgressCelebration: "Every study session makes you stronger!",
		Support:             []SupportElement{},
		NextGoal: NextGoal{
			Goal:     "Complete your first study session",
			Timeline: "today",
			Reward:   "A sense of accomplishment",
		},
	}
}

// IsMissing сообщает, что результата нет: nil-интерфейс или
// nil-указатель одного из вариантов.
func IsMissing(r Result) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *LearningResult:
		return v == nil
	case *WellnessResult:
		return v == nil
	case *AssessmentResult:
		return v == nil
	case *ScheduleResult:
		return v == nil
	case *PersonalizationResult:
		return v == nil
	case *MotivationResult:
		return v == nil
	default:
		return false
	}
}

// FallbackFor возвращает fallback-результат узла.
// Для узла без обработчика (aggregate) возвращает nil.
func FallbackFor(node NodeID, topic string) Result {
	switch node {
	case NodeLearning:
		return FallbackLearning(topic)
	case NodeWellness:
		return FallbackWellness(topic)
	case NodeAssessment:
		return FallbackAssessment(topic)
	case NodeSchedule:
		return FallbackSchedule(topic)
	case NodePersonalization:
		return FallbackPersonalization(topic)
	case NodeMotivation:
		return FallbackMotivation(topic)
	default:
		return nil
	}
}
