// Package aggregate собирает итоговый ответ из результатов узлов.
package aggregate

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/shaiso/Mentor/internal/analyzer"
	"github.com/shaiso/Mentor/internal/domain"
)

// Значения по умолчанию для разделов ответа.
const (
	Greeting = "Here's your personalized study plan! 📚"

	defaultDuration   = "2 hours"
	defaultDifficulty = "intermediate"
	defaultEmotion    = "focused"
	defaultFatigue    = 0.3
	defaultQuizTime   = "3 minutes"
	defaultMessage    = "You've got this!"
	defaultGoal       = "Complete your first study session"

	maxResources       = 5
	maxRecommendations = 2
	sessionIDModulo    = 10000
)

// Snapshot — всё, что нужно для сборки ответа.
//
// Снимок не изменяется сборкой: Build можно вызывать повторно.
type Snapshot struct {
	RequestID   string
	Request     domain.Request
	Analysis    domain.Analysis
	Policy      string
	ActiveNodes []domain.NodeID
	Results     map[domain.NodeID]domain.Result
	Errors      []domain.ErrorInfo
	Runs        []domain.NodeRun
}

// Build собирает ответ фиксированной формы. Чистая и тотальная:
// отсутствующий или чужой результат заменяется значением по умолчанию.
func Build(s Snapshot) domain.Response {
	topic := s.Analysis.Topic

	learning := resultOf(s, domain.NodeLearning, domain.FallbackLearning)
	wellness := resultOf(s, domain.NodeWellness, domain.FallbackWellness)
	quiz := resultOf(s, domain.NodeAssessment, domain.FallbackAssessment)
	schedule := resultOf(s, domain.NodeSchedule, domain.FallbackSchedule)
	personal := resultOf(s, domain.NodePersonalization, domain.FallbackPersonalization)
	motivation := resultOf(s, domain.NodeMotivation, domain.FallbackMotivation)

	return domain.Response{
		Greeting:            Greeting,
		StudyPlan:           studyPlan(topic, learning, schedule, personal),
		LearningResources:   learningView(learning),
		WellnessInsights:    wellnessView(wellness),
		Assessment:          assessmentView(quiz),
		MotivationalSupport: motivationView(motivation),
		CalendarEvents:      nonNil(schedule.CalendarEvents),
		Metadata:            metadata(s),
	}
}

// resultOf достаёт результат нужного типа или строит fallback.
func resultOf[T domain.Result](s Snapshot, id domain.NodeID, fallback func(string) T) T {
	if r, ok := s.Results[id]; ok && !domain.IsMissing(r) {
		if typed, ok := r.(T); ok {
			return typed
		}
	}
	return fallback(s.Analysis.Topic)
}

func studyPlan(topic string, l *domain.LearningResult, sch *domain.ScheduleResult, p *domain.PersonalizationResult) domain.StudyPlan {
	plan := p.AdaptivePlan
	plan.Elements = nonNil(plan.Elements)

	return domain.StudyPlan{
		Topic:              orDefault(topic, l.Topic),
		Duration:           orDefault(sch.TotalDuration, defaultDuration),
		Difficulty:         orDefault(l.Difficulty, defaultDifficulty),
		AdjustedDifficulty: orDefault(p.AdjustedDifficulty, defaultDifficulty),
		Sessions:           nonNil(sch.Sessions),
		AdaptivePlan:       plan,
	}
}

func learningView(l *domain.LearningResult) domain.LearningView {
	resources := nonNil(l.Resources)
	if len(resources) > maxResources {
		resources = resources[:maxResources]
	}
	return domain.LearningView{
		Resources:     resources,
		Difficulty:    orDefault(l.Difficulty, defaultDifficulty),
		EstimatedTime: orDefault(l.EstimatedTime, defaultDuration),
	}
}

func wellnessView(w *domain.WellnessResult) domain.WellnessView {
	recs := nonNil(w.Recommendations)
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	fatigue := w.FatigueLevel
	if fatigue < 0 || fatigue > 1 {
		fatigue = defaultFatigue
	}

	return domain.WellnessView{
		FatigueLevel:    fatigue,
		StressLevel:     w.StressLevel,
		EmotionalState:  orDefault(w.EmotionalState, defaultEmotion),
		Recommendations: recs,
		Breaks:          nonNil(w.Breaks),
	}
}

func assessmentView(a *domain.AssessmentResult) domain.AssessmentView {
	questions := nonNil(a.Questions)
	return domain.AssessmentView{
		AvailableQuiz: len(questions) > 0,
		QuestionCount: len(questions),
		Difficulty:    orDefault(a.Difficulty, defaultDifficulty),
		EstimatedTime: orDefault(a.EstimatedTime, defaultQuizTime),
		Questions:     questions,
	}
}

func motivationView(m *domain.MotivationResult) domain.MotivationView {
	goal := m.NextGoal
	goal.Goal = orDefault(goal.Goal, defaultGoal)

	return domain.MotivationView{
		PrimaryMessage: orDefault(m.PrimaryMessage, defaultMessage),
		Affirmation:    m.Affirmation,
		Celebration:    m.ProgressCelebration,
		Support:        nonNil(m.Support),
		NextGoal:       goal,
	}
}

func metadata(s Snapshot) domain.Metadata {
	studentID := orDefault(s.Request.StudentID, domain.DefaultStudentID)

	errs := make([]domain.ErrorInfo, len(s.Errors))
	copy(errs, s.Errors)
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Node < errs[j].Node })

	active := make([]domain.NodeID, len(s.ActiveNodes))
	copy(active, s.ActiveNodes)

	durations := make(map[domain.NodeID]int64, len(s.Runs))
	for i := range s.Runs {
		run := &s.Runs[i]
		if run.Status == domain.NodeStatusSkipped {
			continue
		}
		durations[run.Node] = run.Duration().Milliseconds()
	}

	md := domain.Metadata{
		SessionID:       SessionID(studentID, s.Request.Text),
		RequestID:       s.RequestID,
		StudentID:       studentID,
		Topic:           s.Analysis.Topic,
		Intent:          s.Analysis.Intent,
		Complexity:      s.Analysis.Complexity,
		AnalysisSource:  s.Analysis.Source,
		Policy:          s.Policy,
		ActiveNodes:     active,
		Errors:          errs,
		NodeDurationsMS: durations,
		HasDocument:     s.Analysis.HasDocument,
	}
	if s.Analysis.Document != "" {
		md.DocumentPreview = analyzer.Preview(s.Analysis.Document)
	}
	return md
}

// SessionID — стабильный идентификатор сессии для пары студент/текст.
func SessionID(studentID, text string) string {
	h := fnv.New32a()
	h.Write([]byte(text))
	return fmt.Sprintf("session_%s_%d", studentID, h.Sum32()%sessionIDModulo)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
