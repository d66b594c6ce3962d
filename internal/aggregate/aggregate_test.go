package aggregate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shaiso/Mentor/internal/domain"
)

func testSnapshot() Snapshot {
	return Snapshot{
		RequestID: "req-1",
		Request:   domain.NewRequest("Help me prepare for my Machine Learning exam", "student_1", ""),
		Analysis: domain.Analysis{
			Topic:      "machine learning exam",
			Intent:     domain.IntentStudyPlanning,
			Complexity: domain.ComplexityModerate,
			Source:     domain.SourceHeuristic,
		},
		Policy:      "comprehensive",
		ActiveNodes: domain.HandlerNodes(),
		Results: map[domain.NodeID]domain.Result{
			domain.NodeLearning: &domain.LearningResult{
				Topic:      "machine learning exam",
				Difficulty: "advanced",
				Resources: []domain.Resource{
					{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: "d"}, {Title: "e"}, {Title: "f"},
				},
				EstimatedTime: "8 hours",
			},
			domain.NodeWellness: &domain.WellnessResult{
				FatigueLevel:   0.4,
				StressLevel:    0.2,
				EmotionalState: "focused",
				Recommendations: []domain.Recommendation{
					{Type: "hydration"}, {Type: "movement"}, {Type: "sleep"},
				},
			},
			domain.NodeAssessment: &domain.AssessmentResult{
				Topic:         "machine learning exam",
				Difficulty:    "advanced",
				Questions:     []domain.Question{{ID: "q_1"}, {ID: "q_2"}},
				EstimatedTime: "4 minutes",
			},
		},
		Errors: []domain.ErrorInfo{
			{Node: domain.NodeSchedule, Kind: domain.ErrorKindTimeout, Message: "slow"},
			{Node: domain.NodeMotivation, Kind: domain.ErrorKindFailure, Message: "down"},
		},
	}
}

func TestBuild_Projections(t *testing.T) {
	resp := Build(testSnapshot())

	if resp.Greeting != Greeting {
		t.Errorf("unexpected greeting %q", resp.Greeting)
	}
	if got := len(resp.LearningResources.Resources); got != maxResources {
		t.Errorf("expected %d resources, got %d", maxResources, got)
	}
	if got := len(resp.WellnessInsights.Recommendations); got != 2 {
		t.Errorf("expected top 2 recommendations, got %d", got)
	}
	if !resp.Assessment.AvailableQuiz || resp.Assessment.QuestionCount != 2 {
		t.Errorf("expected quiz with 2 questions, got %+v", resp.Assessment)
	}
	if resp.StudyPlan.Difficulty != "advanced" {
		t.Errorf("expected learning difficulty, got %q", resp.StudyPlan.Difficulty)
	}
	if resp.StudyPlan.Topic != "machine learning exam" {
		t.Errorf("unexpected topic %q", resp.StudyPlan.Topic)
	}
}

func TestBuild_MissingResultsUseDefaults(t *testing.T) {
	snap := testSnapshot()
	snap.Results = nil

	resp := Build(snap)

	if resp.StudyPlan.Duration != defaultDuration {
		t.Errorf("expected default duration, got %q", resp.StudyPlan.Duration)
	}
	if resp.StudyPlan.Sessions == nil || resp.CalendarEvents == nil {
		t.Error("slices must not be nil")
	}
	if resp.WellnessInsights.EmotionalState != defaultEmotion {
		t.Errorf("expected default emotion, got %q", resp.WellnessInsights.EmotionalState)
	}
	if resp.Assessment.AvailableQuiz || resp.Assessment.QuestionCount != 0 {
		t.Errorf("expected no quiz, got %+v", resp.Assessment)
	}
	if resp.Assessment.EstimatedTime != defaultQuizTime {
		t.Errorf("expected default quiz time, got %q", resp.Assessment.EstimatedTime)
	}
	if resp.MotivationalSupport.PrimaryMessage == "" || resp.MotivationalSupport.NextGoal.Goal == "" {
		t.Error("motivation defaults should be filled")
	}
}

func TestBuild_ForeignResultIgnored(t *testing.T) {
	snap := testSnapshot()
	// под ключом learning лежит результат другого узла
	snap.Results[domain.NodeLearning] = domain.FallbackWellness("x")

	resp := Build(snap)

	if len(resp.LearningResources.Resources) != 0 {
		t.Errorf("expected fallback resources, got %d", len(resp.LearningResources.Resources))
	}
}

func TestBuild_Idempotent(t *testing.T) {
	snap := testSnapshot()

	first := Build(snap)
	second := Build(snap)

	if !reflect.DeepEqual(first, second) {
		t.Error("two builds over the same snapshot differ")
	}

	// сортировка ошибок не меняет снимок
	if snap.Errors[0].Node != domain.NodeSchedule {
		t.Error("Build must not reorder snapshot errors")
	}
}

func TestBuild_ErrorsSortedByNode(t *testing.T) {
	resp := Build(testSnapshot())

	errs := resp.Metadata.Errors
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if errs[0].Node != domain.NodeMotivation || errs[1].Node != domain.NodeSchedule {
		t.Errorf("errors not sorted: %v", errs)
	}
}

func TestBuild_TypedNilTreatedAsMissing(t *testing.T) {
	snap := testSnapshot()
	snap.Results[domain.NodeLearning] = (*domain.LearningResult)(nil)
	snap.Results[domain.NodeWellness] = (*domain.WellnessResult)(nil)

	resp := Build(snap)

	if resp.LearningResources.Resources == nil || len(resp.LearningResources.Resources) != 0 {
		t.Errorf("expected fallback resources, got %v", resp.LearningResources.Resources)
	}
	if resp.WellnessInsights.EmotionalState != defaultEmotion {
		t.Errorf("expected default emotion, got %q", resp.WellnessInsights.EmotionalState)
	}
}

func TestBuild_FatigueOutOfRange(t *testing.T) {
	snap := testSnapshot()
	snap.Results[domain.NodeWellness] = &domain.WellnessResult{FatigueLevel: 1.7}

	resp := Build(snap)

	if resp.WellnessInsights.FatigueLevel != defaultFatigue {
		t.Errorf("expected default fatigue, got %v", resp.WellnessInsights.FatigueLevel)
	}
}

func TestSessionID(t *testing.T) {
	a := SessionID("student_1", "hello")
	b := SessionID("student_1", "hello")
	c := SessionID("student_1", "another text")

	if a != b {
		t.Errorf("session id not stable: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("different texts should usually differ: %s", a)
	}
	if !strings.HasPrefix(a, "session_student_1_") {
		t.Errorf("unexpected format %q", a)
	}
}

func TestBuild_Metadata(t *testing.T) {
	snap := testSnapshot()
	snap.Request.StudentID = ""
	snap.Analysis.HasDocument = true
	snap.Analysis.Document = strings.Repeat("x", 1200)

	md := Build(snap).Metadata

	if md.StudentID != domain.DefaultStudentID {
		t.Errorf("expected default student id, got %q", md.StudentID)
	}
	if !md.HasDocument || !strings.HasSuffix(md.DocumentPreview, "...") {
		t.Errorf("expected truncated preview, got %d chars", len(md.DocumentPreview))
	}
	if md.RequestID != "req-1" || md.Policy != "comprehensive" {
		t.Errorf("unexpected metadata: %+v", md)
	}
}
