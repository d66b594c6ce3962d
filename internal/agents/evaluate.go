package agents

import (
	"math"
	"strings"

	"github.com/shaiso/Mentor/internal/domain"
)

// Уровни результата квиза.
const (
	QuizExcellent        = "excellent"
	QuizGood             = "good"
	QuizNeedsImprovement = "needs_improvement"
	QuizStruggling       = "struggling"
)

// quizThresholds — нижние границы уровней в процентах.
type quizThresholds struct {
	excellent, good, needsWork float64
}

var thresholdsByDifficulty = map[string]quizThresholds{
	DifficultyBeginner:     {excellent: 90, good: 75, needsWork: 60},
	DifficultyIntermediate: {excellent: 85, good: 70, needsWork: 55},
	DifficultyAdvanced:     {excellent: 80, good: 65, needsWork: 50},
}

var quizFeedback = map[string]struct {
	text            string
	recommendations []string
}{
	QuizExcellent: {
		text:            "Outstanding performance! You have a strong grasp of the material.",
		recommendations: []string{"Consider advancing to more challenging material", "Help peers who are struggling"},
	},
	QuizGood: {
		text:            "Good work! You understand most concepts but could benefit from more practice.",
		recommendations: []string{"Review the concepts you missed", "Practice with similar problems"},
	},
	QuizNeedsImprovement: {
		text: "Keep working on these concepts. Practice and review will help improve your understanding.",
		recommendations: []string{
			"Revisit the learning resources",
			"Focus on fundamental concepts",
			"Ask for clarification on difficult topics",
		},
	},
	QuizStruggling: {
		text: "This topic needs another pass. Start again from the basics and take it step by step.",
		recommendations: []string{
			"Revisit the learning resources",
			"Study the explanations for every missed question",
			"Retake the quiz after a short review session",
		},
	},
}

// EvaluateQuiz проверяет ответы студента по квизу.
//
// answers сопоставляются с вопросами по порядку; лишние ответы
// игнорируются. Пустой квиз даёт нулевой результат.
func EvaluateQuiz(quiz *domain.AssessmentResult, answers []string) domain.QuizEvaluation {
	if quiz == nil {
		quiz = domain.FallbackAssessment("")
	}

	feedback := make([]domain.AnswerFeedback, 0, len(quiz.Questions))
	correct := 0
	for i, q := range quiz.Questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		ok := CheckAnswer(q, answer)
		if ok {
			correct++
		}
		feedback = append(feedback, domain.AnswerFeedback{
			QuestionID:    q.ID,
			Correct:       ok,
			StudentAnswer: answer,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	var score float64
	if total := len(quiz.Questions); total > 0 {
		score = math.Round(float64(correct)/float64(total)*10000) / 100
	}
	level := QuizLevel(score, quiz.Difficulty)
	fb := quizFeedback[level]

	return domain.QuizEvaluation{
		Topic:            quiz.Topic,
		Difficulty:       quiz.Difficulty,
		Score:            score,
		CorrectAnswers:   correct,
		TotalQuestions:   len(quiz.Questions),
		PerformanceLevel: level,
		Feedback:         fb.text,
		Recommendations:  append([]string(nil), fb.recommendations...),
		DetailedFeedback: feedback,
	}
}

// CheckAnswer проверяет ответ с учётом типа вопроса.
func CheckAnswer(q domain.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}

	switch q.Type {
	case QuestionMultipleChoice, QuestionTrueFalse:
		return strings.EqualFold(answer, strings.TrimSpace(q.CorrectAnswer))
	case QuestionFillBlank:
		// достаточно совпадения по вхождению
		return strings.Contains(strings.ToLower(q.CorrectAnswer), strings.ToLower(answer))
	default:
		return false
	}
}

// QuizLevel переводит процент в уровень. Неизвестная сложность
// оценивается по порогам advanced.
func QuizLevel(score float64, difficulty string) string {
	t, ok := thresholdsByDifficulty[difficulty]
	if !ok {
		t = thresholdsByDifficulty[DifficultyAdvanced]
	}

	switch {
	case score >= t.excellent:
		return QuizExcellent
	case score >= t.good:
		return QuizGood
	case score >= t.needsWork:
		return QuizNeedsImprovement
	default:
		return QuizStruggling
	}
}
