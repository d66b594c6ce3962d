package agents

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shaiso/Mentor/internal/domain"
)

// DefaultQuestionCount — размер квиза по умолчанию.
const DefaultQuestionCount = 3

// Типы вопросов.
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionFillBlank      = "fill_blank"
)

// conceptTable — ключевые понятия по областям. Порядок важен:
// побеждает первое совпадение.
var conceptTable = []struct {
	key      string
	concepts []string
}{
	{"machine learning", []string{
		"supervised learning", "unsupervised learning", "reinforcement learning",
		"neural networks", "decision trees", "support vector machines",
		"regression", "classification", "clustering", "gradient descent",
	}},
	{"data science", []string{
		"data cleaning", "feature engineering", "model evaluation",
		"cross-validation", "overfitting", "bias-variance tradeoff",
	}},
	{"deep learning", []string{
		"convolutional neural networks", "recurrent neural networks",
		"transformers", "backpropagation", "activation functions",
	}},
}

var genericConcepts = []string{"algorithms", "data structures", "problem solving", "analysis", "optimization"}

// typeRotation — чередование типов вопросов по сложности.
var typeRotation = map[string][]string{
	DifficultyBeginner:     {QuestionMultipleChoice, QuestionTrueFalse, QuestionMultipleChoice},
	DifficultyIntermediate: {QuestionMultipleChoice, QuestionFillBlank, QuestionTrueFalse},
	DifficultyAdvanced:     {QuestionFillBlank, QuestionMultipleChoice, QuestionTrueFalse, QuestionFillBlank},
}

// AssessmentConfig — конфигурация обработчика assessment.
type AssessmentConfig struct {
	// QuestionCount — количество вопросов (default: 3).
	QuestionCount int
}

// Assessment генерирует квиз по теме и результату learning.
type Assessment struct {
	count int
}

// NewAssessment создаёт обработчик assessment.
func NewAssessment(cfg AssessmentConfig) *Assessment {
	count := cfg.QuestionCount
	if count <= 0 {
		count = DefaultQuestionCount
	}
	return &Assessment{count: count}
}

// Node возвращает узел обработчика.
func (a *Assessment) Node() domain.NodeID { return domain.NodeAssessment }

// Invoke строит квиз. Всегда использует финальный результат learning,
// в том числе fallback.
func (a *Assessment) Invoke(ctx context.Context, in *Input) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return BuildQuiz(in.Topic(), learningOf(in), a.count), nil
}

// BuildQuiz детерминированно собирает квиз.
func BuildQuiz(topic string, learning *domain.LearningResult, count int) *domain.AssessmentResult {
	difficulty := learning.Difficulty
	if _, ok := typeRotation[difficulty]; !ok {
		difficulty = DifficultyIntermediate
	}

	concepts := ExtractConcepts(topic)
	types := typeRotation[difficulty]
	s := seed(topic, difficulty)

	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		qs := s + uint32(i)
		concept := concepts[int(qs%uint32(len(concepts)))]
		q := domain.Question{
			ID:    fmt.Sprintf("q_%d", 1000+(s+uint32(i)*7919)%9000),
			Type:  types[i%len(types)],
			Topic: topic,
		}
		fillQuestion(&q, concept, concepts, qs)
		questions = append(questions, q)
	}

	return &domain.AssessmentResult{
		Topic:         topic,
		Difficulty:    difficulty,
		Questions:     questions,
		EstimatedTime: fmt.Sprintf("%d minutes", count*2),
	}
}

// ExtractConcepts возвращает понятия для темы из таблицы или общий набор.
func ExtractConcepts(topic string) []string {
	lower := strings.ToLower(topic)
	for _, row := range conceptTable {
		if strings.Contains(lower, row.key) {
			return row.concepts
		}
	}
	return genericConcepts
}

func fillQuestion(q *domain.Question, concept string, concepts []string, s uint32) {
	switch q.Type {
	case QuestionMultipleChoice:
		options := distractors(concept, concepts, 3)
		correct := int(s % 4)
		options = slices.Insert(options, min(correct, len(options)), concept)

		q.Question = fmt.Sprintf("Which of the following is a key concept in %s?", q.Topic)
		q.Options = options
		q.CorrectAnswer = concept
		q.Explanation = fmt.Sprintf("%s is a fundamental concept in %s.", concept, q.Topic)
	case QuestionTrueFalse:
		q.Question = fmt.Sprintf("%s is a fundamental concept in %s.", capitalize(concept), q.Topic)
		q.CorrectAnswer = "true"
		q.Explanation = fmt.Sprintf("This statement about %s is correct.", concept)
	default:
		q.Question = fmt.Sprintf("%s is a technique used to _____.", capitalize(concept))
		q.CorrectAnswer = "solve computational problems"
		q.Explanation = fmt.Sprintf("%s is designed to solve computational problems.", capitalize(concept))
	}
}

// distractors выбирает n понятий, отличных от правильного.
func distractors(concept string, concepts []string, n int) []string {
	out := make([]string, 0, n)
	for _, pool := range [][]string{concepts, genericConcepts} {
		for _, c := range pool {
			if len(out) == n {
				return out
			}
			if c != concept && !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
