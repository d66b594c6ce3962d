package domain

// AnswerFeedback — разбор ответа на один вопрос.
type AnswerFeedback struct {
	QuestionID    string `json:"question_id"`
	Correct       bool   `json:"correct"`
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// QuizEvaluation — результат проверки квиза.
//
// Score — процент правильных ответов от числа вопросов (0..100).
// Вопросы без ответа считаются неверными.
type QuizEvaluation struct {
	Topic            string           `json:"topic"`
	Difficulty       string           `json:"difficulty"`
	Score            float64          `json:"score"`
	CorrectAnswers   int              `json:"correct_answers"`
	TotalQuestions   int              `json:"total_questions"`
	PerformanceLevel string           `json:"performance_level"`
	Feedback         string           `json:"feedback"`
	Recommendations  []string         `json:"recommendations"`
	DetailedFeedback []AnswerFeedback `json:"detailed_feedback"`
}
