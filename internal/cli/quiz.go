package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewQuizCmd создаёт группу команд для работы с квизами.
func NewQuizCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Work with generated quizzes",
	}

	cmd.AddCommand(newQuizEvaluateCmd(clientFn, outputFn))

	return cmd
}

func newQuizEvaluateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var studentID string

	cmd := &cobra.Command{
		Use:   "evaluate FILE [ANSWER...]",
		Short: "Check answers to a quiz",
		Long: `Check answers to a quiz.

FILE is either the JSON output of "mentor assist --json" or a bare quiz
object with "topic", "difficulty" and "questions". Answers are matched to
questions in order; missing answers count as wrong.`,
		Example: `  mentor assist "Quiz me on machine learning" --json > answer.json
  mentor quiz evaluate answer.json "neural networks" true "solve problems" --student student_1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read quiz: %w", err)
			}
			quiz, err := extractQuiz(data)
			if err != nil {
				return err
			}

			eval, err := client.EvaluateQuiz(QuizEvaluateRequest{
				StudentID: studentID,
				Quiz:      quiz,
				Answers:   args[1:],
			})
			if err != nil {
				return err
			}

			if out.IsJSON() {
				out.JSON(eval)
				return nil
			}
			printEvaluation(out, eval)
			return nil
		},
	}

	cmd.Flags().StringVar(&studentID, "student", "", "Student ID to record the score for")

	return cmd
}

// extractQuiz достаёт квиз из ответа assist или возвращает файл как есть.
// Тема квиза берётся из study_plan, если в разделе assessment её нет.
func extractQuiz(data []byte) (json.RawMessage, error) {
	var doc struct {
		Assessment map[string]any `json:"assessment"`
		StudyPlan  struct {
			Topic string `json:"topic"`
		} `json:"study_plan"`
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse quiz: %w", err)
	}

	if doc.Assessment != nil {
		if _, ok := doc.Assessment["topic"]; !ok {
			doc.Assessment["topic"] = doc.StudyPlan.Topic
		}
		return json.Marshal(doc.Assessment)
	}
	if len(doc.Questions) == 0 {
		return nil, errors.New("file contains no quiz questions")
	}
	return json.RawMessage(data), nil
}

func printEvaluation(out *Output, eval *QuizEvaluation) {
	rows := make([][]string, len(eval.DetailedFeedback))
	for i, f := range eval.DetailedFeedback {
		rows[i] = []string{f.QuestionID, strconv.FormatBool(f.Correct), f.StudentAnswer, f.CorrectAnswer}
	}
	out.Table([]string{"QUESTION", "CORRECT", "ANSWER", "EXPECTED"}, rows)

	out.Line("\nscore %.1f%% (%d/%d), %s", eval.Score, eval.CorrectAnswers, eval.TotalQuestions, eval.PerformanceLevel)
	out.Line("%s", eval.Feedback)
	for _, r := range eval.Recommendations {
		out.Line("  - %s", r)
	}
	if eval.Recorded {
		out.Success("score recorded")
	}
}
