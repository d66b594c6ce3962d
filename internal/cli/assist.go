package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewAssistCmd создаёт команду отправки запроса ассистенту.
func NewAssistCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var studentID string
	var documentPath string
	var async bool

	cmd := &cobra.Command{
		Use:   "assist TEXT",
		Short: "Ask the study assistant",
		Example: `  mentor assist "Help me prepare for my Machine Learning exam" --student student_1
  mentor assist "Summarize this chapter" --document chapter3.txt --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := AssistRequest{Text: args[0], StudentID: studentID}
			if documentPath != "" {
				data, err := os.ReadFile(documentPath)
				if err != nil {
					return fmt.Errorf("read document: %w", err)
				}
				req.Document = string(data)
			}

			if async {
				accepted, err := client.AssistAsync(req)
				if err != nil {
					return err
				}
				out.Print(
					[]string{"REQUEST_ID", "STATUS"},
					[][]string{{accepted.RequestID, accepted.Status}},
					accepted,
				)
				return nil
			}

			resp, err := client.Assist(req)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				out.JSON(json.RawMessage(resp.Raw))
				return nil
			}
			printAssist(out, resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&studentID, "student", "", "Student ID")
	cmd.Flags().StringVar(&documentPath, "document", "", "Path to a text file to attach")
	cmd.Flags().BoolVar(&async, "async", false, "Queue the request instead of waiting for the answer")

	return cmd
}

func printAssist(out *Output, resp *AssistResponse) {
	out.Line("%s", resp.Greeting)

	plan := resp.StudyPlan
	out.Section(fmt.Sprintf("Study plan: %s (%s, %s)", plan.Topic, plan.Duration, plan.Difficulty))
	sessions := make([][]string, len(plan.Sessions))
	for i, s := range plan.Sessions {
		sessions[i] = []string{s.ID, s.Date, s.Time, s.Duration}
	}
	out.Table([]string{"SESSION", "DATE", "TIME", "DURATION"}, sessions)

	out.Section("Resources")
	resources := make([][]string, len(resp.LearningResources.Resources))
	for i, r := range resp.LearningResources.Resources {
		resources[i] = []string{r.Title, r.Platform, r.URL}
	}
	out.Table([]string{"TITLE", "PLATFORM", "URL"}, resources)

	a := resp.Assessment
	out.Section("Assessment")
	if a.AvailableQuiz {
		out.Line("%d questions, about %s", a.QuestionCount, a.EstimatedTime)
	} else {
		out.Line("no quiz available")
	}

	out.Section("Motivation")
	out.Line("%s", resp.MotivationalSupport.PrimaryMessage)

	md := resp.Metadata
	if len(md.Errors) > 0 {
		out.Section("Degraded nodes")
		rows := make([][]string, len(md.Errors))
		for i, e := range md.Errors {
			rows[i] = []string{e.Node, e.Kind, e.Message}
		}
		out.Table([]string{"NODE", "KIND", "MESSAGE"}, rows)
	}

	out.Line("\nrequest %s, intent %s, policy %s", md.RequestID, md.Intent, md.Policy)
}
