package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewRequestsCmd создаёт группу команд для просмотра истории запросов.
func NewRequestsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Browse request history",
	}

	cmd.AddCommand(
		newRequestsListCmd(clientFn, outputFn),
		newRequestsGetCmd(clientFn, outputFn),
	)

	return cmd
}

func newRequestsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var studentID string
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processed requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			requests, err := client.ListRequests(ListRequestsOpts{
				StudentID: studentID,
				Limit:     limit,
				Offset:    offset,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "STUDENT", "TOPIC", "INTENT", "POLICY", "DEGRADED", "DURATION_MS", "CREATED"}
			rows := make([][]string, len(requests))
			for i, r := range requests {
				rows[i] = []string{
					r.ID, r.StudentID, r.Topic, r.Intent, r.Policy,
					strconv.FormatBool(r.Degraded), strconv.FormatInt(r.DurationMS, 10), r.CreatedAt,
				}
			}

			out.Print(headers, rows, requests)
			return nil
		},
	}

	cmd.Flags().StringVar(&studentID, "student", "", "Filter by student ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")

	return cmd
}

func newRequestsGetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a processed request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			detail, err := client.GetRequest(args[0])
			if err != nil {
				return err
			}

			headers := []string{"FIELD", "VALUE"}
			rows := [][]string{
				{"ID", detail.ID},
				{"Student", detail.StudentID},
				{"Text", detail.Text},
				{"Topic", detail.Topic},
				{"Intent", detail.Intent},
				{"Policy", detail.Policy},
				{"Degraded", strconv.FormatBool(detail.Degraded)},
				{"Duration", strconv.FormatInt(detail.DurationMS, 10) + "ms"},
				{"Started", detail.StartedAt},
				{"Finished", detail.FinishedAt},
			}

			out.Print(headers, rows, detail)
			return nil
		},
	}
}
