package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const assistBody = `{"data":{
	"greeting":"Hello! I'm your AI study assistant.",
	"study_plan":{"topic":"machine learning exam","duration":"2 hours","difficulty":"intermediate",
		"sessions":[{"session_id":"s1","date":"2025-03-11","time":"09:00","duration":"2 hours"}]},
	"learning_resources":{"resources":[{"title":"ML Course","platform":"Coursera","url":"https://example.com"}]},
	"wellness_insights":{},
	"assessment":{"available_quiz":true,"question_count":3,"estimated_time":"5 minutes"},
	"motivational_support":{"primary_message":"You've got this!"},
	"calendar_events":[],
	"metadata":{"request_id":"r1","intent":"STUDY_PLANNING","policy":"comprehensive",
		"errors":[{"node":"motivation","kind":"failure","message":"down"}]}
}}`

// fakeAPI поднимает сервер и запоминает последнее тело POST.
func fakeAPI(t *testing.T, got *AssistRequest) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/assist", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if r.URL.Query().Get("async") == "true" {
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"data":{"request_id":"r2","status":"queued"}}`))
			return
		}
		w.Write([]byte(assistBody))
	})
	mux.HandleFunc("GET /api/v1/requests", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("student_id") != "student_1" || r.URL.Query().Get("limit") != "2" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":[{"id":"r1","student_id":"student_1","topic":"graphs","degraded":true}],"total":1}`))
	})
	mux.HandleFunc("GET /api/v1/requests/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"request not found"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, jsonMode bool, cmd func(func() *Client, func() *Output) *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	c := cmd(
		func() *Client { return NewClient(srv.URL) },
		func() *Output { return NewOutputTo(jsonMode, &stdout, &stderr) },
	)
	c.SetArgs(args)
	c.SetOut(&stderr)
	c.SetErr(&stderr)
	c.SilenceUsage = true
	c.SilenceErrors = true

	err := c.Execute()
	return stdout.String(), err
}

// --- Assist Tests ---

func TestAssistCmd_Table(t *testing.T) {
	var got AssistRequest
	srv := fakeAPI(t, &got)

	out, err := run(t, srv, false, NewAssistCmd, "Help me prepare for my Machine Learning exam", "--student", "student_1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if got.StudentID != "student_1" || got.Text == "" {
		t.Errorf("unexpected request: %+v", got)
	}
	for _, want := range []string{"machine learning exam", "ML Course", "3 questions", "motivation", "comprehensive"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAssistCmd_JSON(t *testing.T) {
	var got AssistRequest
	srv := fakeAPI(t, &got)

	out, err := run(t, srv, true, NewAssistCmd, "Help me")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if _, ok := decoded["calendar_events"]; !ok {
		t.Error("raw response should be printed as-is")
	}
}

func TestAssistCmd_Document(t *testing.T) {
	var got AssistRequest
	srv := fakeAPI(t, &got)

	path := filepath.Join(t.TempDir(), "chapter.txt")
	if err := os.WriteFile(path, []byte("Chapter 1. Graphs"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := run(t, srv, false, NewAssistCmd, "Summarize", "--document", path); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Document != "Chapter 1. Graphs" {
		t.Errorf("document not attached: %q", got.Document)
	}
}

func TestAssistCmd_MissingDocument(t *testing.T) {
	var got AssistRequest
	srv := fakeAPI(t, &got)

	_, err := run(t, srv, false, NewAssistCmd, "Summarize", "--document", filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestAssistCmd_Async(t *testing.T) {
	var got AssistRequest
	srv := fakeAPI(t, &got)

	out, err := run(t, srv, false, NewAssistCmd, "Help me", "--async")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "r2") || !strings.Contains(out, "queued") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

// --- Requests Tests ---

func TestRequestsList(t *testing.T) {
	srv := fakeAPI(t, &AssistRequest{})

	out, err := run(t, srv, false, NewRequestsCmd, "list", "--student", "student_1", "--limit", "2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "graphs") || !strings.Contains(out, "true") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRequestsGet_NotFound(t *testing.T) {
	srv := fakeAPI(t, &AssistRequest{})

	_, err := run(t, srv, false, NewRequestsCmd, "get", "r404")
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("expected NOT_FOUND error, got %v", err)
	}
}

// --- Quiz Tests ---

const evaluationBody = `{"data":{"topic":"machine learning exam","score":50,"correct_answers":1,"total_questions":2,
	"performance_level":"struggling","feedback":"This topic needs another pass.",
	"recommendations":["Revisit the learning resources"],
	"detailed_feedback":[{"question_id":"q_1","correct":true,"student_answer":"true","correct_answer":"true"},
		{"question_id":"q_2","correct":false,"student_answer":"","correct_answer":"clustering"}],
	"recorded":true}}`

func quizAPI(t *testing.T, got *QuizEvaluateRequest) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/quiz/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(evaluationBody))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quiz.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestQuizEvaluateCmd_FromAssistOutput(t *testing.T) {
	var got QuizEvaluateRequest
	srv := quizAPI(t, &got)

	// вывод mentor assist --json: темы нет в assessment
	path := writeFile(t, `{"study_plan":{"topic":"machine learning exam"},
		"assessment":{"difficulty":"advanced","questions":[{"id":"q_1","type":"true_false","correct_answer":"true"}]}}`)

	out, err := run(t, srv, false, NewQuizCmd, "evaluate", path, "true", "--student", "student_1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if got.StudentID != "student_1" || len(got.Answers) != 1 || got.Answers[0] != "true" {
		t.Errorf("unexpected request: %+v", got)
	}
	var quiz map[string]any
	if err := json.Unmarshal(got.Quiz, &quiz); err != nil {
		t.Fatalf("quiz is not JSON: %v", err)
	}
	if quiz["topic"] != "machine learning exam" || quiz["difficulty"] != "advanced" {
		t.Errorf("unexpected quiz: %v", quiz)
	}

	for _, want := range []string{"q_2", "clustering", "score 50.0% (1/2), struggling", "Revisit the learning resources"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestQuizEvaluateCmd_JSON(t *testing.T) {
	var got QuizEvaluateRequest
	srv := quizAPI(t, &got)

	path := writeFile(t, `{"topic":"graphs","questions":[{"id":"q_1","type":"fill_blank","correct_answer":"nodes"}]}`)

	out, err := run(t, srv, true, NewQuizCmd, "evaluate", path)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(got.Answers) != 0 {
		t.Errorf("expected no answers, got %v", got.Answers)
	}
	var decoded QuizEvaluation
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !decoded.Recorded || decoded.TotalQuestions != 2 {
		t.Errorf("unexpected evaluation: %+v", decoded)
	}
}

func TestQuizEvaluateCmd_BadFile(t *testing.T) {
	var got QuizEvaluateRequest
	srv := quizAPI(t, &got)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"evaluate", filepath.Join(t.TempDir(), "nope.json")}},
		{"not json", []string{"evaluate", writeFile(t, "quiz")}},
		{"no questions", []string{"evaluate", writeFile(t, `{"topic":"graphs"}`)}},
		{"no file", []string{"evaluate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, srv, false, NewQuizCmd, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}
