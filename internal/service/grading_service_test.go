package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"smartgrade_backend/internal/config"
	"smartgrade_backend/internal/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGradingService(baseURL string) *GradingService {
	cfg := &config.Config{}
	cfg.Grading = config.GradingConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "gemini-test",
		Timeout: 5,
	}
	return NewGradingService(cfg)
}

// candidateResponse 构造判卷服务的标准响应体
func candidateResponse(text string) string {
	body := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func quizQuestions() []model.Question {
	return []model.Question{
		{Text: "Explain polymorphism.", Marks: 10},
		{Text: "Describe the OSI model.", Marks: 15},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Quiz 1", quizQuestions())

	assert.Contains(t, prompt, "Assignment Title: Quiz 1")
	assert.Contains(t, prompt, "Question 1 (10 marks possible): Explain polymorphism.")
	assert.Contains(t, prompt, "Question 2 (15 marks possible): Describe the OSI model.")
	assert.Contains(t, prompt, "Strict Grading Criteria:")
	assert.Contains(t, prompt, "Analyze the attached PDF document.")
}

func TestGradeRequestShape(t *testing.T) {
	var captured generateRequest
	var path, apiKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, candidateResponse(`{"feedback":"ok","score":50}`))
	}))
	defer server.Close()

	svc := newTestGradingService(server.URL)
	_, err := svc.Grade(context.Background(), "Quiz 1", quizQuestions(), []byte("%PDF-1.4 fake"))
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", path)
	assert.Equal(t, "test-key", apiKey)

	require.Len(t, captured.Contents, 1)
	require.Len(t, captured.Contents[0].Parts, 2)
	assert.Equal(t, "application/pdf", captured.Contents[0].Parts[0].InlineData.MimeType)
	assert.NotEmpty(t, captured.Contents[0].Parts[0].InlineData.Data)
	assert.Contains(t, captured.Contents[0].Parts[1].Text, "Question 1 (10 marks possible)")

	require.NotNil(t, captured.SystemInstruction)
	assert.Contains(t, captured.SystemInstruction.Parts[0].Text, "world-class academic proctor")

	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
	require.NotNil(t, captured.GenerationConfig.ResponseSchema)
	assert.ElementsMatch(t, []string{"feedback", "score"}, captured.GenerationConfig.ResponseSchema.Required)
}

func TestGradeParsesResult(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantScore    float64
		wantFeedback string
	}{
		{
			name:         "plain json",
			text:         `{"feedback":"- Q1: full marks","score":87.5}`,
			wantScore:    87.5,
			wantFeedback: "- Q1: full marks",
		},
		{
			name:         "fenced json",
			text:         "```json\n{\"feedback\":\"solid work\",\"score\":60}\n```",
			wantScore:    60,
			wantFeedback: "solid work",
		},
		{
			name:      "score above scale clamped",
			text:      `{"feedback":"generous","score":250}`,
			wantScore: 100,
		},
		{
			name:      "negative score clamped",
			text:      `{"feedback":"harsh","score":-12}`,
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, candidateResponse(tt.text))
			}))
			defer server.Close()

			svc := newTestGradingService(server.URL)
			result, err := svc.Grade(context.Background(), "Quiz 1", quizQuestions(), []byte("pdf"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, result.Score)
			if tt.wantFeedback != "" {
				assert.Equal(t, tt.wantFeedback, result.Feedback)
			}
		})
	}
}

// 响应声明了schema不代表服务一定守约：乱文本降级为零分兜底而不是报错
func TestGradeFallbackOnMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse("Sorry, I cannot grade this document."))
	}))
	defer server.Close()

	svc := newTestGradingService(server.URL)
	result, err := svc.Grade(context.Background(), "Quiz 1", quizQuestions(), []byte("pdf"))

	require.NoError(t, err)
	assert.Equal(t, float64(0), result.Score)
	assert.Contains(t, result.Feedback, "unreadable result")
}

func TestGradeTransportErrorsPropagate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := newTestGradingService(server.URL)
	result, err := svc.Grade(context.Background(), "Quiz 1", quizQuestions(), []byte("pdf"))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, strings.Contains(err.Error(), "429"))
}

func TestGradeMissingAPIKey(t *testing.T) {
	svc := newTestGradingService("http://localhost:1")
	svc.Cfg.Grading.APIKey = ""

	_, err := svc.Grade(context.Background(), "Quiz 1", quizQuestions(), []byte("pdf"))
	require.Error(t, err)
}
