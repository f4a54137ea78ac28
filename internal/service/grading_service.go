package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"smartgrade_backend/internal/config"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/pkg/monitoring"
	"strings"
	"time"
)

// GradingService 封装对外部AI判卷服务的单次请求/响应调用。
// 无状态：除一次出站网络调用外没有副作用
type GradingService struct {
	Cfg    *config.Config
	client *http.Client
}

func NewGradingService(cfg *config.Config) *GradingService {
	timeout := time.Duration(cfg.Grading.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GradingService{
		Cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// GradingResult 判卷服务约定的输出结构
type GradingResult struct {
	Feedback string  `json:"feedback"`
	Score    float64 `json:"score"`
}

type generatePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *generateFileData `json:"inlineData,omitempty"`
}

type generateFileData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateSchema struct {
	Type        string                    `json:"type"`
	Description string                    `json:"description,omitempty"`
	Properties  map[string]generateSchema `json:"properties,omitempty"`
	Required    []string                  `json:"required,omitempty"`
}

type generateConfig struct {
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   *generateSchema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents          []generateContent `json:"contents"`
	SystemInstruction *generateContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  generateConfig    `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const gradingSystemInstruction = `You are a world-class academic proctor and subject matter expert.
Your goal is to provide a 'PERFECT' correction.
1. BE RIGOROUS: Only award marks for information explicitly present or correctly inferred in the PDF.
2. DETAILED FEEDBACK: For every question, mention what the student did well and exactly where they lost marks.
3. FORMATTING: Use professional academic language and structure feedback as a bulleted list.
4. TOTAL SCORE: Sum the marks for all questions. The total score must be a number representing the percentage (0-100).

Output MUST be valid JSON.`

// BuildPrompt 拼接判卷正文：逐题列出分值，再附固定判卷指令
func BuildPrompt(title string, questions []model.Question) string {
	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "Question %d (%d marks possible): %s\n", i+1, q.Marks, q.Text)
	}
	return fmt.Sprintf("Assignment Title: %s\n\nStrict Grading Criteria:\n%s\nInstructions: Analyze the attached PDF document. For each question, find the corresponding answer in the student's work. Evaluate the accuracy, depth, and clarity. Sum the marks to provide a final score. Provide a breakdown of marks for each question in the feedback.", title, b.String())
}

func gradingResponseSchema() *generateSchema {
	return &generateSchema{
		Type: "OBJECT",
		Properties: map[string]generateSchema{
			"feedback": {
				Type:        "STRING",
				Description: "A comprehensive, bulleted breakdown of the student's performance across all questions.",
			},
			"score": {
				Type:        "NUMBER",
				Description: "The calculated total score percentage (0-100).",
			},
		},
		Required: []string{"feedback", "score"},
	}
}

// Grade 将任务与PDF文档送外部AI评分，返回结构化结果。
// 传输层/HTTP错误向上抛出（由调用方映射为可重试失败）；
// 响应体不是合法JSON时降级为零分结果而不报错
func (s *GradingService) Grade(ctx context.Context, title string, questions []model.Question, pdf []byte) (*GradingResult, error) {
	start := time.Now()
	result, err := s.grade(ctx, title, questions, pdf)
	monitoring.GradingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		monitoring.GradingCounter.WithLabelValues("error").Inc()
	}
	return result, err
}

func (s *GradingService) grade(ctx context.Context, title string, questions []model.Question, pdf []byte) (*GradingResult, error) {
	if s.Cfg.Grading.APIKey == "" {
		return nil, fmt.Errorf("grading API key is not configured")
	}

	reqBody := generateRequest{
		Contents: []generateContent{
			{
				Parts: []generatePart{
					{InlineData: &generateFileData{
						MimeType: "application/pdf",
						Data:     base64.StdEncoding.EncodeToString(pdf),
					}},
					{Text: BuildPrompt(title, questions)},
				},
			},
		},
		SystemInstruction: &generateContent{
			Parts: []generatePart{{Text: gradingSystemInstruction}},
		},
		GenerationConfig: generateConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   gradingResponseSchema(),
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.Cfg.Grading.BaseURL, s.Cfg.Grading.Model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.Cfg.Grading.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, err
	}
	if genResp.Error != nil {
		return nil, fmt.Errorf("AI API error: %s", genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("AI returned no candidates")
	}

	return s.parseResult(genResp.Candidates[0].Content.Parts[0].Text), nil
}

// parseResult 防御性解析模型输出。声明了响应schema不代表服务一定守约，
// 解析失败时返回零分兜底结果而不是把解析异常抛给学生
func (s *GradingService) parseResult(text string) *GradingResult {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result GradingResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		monitoring.GradingCounter.WithLabelValues("fallback").Inc()
		return &GradingResult{
			Score:    0,
			Feedback: "The AI grader returned an unreadable result, so no marks could be awarded automatically. Please resubmit your document or contact your proctor for a manual review.",
		}
	}

	// 分数口径为百分比，越界输出收敛到 [0,100]
	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}

	monitoring.GradingCounter.WithLabelValues("success").Inc()
	return &result
}
