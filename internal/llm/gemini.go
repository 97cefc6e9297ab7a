// Package llm generates analysis code from natural-language questions via
// the Gemini generateContent API. The generated snippet is returned to the
// caller for display; it is never executed server-side.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"uidpulse/internal/dataset"
)

// Assistant turns a question about the loaded dataset into analysis code.
type Assistant interface {
	GenerateCode(ctx context.Context, question string, d *dataset.Dataset) (string, error)
}

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com"
	defaultModel    = "gemini-1.5-flash"
	sampleRows      = 3
)

// GeminiClient calls the Gemini REST API.
type GeminiClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a GeminiClient.
type Option func(*GeminiClient)

// WithEndpoint overrides the API base URL, used by tests.
func WithEndpoint(endpoint string) Option {
	return func(c *GeminiClient) { c.endpoint = strings.TrimSuffix(endpoint, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *GeminiClient) { c.httpClient = client }
}

// NewGeminiClient creates a client for the given API key and model. An empty
// model selects the default.
func NewGeminiClient(apiKey, model string, logger *slog.Logger, opts ...Option) *GeminiClient {
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &GeminiClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *GeminiClient) Configured() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateCode prompts the model with the dataset schema plus a few sample
// rows and returns the generated snippet with any markdown fences stripped.
func (c *GeminiClient) GenerateCode(ctx context.Context, question string, d *dataset.Dataset) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("assistant API key not configured")
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(question, d)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.InfoContext(ctx, "asking assistant",
		slog.String("model", c.model),
		slog.Int("question_len", len(question)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("model request failed: %s", msg)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	return stripFences(decoded.Candidates[0].Content.Parts[0].Text), nil
}

// buildPrompt assembles the system instructions, the live schema, and a few
// sample rows.
func buildPrompt(question string, d *dataset.Dataset) string {
	var b strings.Builder
	b.WriteString("You are a data assistant for a tabular enrolment dataset.\n")
	b.WriteString("Columns: ")
	b.WriteString(strings.Join(d.Columns, ", "))
	b.WriteString("\nSample rows:\n")
	limit := sampleRows
	if d.Len() < limit {
		limit = d.Len()
	}
	for _, row := range d.Rows[:limit] {
		values := make([]string, len(d.Columns))
		for i, col := range d.Columns {
			values[i] = row[col]
		}
		b.WriteString(strings.Join(values, " | "))
		b.WriteString("\n")
	}
	b.WriteString("\nReturn ONLY executable analysis code answering the question.\n")
	b.WriteString("Store the final result in a variable called `result`.\n")
	b.WriteString("Do not return markdown formatting. Do not print anything.\n")
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// stripFences removes surrounding markdown code fences the model sometimes
// emits despite instructions.
func stripFences(code string) string {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, "```") {
		return code
	}
	code = strings.TrimPrefix(code, "```")
	if idx := strings.Index(code, "\n"); idx >= 0 {
		code = code[idx+1:]
	}
	code = strings.TrimSuffix(strings.TrimSpace(code), "```")
	return strings.TrimSpace(code)
}
