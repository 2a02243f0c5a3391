package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dokbae/voice-todo/internal/extract"
	logpkg "github.com/dokbae/voice-todo/internal/logger"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default chat model for structured extraction
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultTranscribeModel is the default speech-to-text model
	DefaultTranscribeModel = "whisper-1"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// TranscribeLanguage is the locale hint sent with every transcription.
	// The service only handles Korean speech.
	TranscribeLanguage = "ko"

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider talks to the OpenAI API for both transcription and
// structured task extraction.
type OpenAIProvider struct {
	client          openai.Client
	model           string
	transcribeModel string
	logger          *zap.Logger
	debugMode       bool
}

var (
	_ Transcriber      = (*OpenAIProvider)(nil)
	_ extract.Strategy = (*OpenAIProvider)(nil)
)

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, DefaultTranscribeModel, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey, baseURL, model, transcribeModel string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if transcribeModel == "" {
		transcribeModel = DefaultTranscribeModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:          client,
		model:           model,
		transcribeModel: transcribeModel,
		logger:          logger,
		debugMode:       debugMode,
	}
}

// Transcribe submits one audio recording to the speech-to-text endpoint
// and returns the transcript.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	start := time.Now()
	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:    openai.AudioModel(p.transcribeModel),
		File:     audio,
		Language: openai.String(TranscribeLanguage),
	})
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("transcription_api_error",
				zap.String("model", p.transcribeModel),
				zap.String("error", logpkg.SanitizeError(err)),
				zap.Duration("latency", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to transcribe audio: %w", apiErr)
		}
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	if p.logger != nil && p.debugMode {
		p.logger.Debug("transcription_api_response",
			zap.String("model", p.transcribeModel),
			zap.String("filename", filename),
			zap.String("transcript_preview", logpkg.SanitizeTranscript(resp.Text)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return resp.Text, nil
}

const extractSystemPrompt = "You are an assistant that splits a spoken Korean todo " +
	"sentence into a task title and a due date. Respond with valid JSON only."

// ExtractTask asks the chat model to separate the transcript into a title
// and an ISO-8601 due date, resolved against the anchor timestamp. A
// malformed response is an error; the caller falls back to the raw
// transcript with no date.
func (p *OpenAIProvider) ExtractTask(ctx context.Context, text string, anchor time.Time) (*extract.Result, error) {
	prompt := buildExtractPrompt(text, anchor)
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractSystemPrompt),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "extract_task"),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", logpkg.SanitizeDebugContent(prompt)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "extract_task"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Duration("latency", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to extract task: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to extract task: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}
	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "extract_task"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", logpkg.SanitizeDebugContent(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return parseExtractResponse(content, anchor.Location())
}

func buildExtractPrompt(text string, anchor time.Time) string {
	return fmt.Sprintf(`The current time is %s (Korea Standard Time).

Split the following spoken Korean todo sentence into a task title and an
optional due date. The speaker names upcoming deadlines, never past events:
when a time expression is ambiguous, pick the next future occurrence. When
a month is given without a day, use the first day of the month.

Sentence: %q

Respond with a single JSON object:
{"title": "<task title with date words removed>", "due_date": "<ISO-8601 local timestamp>" or null}`,
		anchor.Format("2006-01-02T15:04:05"), text)
}

// dueDateLayouts are the timestamp shapes models actually emit for the
// due_date field, most specific first.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseExtractResponse parses the strict {"title", "due_date"} object.
// Models occasionally wrap the JSON in prose; scavenge the outermost
// braces before giving up.
func parseExtractResponse(content string, loc *time.Location) (*extract.Result, error) {
	var payload struct {
		Title   string  `json:"title"`
		DueDate *string `json:"due_date"`
	}
	raw := content
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		start := bytes.IndexByte([]byte(raw), '{')
		end := bytes.LastIndexByte([]byte(raw), '}')
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("failed to parse extraction response: %w", err)
		}
		raw = raw[start : end+1]
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("failed to parse extraction response: %w", err)
		}
	}

	if payload.Title == "" {
		return nil, errors.New("extraction response has empty title")
	}

	result := &extract.Result{Title: payload.Title}
	if payload.DueDate != nil && *payload.DueDate != "" && *payload.DueDate != "null" {
		due, err := parseDueDate(*payload.DueDate, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse due date %q: %w", *payload.DueDate, err)
		}
		result.DueDate = &due
		result.Matched = *payload.DueDate
	}
	return result, nil
}

func parseDueDate(s string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
