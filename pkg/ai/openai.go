package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	visionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "choreboard",
		Subsystem: "ai",
		Name:      "vision_duration_seconds",
		Help:      "Duration of vision evaluation requests",
	}, []string{"model"})

	visionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "choreboard",
		Subsystem: "ai",
		Name:      "vision_failures_total",
		Help:      "Number of vision evaluation failures",
	}, []string{"model"})
)

// VisionConfig defines configuration options for the OpenAI vision evaluator.
type VisionConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// VisionEvaluator implements Evaluator against the OpenAI chat completion
// API using image URL content parts.
type VisionEvaluator struct {
	client *openai.Client
	cfg    VisionConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewVisionEvaluator builds a new evaluator using the provided configuration.
func NewVisionEvaluator(cfg VisionConfig) (*VisionEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	tracer := otel.Tracer("github.com/choreboardhq/choreboard-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &VisionEvaluator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Evaluate sends the proof photo and prompt to OpenAI and parses the
// structured verdict. It performs exactly one external call; failures are
// returned to the caller, which decides whether to fall back.
func (e *VisionEvaluator) Evaluate(parent context.Context, input VisionInput) (VisionResult, error) {
	ctx, span := e.tracer.Start(parent, "openai.vision_evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.String("task.category", input.Category),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: BuildSystemPrompt(input.Rule, input.Exemplars),
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: BuildUserPrompt(input),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    input.ImageURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, request)
	visionDuration.WithLabelValues(e.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		visionFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return VisionResult{}, fmt.Errorf("openai vision evaluate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		visionFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return VisionResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := ParseVisionResponse(content)
	if err != nil {
		visionFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return VisionResult{}, err
	}

	result.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	span.SetAttributes(
		attribute.Bool("verdict.passed", result.Passed),
		attribute.Float64("verdict.confidence", result.Confidence),
	)

	return result, nil
}

// ParseVisionResponse extracts and validates the model verdict. The first
// balanced JSON object is extracted even when the model wraps it in prose,
// but the passed and feedback fields are validated strictly: missing or
// wrong-typed values are a parse failure. Confidence defaults to 0.5 when
// absent and is clamped to [0, 1].
func ParseVisionResponse(content string) (VisionResult, error) {
	block, ok := extractJSONObject(content)
	if !ok {
		return VisionResult{}, fmt.Errorf("no JSON object found in model response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(block), &fields); err != nil {
		return VisionResult{}, fmt.Errorf("parse verdict json: %w", err)
	}

	result := VisionResult{Confidence: 0.5}

	raw, ok := fields["passed"]
	if !ok {
		return VisionResult{}, fmt.Errorf("verdict missing passed field")
	}
	if err := json.Unmarshal(raw, &result.Passed); err != nil {
		return VisionResult{}, fmt.Errorf("verdict passed field is not a boolean")
	}

	raw, ok = fields["feedback"]
	if !ok {
		return VisionResult{}, fmt.Errorf("verdict missing feedback field")
	}
	if err := json.Unmarshal(raw, &result.Feedback); err != nil {
		return VisionResult{}, fmt.Errorf("verdict feedback field is not a string")
	}
	if strings.TrimSpace(result.Feedback) == "" {
		return VisionResult{}, fmt.Errorf("verdict feedback field is empty")
	}

	if raw, ok := fields["confidence"]; ok {
		var confidence float64
		if err := json.Unmarshal(raw, &confidence); err == nil {
			result.Confidence = confidence
		}
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	if raw, ok := fields["checklist"]; ok {
		var checklist []ChecklistVerdict
		if err := json.Unmarshal(raw, &checklist); err == nil {
			result.Checklist = checklist
		}
	}

	return result, nil
}

// extractJSONObject returns the first balanced top-level JSON object in the
// input, tolerating surrounding prose and code fences.
func extractJSONObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], true
			}
		}
	}

	return "", false
}
