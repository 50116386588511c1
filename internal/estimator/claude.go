package estimator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// Config configures the Claude estimator.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Claude implements Estimator on the Anthropic Messages API.
type Claude struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	log       *zap.Logger
}

var _ Estimator = (*Claude)(nil)

// NewClaude builds the estimator. SDK retries are disabled: a failed call
// is reported to the user, who may retry.
func NewClaude(cfg Config, log *zap.Logger) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Claude{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: 1024,
		timeout:   cfg.Timeout,
		log:       log,
	}
}

// Estimate asks the model for the total calories of description.
func (c *Claude) Estimate(ctx context.Context, description string) (*Estimate, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrEstimatorFailure, domain.ErrEmptyDescription)
	}

	text, err := c.complete(ctx, buildEstimatePrompt(description))
	if err != nil {
		return nil, err
	}
	jsonStr, err := extractJSON(text, '{', '}')
	if err != nil {
		return nil, failure(err)
	}

	var out struct {
		Calories     *float64 `json:"calories"`
		FoodName     string   `json:"foodName"`
		AssumedGrams *float64 `json:"assumedGrams"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return nil, failure(fmt.Errorf("decode estimate: %w", err))
	}
	if out.Calories == nil || *out.Calories < 0 || math.IsNaN(*out.Calories) {
		return nil, failure(fmt.Errorf("estimate has no usable calorie number"))
	}
	if strings.TrimSpace(out.FoodName) == "" {
		return nil, failure(fmt.Errorf("estimate has no food name"))
	}
	if out.AssumedGrams != nil && *out.AssumedGrams <= 0 {
		out.AssumedGrams = nil
	}

	est := &Estimate{
		FoodName:     strings.TrimSpace(out.FoodName),
		Calories:     int(math.Round(*out.Calories)),
		AssumedGrams: out.AssumedGrams,
	}
	c.log.Debug("estimate ready", zap.String("food", est.FoodName), zap.Int("calories", est.Calories))
	return est, nil
}

// ParseMealDescription splits a meal description into items with calories.
// A blank description yields an empty list without calling the API.
func (c *Claude) ParseMealDescription(ctx context.Context, description string) ([]domain.StandardMealItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return []domain.StandardMealItem{}, nil
	}

	text, err := c.complete(ctx, buildMealPrompt(description))
	if err != nil {
		return nil, err
	}
	jsonStr, err := extractJSON(text, '[', ']')
	if err != nil {
		return nil, failure(err)
	}

	var raw []struct {
		Name     string  `json:"name"`
		Calories float64 `json:"calories"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, failure(fmt.Errorf("decode meal items: %w", err))
	}

	items := make([]domain.StandardMealItem, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" || r.Calories < 0 {
			continue
		}
		items = append(items, domain.StandardMealItem{Name: name, Calories: int(math.Round(r.Calories))})
	}
	return items, nil
}

func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.log.Warn("estimator call failed", zap.Error(err))
		return "", failure(fmt.Errorf("llm api call: %w", err))
	}
	if len(msg.Content) == 0 {
		return "", failure(fmt.Errorf("empty response"))
	}
	return msg.Content[0].Text, nil
}

func buildEstimatePrompt(description string) string {
	return fmt.Sprintf(`Analyze the following food description and estimate the TOTAL calorie content for the quantity mentioned (e.g. "2 slices", "a large bowl"). If no quantity is specified, assume a standard single serving.

Description: %q

Output ONLY a valid JSON object matching this schema:
{"calories": <number, total kcal>, "foodName": "<short descriptive name, e.g. Pepperoni Pizza (2 slices)>", "assumedGrams": <number, assumed serving size in grams, omit if not applicable>}

No markdown, no explanations.`, description)
}

func buildMealPrompt(description string) string {
	return fmt.Sprintf(`Break down the following meal description into individual food items with their estimated calories. The items will be used as quick-add buttons, so "2 toasts and a black coffee" becomes one item for "2 toasts" and one for "a black coffee".

Description: %q

Output ONLY a valid JSON array matching this schema:
[{"name": "<item name, e.g. 2 Toasts>", "calories": <number>}]

No markdown, no explanations.`, description)
}

// extractJSON returns the text between the first open and the last close
// delimiter, inclusive, if it is valid JSON.
func extractJSON(s string, openDelim, closeDelim byte) (string, error) {
	start := strings.IndexByte(s, openDelim)
	end := strings.LastIndexByte(s, closeDelim)
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON found in response")
	}
	out := s[start : end+1]
	if !json.Valid([]byte(out)) {
		return "", fmt.Errorf("response does not contain valid JSON")
	}
	return out, nil
}
