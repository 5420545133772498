package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	appcfg "github.com/nadi-health/core/internal/config"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
)

// Generator is a single-shot chat completion. Implementations do not retry
// and do not stream.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

var errEmptyResponse = errors.New("empty response from AI")

// NewGenerator builds the provider selected in cfg.
func NewGenerator(cfg appcfg.AIConfig) (Generator, error) {
	switch cfg.Provider {
	case appcfg.AIProviderDeepSeek, appcfg.AIProviderOpenAICompatible:
		return newChatCompletions(cfg), nil
	case appcfg.AIProviderOpenAI, appcfg.AIProviderAnthropic:
		return newLanguageModel(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// chatCompletions talks to an OpenAI-style /chat/completions endpoint over
// plain HTTP. DeepSeek and self-hosted gateways use it.
type chatCompletions struct {
	url       string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

func newChatCompletions(cfg appcfg.AIConfig) *chatCompletions {
	url := normalizeOpenAICompatibleEndpoint(cfg.Endpoint) + "/v1/chat/completions"
	if cfg.Provider == appcfg.AIProviderDeepSeek {
		url = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/") + "/chat/completions"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &chatCompletions{
		url:       url,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		model:     model,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: timeoutOf(cfg)},
	}
}

func (g *chatCompletions) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("AI provider api key is empty")
	}

	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, map[string]string{
			"role":    "system",
			"content": systemPrompt,
		})
	}
	messages = append(messages, map[string]string{
		"role":    "user",
		"content": userPrompt,
	})

	body, _ := json.Marshal(map[string]interface{}{
		"model":       g.model,
		"messages":    messages,
		"temperature": temperature,
		"max_tokens":  g.maxTokens,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("chat completion error: %d %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return "", fmt.Errorf("chat completion error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", errEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}

// languageModel routes through the jetify SDK with the official OpenAI or
// Anthropic client underneath.
type languageModel struct {
	model     jetapi.LanguageModel
	hasKey    bool
	maxTokens int
	timeout   time.Duration
}

func newLanguageModel(cfg appcfg.AIConfig) *languageModel {
	apiKey := strings.TrimSpace(cfg.APIKey)
	modelID := strings.TrimSpace(cfg.Model)
	endpoint := strings.TrimSpace(cfg.Endpoint)

	lm := &languageModel{hasKey: apiKey != "", maxTokens: cfg.MaxTokens, timeout: timeoutOf(cfg)}

	if cfg.Provider == appcfg.AIProviderAnthropic {
		if modelID == "" {
			modelID = "claude-haiku-4-5-20251001"
		}
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(opts...)
		lm.model = jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client))
		return lm
	}

	if modelID == "" {
		modelID = "gpt-4o-mini"
	}
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	client := openaiclient.NewClient(opts...)
	lm.model = jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client))
	return lm
}

func (g *languageModel) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	if !g.hasKey {
		return "", errors.New("AI provider api key is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := jetai.GenerateText(
		ctx,
		buildPromptMessages(systemPrompt, userPrompt),
		jetai.WithModel(g.model),
		jetai.WithMaxOutputTokens(g.maxTokens),
		jetai.WithTemperature(temperature),
	)
	if err != nil {
		return "", err
	}
	return extractTextFromResponse(resp)
}

func buildPromptMessages(systemPrompt, prompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: systemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})
	return messages
}

func extractTextFromResponse(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errEmptyResponse
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}
	return full.String(), nil
}

func timeoutOf(cfg appcfg.AIConfig) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

func normalizeOpenAICompatibleEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimSuffix(strings.TrimRight(base, "/"), "/v1")
	}

	parsed.Path = strings.TrimSuffix(strings.TrimRight(parsed.Path, "/"), "/v1")
	return strings.TrimRight(parsed.String(), "/")
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
