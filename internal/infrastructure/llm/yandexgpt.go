package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"newsdigest/internal/config"
	"newsdigest/internal/ports"
)

const (
	defaultEndpoint = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

	// Input beyond this is cut before the rewrite request; the lite model's
	// context does not need more for a channel-sized summary.
	maxBodyInputLen = 3000

	titleSystemPrompt = "Ты профессиональный переводчик. Переведи следующий английский заголовок на русский язык. " +
		"Сохрани все имена собственные (людей, компаний, продуктов) в оригинальном английском виде. Верни только переведенный заголовок."

	bodySystemPrompt = "Ты профессиональный редактор и переводчик. Переведи следующий английский текст на русский язык. " +
		"Затем предоставь краткий, ясный пересказ переведенного текста на русском языке. Пересказ должен быть готов к публикации, " +
		"без дополнительных ремарок, вводных слов или пояснений. Сохрани ключевые факты и смысл. " +
		"Сохрани все имена собственные (людей, компаний, продуктов) в оригинальном английском виде. " +
		"Добавь подходящие по смыслу эмодзи между абзацами"
)

// YandexGPTClient implements ports.TextProcessor over the foundation-models
// completion REST API.
type YandexGPTClient struct {
	endpoint   string
	folderID   string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ ports.TextProcessor = (*YandexGPTClient)(nil)

// NewYandexGPTClient builds a client from configuration.
func NewYandexGPTClient(cfg config.YandexGPTConfig) *YandexGPTClient {
	model := cfg.Model
	if model == "" {
		model = "yandexgpt-lite"
	}
	return &YandexGPTClient{
		endpoint: defaultEndpoint,
		folderID: cfg.FolderID,
		apiKey:   cfg.APIKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// TranslateTitle returns the Russian headline, proper nouns untouched.
func (c *YandexGPTClient) TranslateTitle(ctx context.Context, title string) (string, error) {
	return c.complete(ctx, titleSystemPrompt, title, 0.3, 200)
}

// RewriteBody returns a publication-ready Russian summary of the article body.
func (c *YandexGPTClient) RewriteBody(ctx context.Context, body string) (string, error) {
	return c.complete(ctx, bodySystemPrompt, truncateRunes(body, maxBodyInputLen), 0.5, 1000)
}

type completionRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions completionOptions `json:"completionOptions"`
	Messages          []message         `json:"messages"`
}

type completionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   string  `json:"maxTokens"`
}

type message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type completionResponse struct {
	Result struct {
		Alternatives []struct {
			Message message `json:"message"`
		} `json:"alternatives"`
	} `json:"result"`
}

// complete posts one system+user exchange and returns the first alternative's
// text. An empty alternatives list or blank text is an error to the caller.
func (c *YandexGPTClient) complete(ctx context.Context, systemPrompt, userText string, temperature float64, maxTokens int) (string, error) {
	if c == nil {
		return "", fmt.Errorf("yandexgpt client is nil")
	}
	if c.apiKey == "" || c.folderID == "" {
		return "", fmt.Errorf("yandexgpt client misconfigured")
	}

	body, err := json.Marshal(completionRequest{
		ModelURI: fmt.Sprintf("gpt://%s/%s", c.folderID, c.model),
		CompletionOptions: completionOptions{
			Temperature: temperature,
			MaxTokens:   strconv.Itoa(maxTokens),
		},
		Messages: []message{
			{Role: "system", Text: systemPrompt},
			{Role: "user", Text: userText},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-folder-id", c.folderID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("run completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("yandexgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if len(parsed.Result.Alternatives) == 0 {
		return "", fmt.Errorf("yandexgpt returned no alternatives")
	}

	text := strings.TrimSpace(parsed.Result.Alternatives[0].Message.Text)
	if text == "" {
		return "", fmt.Errorf("yandexgpt returned empty text")
	}

	return text, nil
}

func truncateRunes(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
