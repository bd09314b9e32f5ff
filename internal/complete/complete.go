// Package complete continues stories with an OpenAI-compatible chat model.
package complete

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/Paintersrp/jottr/internal/story"
)

var (
	ErrMissingAPIKey = errors.New("completion api key is not configured")
	ErrNoChoices     = errors.New("completion returned no choices")
	ErrEmptyStory    = errors.New("story has no text to continue")
)

const (
	defaultModel   = openai.GPT4oMini
	defaultTimeout = 60 * time.Second
	defaultRetries = 3
	maxTokens      = 400
)

const systemPrompt = `You are a writing partner helping an author draft short fiction.
Continue the story the user gives you in the same voice, tense and point of view.
Reply with the continuation only: no title, no commentary, no repetition of the given text.`

// ChatAPI is the subset of the OpenAI client used here.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	api        ChatAPI
	model      string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	log        zerolog.Logger
}

// New builds a client talking to the configured endpoint.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return NewWithAPI(openai.NewClientWithConfig(config), cfg, logger), nil
}

// NewWithAPI wraps an existing chat client.
func NewWithAPI(api ChatAPI, cfg Config, logger zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultRetries
	}

	return &Client{
		api:        api,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Second,
		log:        logger.With().Str("component", "complete").Logger(),
	}
}

// Continue asks the model for the next passage of s. genre overrides the
// story's own genre when set.
func (c *Client) Continue(ctx context.Context, s story.Story, genre string) (string, error) {
	if strings.TrimSpace(s.Text) == "" {
		return "", ErrEmptyStory
	}
	if genre == "" {
		genre = s.Genre
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(s.Text, genre)},
		},
		Temperature: 0.8,
		MaxTokens:   maxTokens,
		TopP:        0.95,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		switch {
		case err != nil:
			lastErr = err
		case len(resp.Choices) == 0:
			lastErr = ErrNoChoices
		default:
			text := strings.TrimSpace(resp.Choices[0].Message.Content)
			if text == "" {
				lastErr = ErrNoChoices
				break
			}
			c.log.Debug().
				Str("id", s.ShortID()).
				Int("attempt", attempt).
				Int("tokens", resp.Usage.TotalTokens).
				Msg("completion received")
			return text, nil
		}

		c.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("completion attempt failed")
		if attempt == c.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("continue story: %w", ctx.Err())
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}

	return "", fmt.Errorf("continue story after %d attempts: %w", c.maxRetries, lastErr)
}

// Append joins a continuation onto the story text as a new paragraph.
func Append(s story.Story, continuation string, now time.Time) story.Story {
	text := strings.TrimRight(s.Text, "\n") + "\n\n" + strings.TrimSpace(continuation) + "\n"
	return s.WithText(text, now)
}

func userPrompt(text, genre string) string {
	var b strings.Builder
	if genre = strings.TrimSpace(genre); genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n\n", genre)
	}
	b.WriteString(text)
	return b.String()
}
