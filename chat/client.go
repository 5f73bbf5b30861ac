// Package chat wraps the Anthropic Messages API for the design assistant.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-sonnet-4-20250514"
	apiVersion     = "2023-06-01"
	maxTokens      = 1024
)

const systemPrompt = `You are an interior-design assistant. Help the user refine room designs: suggest furniture, color palettes, materials and layout changes. Keep answers concrete and grounded in the user's floor plan and generated room images. Do not invent rooms that are not in the project.`

// Message is one turn of the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a non-streaming Messages API client.
type Client struct {
	http  *resty.Client
	model string
}

func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(defaultBaseURL, apiKey)
}

func NewClientWithBaseURL(baseURL, apiKey string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion)

	return &Client{http: httpClient, model: defaultModel}
}

// Complete sends the conversation history and returns the assistant reply.
func (c *Client) Complete(ctx context.Context, history []Message) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("chat completion: empty conversation")
	}

	body := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  history,
	}

	var out messagesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp.IsError() {
		if out.Error != nil {
			return "", fmt.Errorf("chat completion: %s", out.Error.Message)
		}
		return "", fmt.Errorf("chat completion: status %d", resp.StatusCode())
	}

	for _, block := range out.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("chat completion: no text content in response")
}
