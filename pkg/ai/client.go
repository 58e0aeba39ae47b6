// Package ai 封装补全服务调用和分身提示词组装
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured 未配置 API Key
var ErrNotConfigured = errors.New("ai service is not configured")

// Message 对话中的一条消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest 补全请求
type CompletionRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
	Temperature      float64   `json:"temperature"`
	PresencePenalty  float64   `json:"presence_penalty"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
}

// Completer 补全服务
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// completionResponse 响应结构体
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client OpenAI 兼容的补全客户端
type Client struct {
	http   *resty.Client
	apiKey string
}

// Config 客户端配置
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewClient 创建补全客户端
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}

	return &Client{http: c, apiKey: cfg.APIKey}
}

// Complete 调用 /chat/completions，只尝试一次
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&req).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}

	var out completionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		if resp.StatusCode() != http.StatusOK {
			return "", fmt.Errorf("completion status %d: %s", resp.StatusCode(), resp.String())
		}
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", errors.New(out.Error.Message)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("completion status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errors.New("no response from AI")
	}

	return out.Choices[0].Message.Content, nil
}
