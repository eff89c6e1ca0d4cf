package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AzureProvider 通过 Azure OpenAI 的部署接口与大模型通信。
// 与 OpenAIProvider 的区别在于 URL 结构（endpoint + deployment + api-version）
// 和认证方式（api-key 请求头而非 Bearer token）。
type AzureProvider struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	httpClient *http.Client
}

// NewAzureProvider 创建 Azure OpenAI LLM 提供者。
func NewAzureProvider(endpoint, apiKey, deployment, apiVersion string) *AzureProvider {
	if apiVersion == "" {
		apiVersion = "2024-02-15-preview"
	}
	return &AzureProvider{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		deployment: deployment,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// ChatStream 向 Azure OpenAI 部署发送对话消息，返回逐块文本响应的 channel。
func (p *AzureProvider) ChatStream(ctx context.Context, messages []Message) (<-chan string, error) {
	reqBody := chatRequest{
		Messages:    messages,
		Stream:      true,
		MaxTokens:   2048,
		Temperature: 0.3,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("[llm] 序列化请求体失败: %w", err)
	}

	reqURL := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.endpoint, url.PathEscape(p.deployment), url.QueryEscape(p.apiVersion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("[llm] 创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.apiKey)

	return streamSSE(ctx, p.httpClient, req)
}
