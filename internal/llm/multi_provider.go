package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/iabetor/tingwen/internal/logger"
)

// ModelConfig 描述一个 LLM 模型的连接信息。
type ModelConfig struct {
	Name     string // 显示名称
	Provider string // openai 或 azure

	APIURL string
	APIKey string
	Model  string

	Endpoint   string
	Deployment string
	APIVersion string

	MaxTokens int
}

// providerEntry 是一个 Provider 及其名称的组合。
type providerEntry struct {
	name     string
	provider Provider
}

// MultiProvider 实现多 LLM 自动降级。
// 按优先级列表顺序尝试，当前模型请求失败时自动切换到下一个。
type MultiProvider struct {
	entries []providerEntry
	current int // 当前活跃索引
	mu      sync.RWMutex
}

// NewMultiProvider 根据模型配置列表创建 MultiProvider。
func NewMultiProvider(configs []ModelConfig) (*MultiProvider, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("至少需要一个 LLM 模型配置")
	}

	entries := make([]providerEntry, 0, len(configs))
	for _, cfg := range configs {
		var p Provider
		switch cfg.Provider {
		case "azure":
			p = NewAzureProvider(cfg.Endpoint, cfg.APIKey, cfg.Deployment, cfg.APIVersion)
		default:
			p = NewOpenAIProvider(cfg.APIURL, cfg.APIKey, cfg.Model, cfg.MaxTokens)
		}
		entries = append(entries, providerEntry{name: cfg.Name, provider: p})
	}

	logger.Infof("[llm] 多模型已初始化，共 %d 个模型：%s",
		len(entries), formatModelNames(entries))

	return &MultiProvider{entries: entries}, nil
}

// CurrentName 返回当前活跃模型的名称。
func (m *MultiProvider) CurrentName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[m.current].name
}

// ChatStream 实现 Provider 接口。从当前活跃模型开始尝试，
// 请求失败时切换到下一个，直到所有模型都尝试过。
func (m *MultiProvider) ChatStream(ctx context.Context, messages []Message) (<-chan string, error) {
	m.mu.RLock()
	start := m.current
	total := len(m.entries)
	m.mu.RUnlock()

	var errs []string
	for i := 0; i < total; i++ {
		idx := (start + i) % total
		entry := m.entries[idx]

		ch, err := entry.provider.ChatStream(ctx, messages)
		if err == nil {
			if idx != start {
				m.mu.Lock()
				m.current = idx
				m.mu.Unlock()
				logger.Warnf("[llm] 已切换到备用模型: %s", entry.name)
			}
			return ch, nil
		}

		logger.Warnf("[llm] 模型 %s 请求失败: %v", entry.name, err)
		errs = append(errs, fmt.Sprintf("%s: %v", entry.name, err))

		// 上下文取消时没必要继续尝试
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("所有 LLM 模型均请求失败: %s", strings.Join(errs, "; "))
}

// formatModelNames 拼接模型名称列表用于日志。
func formatModelNames(entries []providerEntry) string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return strings.Join(names, " > ")
}
