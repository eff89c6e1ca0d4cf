package llm

import (
	"context"
	"fmt"
	"strings"
)

// narrationPrompt 是朗读优化的系统提示词。只做小幅调整，
// 不改变原文含义和信息量。
const narrationPrompt = "You are an expert at preparing text for audio narration. " +
	"Optimize the following text for listening as a learning material. " +
	"Do not change the meaning or content, but make small adjustments so it sounds natural and clear when read aloud. " +
	"Keep all information, but improve flow, add brief pauses where needed, and clarify any awkward phrasing. " +
	"Return only the improved text. Avoid using any markdown or formatting tags."

// Optimizer 调用大模型把提取出的文本改写为更适合朗读的版本。
type Optimizer struct {
	provider Provider
	extra    string // 配置级附加指令
}

// NewOptimizer 创建文本优化器。extra 为追加到系统提示词的配置级指令。
func NewOptimizer(provider Provider, extra string) *Optimizer {
	return &Optimizer{provider: provider, extra: extra}
}

// Optimize 将文本发送给大模型改写，返回改写后的文本。
// instructions 为本次请求的自定义指令，可为空。
func (o *Optimizer) Optimize(ctx context.Context, text, instructions string) (string, error) {
	prompt := narrationPrompt
	if o.extra != "" {
		prompt += " " + strings.TrimSpace(o.extra)
	}
	if instructions != "" {
		prompt += " " + strings.TrimSpace(instructions)
	}

	messages := []Message{
		{Role: "system", Content: prompt},
		{Role: "user", Content: text},
	}

	ch, err := o.provider.ChatStream(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("文本优化请求失败: %w", err)
	}

	var sb strings.Builder
	for chunk := range ch {
		sb.WriteString(chunk)
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("大模型返回了空的优化结果")
	}
	return result, nil
}
