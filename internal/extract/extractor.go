// Package extract 负责从原始文本、PDF 文件和网页中提取纯文本。
// 提取结果保证非空，任何不可读的输入（损坏的 PDF、不可达的 URL、
// 无文本内容的页面）都返回错误。
package extract

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// 连续空行压缩为单个换行
var blankLines = regexp.MustCompile(`\n\s*\n+`)

// Extractor 文本提取器。
type Extractor struct {
	client    *http.Client
	userAgent string
}

// New 创建文本提取器。timeout 控制抓取网页的总超时。
func New(timeout time.Duration, userAgent string) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// FromText 校验并整理直接输入的文本。
func (e *Extractor) FromText(s string) (string, error) {
	text := cleanText(s)
	if text == "" {
		return "", fmt.Errorf("输入文本为空")
	}
	return text, nil
}

// cleanText 去除首尾空白并压缩连续空行。
func cleanText(s string) string {
	return blankLines.ReplaceAllString(strings.TrimSpace(s), "\n")
}
