package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"
)

// FromURL 抓取指定 URL 并提取正文文本。
// RSS/Atom 地址解析为"标题 + 条目摘要"的文本，普通网页去除标记后
// 返回页面正文。不可达的地址、非文本内容均返回错误。
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("无效的 URL: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("抓取 %s 失败: %w", u.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("抓取 %s 失败: HTTP %d", u.String(), resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")

	// RSS/Atom 源走 feed 解析
	if isFeedContentType(contentType) {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("读取响应失败: %w", err)
		}
		return e.feedText(string(body))
	}

	return e.htmlText(resp.Body, contentType)
}

// isFeedContentType 判断响应是否是 RSS/Atom 源。
func isFeedContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "rss") ||
		strings.Contains(ct, "atom") ||
		strings.Contains(ct, "application/xml") ||
		strings.Contains(ct, "text/xml")
}

// feedText 将 RSS/Atom 源渲染为可朗读的文本。
func (e *Extractor) feedText(body string) (string, error) {
	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return "", fmt.Errorf("解析订阅源失败: %w", err)
	}

	var sb strings.Builder
	if feed.Title != "" {
		sb.WriteString(feed.Title)
		sb.WriteString("\n")
	}
	for _, item := range feed.Items {
		if item.Title != "" {
			sb.WriteString(item.Title)
			sb.WriteString("\n")
		}
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}
		if desc != "" {
			// 条目描述常含 HTML 标记，复用网页提取去除
			if t, err := e.htmlText(strings.NewReader(desc), "text/html"); err == nil {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
	}

	text := cleanText(sb.String())
	if text == "" {
		return "", fmt.Errorf("订阅源中没有可提取的文本")
	}
	return text, nil
}

// htmlText 去除 HTML 标记，返回页面正文。
func (e *Extractor) htmlText(r io.Reader, contentType string) (string, error) {
	// 处理非 UTF-8 编码的页面
	decoded, err := charset.NewReader(r, contentType)
	if err != nil {
		return "", fmt.Errorf("识别页面编码失败: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return "", fmt.Errorf("解析 HTML 失败: %w", err)
	}

	doc.Find("script, style, noscript, iframe").Remove()

	sel := doc.Find("body")
	raw := sel.Text()
	if strings.TrimSpace(raw) == "" {
		raw = doc.Text()
	}

	// 逐行整理：去掉行内多余空白，丢弃空行
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	text := strings.Join(lines, "\n")
	if text == "" {
		return "", fmt.Errorf("页面中没有可提取的文本")
	}
	return text, nil
}
