package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FromPDF 从 PDF 中提取文本，各页内容按顺序以换行拼接。
// 损坏或加密的 PDF、无文本内容的 PDF 均返回错误。
func (e *Extractor) FromPDF(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("解析 PDF 失败: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// 个别页面解析失败不中断整体提取
			continue
		}
		if content == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(content)
	}

	text := cleanText(sb.String())
	if text == "" {
		return "", fmt.Errorf("PDF 中没有可提取的文本（共 %d 页）", numPages)
	}
	return text, nil
}
