package service

import (
	"strings"
	"unicode/utf8"
)

// TextStats 文本统计信息，UI 在转换前展示给用户。
type TextStats struct {
	Characters int `json:"characters"`
	Words      int `json:"words"`
	Lines      int `json:"lines"`
}

// Stats 统计文本的字符数、词数和行数。
func Stats(text string) TextStats {
	return TextStats{
		Characters: utf8.RuneCountInString(text),
		Words:      len(strings.Fields(text)),
		Lines:      len(strings.Split(text, "\n")),
	}
}
