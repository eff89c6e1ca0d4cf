package service

import (
	"strings"
	"unicode/utf8"
)

// extractSentence 尝试从文本中提取第一个完整句子。
func extractSentence(text string) (string, string, bool) {
	sentenceEnders := []rune{'。', '！', '？', '；', '.', '!', '?', '\n'}
	for i, r := range text {
		for _, ender := range sentenceEnders {
			if r == ender {
				splitAt := i + utf8.RuneLen(r)
				return text[:splitAt], text[splitAt:], true
			}
		}
	}
	return "", text, false
}

// mergeSentences 将文本按句分割后合并为大段，每段不超过 maxChars 个字符。
// 云端 TTS 对单次请求长度有限制，超长文本按句子边界切分，
// 每段单独合成为一个音频文件。单句超过上限时按空白、再按字符硬切。
func mergeSentences(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 2000
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	appendSentence := func(sentence string) {
		sentenceLen := utf8.RuneCountInString(sentence)

		// 单句超限：句内无可用边界，硬切后每片单独成段
		if sentenceLen > maxChars {
			flush()
			chunks = append(chunks, splitLongSentence(sentence, maxChars)...)
			return
		}

		// 如果当前段追加后超限，先刷出当前段
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+sentenceLen > maxChars {
			flush()
		}
		current.WriteString(sentence)
		current.WriteString(" ")
	}

	remaining := text
	for {
		sentence, rest, found := extractSentence(remaining)
		if !found {
			if r := strings.TrimSpace(remaining); r != "" {
				appendSentence(r)
			}
			break
		}
		remaining = rest
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		appendSentence(sentence)
	}
	flush()
	return chunks
}

// splitLongSentence 把超过 maxChars 的句子切分为多个片段。
// 优先在空白处切分，单个词仍超限时按字符切分。
func splitLongSentence(sentence string, maxChars int) []string {
	var pieces []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, word := range strings.Fields(sentence) {
		wordLen := utf8.RuneCountInString(word)

		// 词本身超限（如无空格的中文长句），按字符切
		if wordLen > maxChars {
			flush()
			r := []rune(word)
			for len(r) > maxChars {
				pieces = append(pieces, string(r[:maxChars]))
				r = r[maxChars:]
			}
			if len(r) > 0 {
				current.WriteString(string(r))
				currentLen = len(r)
			}
			continue
		}

		sep := 0
		if currentLen > 0 {
			sep = 1
		}
		if currentLen+sep+wordLen > maxChars {
			flush()
			sep = 0
		}
		if sep == 1 {
			current.WriteString(" ")
		}
		current.WriteString(word)
		currentLen += sep + wordLen
	}
	flush()
	return pieces
}
