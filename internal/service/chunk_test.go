package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractSentence_ChinesePunctuation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentence string
		rest     string
		found    bool
	}{
		{"句号", "你好。世界", "你好。", "世界", true},
		{"感叹号", "太棒了！继续", "太棒了！", "继续", true},
		{"问号", "是吗？对", "是吗？", "对", true},
		{"分号", "第一；第二", "第一；", "第二", true},
		{"无标点", "没有结束符", "", "没有结束符", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentence, rest, found := extractSentence(tt.input)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if sentence != tt.sentence {
				t.Errorf("sentence = %q, want %q", sentence, tt.sentence)
			}
			if rest != tt.rest {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

func TestExtractSentence_EnglishPunctuation(t *testing.T) {
	tests := []struct {
		input    string
		sentence string
		rest     string
	}{
		{"Hello. World", "Hello.", " World"},
		{"Wow! Next", "Wow!", " Next"},
		{"Really? Yes", "Really?", " Yes"},
		{"line one\nline two", "line one\n", "line two"},
	}

	for _, tt := range tests {
		sentence, rest, found := extractSentence(tt.input)
		if !found {
			t.Fatalf("extractSentence(%q): not found", tt.input)
		}
		if sentence != tt.sentence || rest != tt.rest {
			t.Errorf("extractSentence(%q) = (%q, %q), want (%q, %q)",
				tt.input, sentence, rest, tt.sentence, tt.rest)
		}
	}
}

func TestMergeSentences_SingleChunk(t *testing.T) {
	text := "第一句。第二句。第三句。"
	chunks := mergeSentences(text, 2000)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	for _, s := range []string{"第一句。", "第二句。", "第三句。"} {
		if !strings.Contains(chunks[0], s) {
			t.Errorf("chunk missing %q: %q", s, chunks[0])
		}
	}
}

func TestMergeSentences_SplitsAtSentenceBoundary(t *testing.T) {
	// 每句 10 个字符（含句号），上限 25 时应每段装下两句
	sentence := "一二三四五六七八九。"
	text := strings.Repeat(sentence, 6)

	chunks := mergeSentences(text, 25)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %q", len(chunks), chunks)
	}
	for i, c := range chunks {
		if !strings.HasSuffix(strings.TrimSpace(c), "。") {
			t.Errorf("chunk %d should end at sentence boundary: %q", i, c)
		}
		if utf8.RuneCountInString(c) > 25 {
			t.Errorf("chunk %d exceeds limit: %d runes", i, utf8.RuneCountInString(c))
		}
	}
}

func TestMergeSentences_TrailingTextWithoutEnder(t *testing.T) {
	chunks := mergeSentences("完整的一句。结尾没有标点", 2000)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0], "结尾没有标点") {
		t.Errorf("trailing text lost: %q", chunks[0])
	}
}

func TestMergeSentences_EmptyInput(t *testing.T) {
	if chunks := mergeSentences("", 2000); len(chunks) != 0 {
		t.Errorf("empty input should yield no chunks, got %q", chunks)
	}
	if chunks := mergeSentences("   \n  ", 2000); len(chunks) != 0 {
		t.Errorf("whitespace input should yield no chunks, got %q", chunks)
	}
}

func TestMergeSentences_LongSentenceHardSplit(t *testing.T) {
	// 121 个字符的单句，句内没有结束符，必须硬切而不是整句超限送出
	long := strings.Repeat("长", 120) + "。"
	chunks := mergeSentences(long, 25)

	if len(chunks) < 5 {
		t.Fatalf("got %d chunks, want at least 5: %q", len(chunks), chunks)
	}
	var total int
	for i, c := range chunks {
		n := utf8.RuneCountInString(c)
		if n > 25 {
			t.Errorf("chunk %d exceeds limit: %d runes", i, n)
		}
		total += n
	}
	if total != 121 {
		t.Errorf("content lost in split: %d runes total, want 121", total)
	}
}

func TestMergeSentences_LongTailWithoutEnder(t *testing.T) {
	// 无结束符的超长尾部同样必须硬切
	chunks := mergeSentences(strings.Repeat("尾", 70), 25)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %q", len(chunks), chunks)
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 25 {
			t.Errorf("chunk %d exceeds limit: %d runes", i, n)
		}
	}
}

func TestSplitLongSentence_PrefersWhitespace(t *testing.T) {
	// 英文长句在空白处切分，不拆散单词
	sentence := strings.TrimSpace(strings.Repeat("word ", 12))
	pieces := splitLongSentence(sentence, 11)

	if len(pieces) != 6 {
		t.Fatalf("got %d pieces, want 6: %q", len(pieces), pieces)
	}
	for i, p := range pieces {
		if utf8.RuneCountInString(p) > 11 {
			t.Errorf("piece %d exceeds limit: %q", i, p)
		}
		for _, w := range strings.Fields(p) {
			if w != "word" {
				t.Errorf("piece %d broke a word: %q", i, p)
			}
		}
	}
}

func TestMergeSentences_ZeroMaxUsesDefault(t *testing.T) {
	chunks := mergeSentences("短句。", 0)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
}
