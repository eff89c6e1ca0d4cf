package service

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\s]+`)
	multiScore   = regexp.MustCompile(`_+`)
)

// maxBaseNameLen 会话目录基础名的最大长度（rune 数）。
const maxBaseNameLen = 50

// SafeFilename 根据来源生成安全的文件基础名。
// PDF 取文件名去掉扩展名，URL 取路径末段或域名，
// 直接文本输入使用随机生成的名称。
func SafeFilename(sourceName, sourceType string) string {
	var base string

	switch sourceType {
	case "pdf":
		if sourceName != "" {
			base = strings.TrimSuffix(path.Base(sourceName), path.Ext(sourceName))
		}
	case "url":
		if sourceName != "" {
			if u, err := url.Parse(sourceName); err == nil {
				// 优先取路径中最后一个有意义的片段
				segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
				if len(segs) > 0 {
					last := segs[len(segs)-1]
					base = strings.TrimSuffix(last, path.Ext(last))
				} else {
					base = strings.TrimPrefix(u.Host, "www.")
				}
			}
		}
	}

	safe := invalidChars.ReplaceAllString(base, "_")
	safe = multiScore.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")

	if r := []rune(safe); len(r) > maxBaseNameLen {
		safe = string(r[:maxBaseNameLen])
	}

	if safe == "" {
		safe = "text_" + uuid.NewString()[:8]
	}
	return safe
}
