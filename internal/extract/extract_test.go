package extract

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFromText(t *testing.T) {
	e := New(5*time.Second, "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"普通文本", "你好，世界。", "你好，世界。", false},
		{"去除首尾空白", "  hello  ", "hello", false},
		{"压缩连续空行", "第一段\n\n\n第二段", "第一段\n第二段", false},
		{"空输入", "", "", true},
		{"纯空白输入", "   \n\t  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.FromText(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromURL_HTML(t *testing.T) {
	html := `<!DOCTYPE html>
<html><head><title>t</title>
<script>var ignored = "script content";</script>
<style>body { color: red; }</style>
</head>
<body>
<h1>文章标题</h1>
<p>这是正文的   第一段。</p>
<p>This is the second paragraph.</p>
<noscript>noscript content</noscript>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "tingwen-test" {
			t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	e := New(5*time.Second, "tingwen-test")
	text, err := e.FromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FromURL failed: %v", err)
	}

	if !strings.Contains(text, "文章标题") {
		t.Errorf("missing heading in %q", text)
	}
	if !strings.Contains(text, "这是正文的 第一段。") {
		t.Errorf("inline whitespace should collapse, got %q", text)
	}
	if !strings.Contains(text, "This is the second paragraph.") {
		t.Errorf("missing paragraph in %q", text)
	}
	if strings.Contains(text, "script content") || strings.Contains(text, "color: red") {
		t.Errorf("script/style content should be removed, got %q", text)
	}
	if strings.Contains(text, "noscript content") {
		t.Errorf("noscript content should be removed, got %q", text)
	}
}

func TestFromURL_Feed(t *testing.T) {
	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>测试订阅源</title>
<item><title>第一条新闻</title><description>&lt;p&gt;新闻摘要内容。&lt;/p&gt;</description></item>
<item><title>第二条新闻</title><description>另一条摘要。</description></item>
</channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	e := New(5*time.Second, "")
	text, err := e.FromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FromURL failed: %v", err)
	}

	for _, want := range []string{"测试订阅源", "第一条新闻", "新闻摘要内容。", "第二条新闻"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	if strings.Contains(text, "<p>") {
		t.Errorf("html tags should be stripped from feed items, got %q", text)
	}
}

func TestFromURL_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := New(5*time.Second, "")
	if _, err := e.FromURL(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestFromURL_InvalidURL(t *testing.T) {
	e := New(5*time.Second, "")

	for _, raw := range []string{"", "not-a-url", "ftp://example.com/x", "http://"} {
		if _, err := e.FromURL(context.Background(), raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestFromURL_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><script>only()</script></body></html>"))
	}))
	defer srv.Close()

	e := New(5*time.Second, "")
	if _, err := e.FromURL(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for page without text")
	}
}

func TestIsFeedContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"application/rss+xml", true},
		{"application/atom+xml; charset=utf-8", true},
		{"text/xml", true},
		{"application/xml", true},
		{"text/html; charset=utf-8", false},
		{"application/json", false},
	}
	for _, tt := range tests {
		if got := isFeedContentType(tt.ct); got != tt.want {
			t.Errorf("isFeedContentType(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

func TestFromPDF_Corrupt(t *testing.T) {
	e := New(5*time.Second, "")
	data := []byte("this is not a pdf file at all")
	if _, err := e.FromPDF(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}
