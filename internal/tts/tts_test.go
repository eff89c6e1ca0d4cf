package tts

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iabetor/tingwen/internal/audio"
)

func TestVoices(t *testing.T) {
	list := Voices()
	if len(list) == 0 {
		t.Fatal("voices list should not be empty")
	}
	if !ValidVoice(DefaultVoice) {
		t.Errorf("default voice %s should be valid", DefaultVoice)
	}
	if ValidVoice("no-such-voice") {
		t.Error("unknown voice should be invalid")
	}

	// Voices 返回副本，调用方修改不应影响内部列表
	list[0].Name = "mutated"
	if Voices()[0].Name == "mutated" {
		t.Error("Voices should return a copy")
	}
}

func TestBuildSSML(t *testing.T) {
	ssml := buildSSML("Hello <world> & friends", "en-US-AriaNeural", 1.5)

	if !strings.Contains(ssml, `<voice name="en-US-AriaNeural">`) {
		t.Errorf("missing voice element: %s", ssml)
	}
	if !strings.Contains(ssml, `<prosody rate="150%">`) {
		t.Errorf("missing prosody rate: %s", ssml)
	}
	// 文本中的 XML 特殊字符必须转义
	if !strings.Contains(ssml, "Hello &lt;world&gt; &amp; friends") {
		t.Errorf("text should be escaped: %s", ssml)
	}
}

func TestBuildSSML_DefaultRateOmitsProsody(t *testing.T) {
	// rate="100%" 会被 Azure 当作提速一倍，原速时必须省略 prosody
	ssml := buildSSML("plain text", "en-US-AriaNeural", 1.0)

	if strings.Contains(ssml, "<prosody") {
		t.Errorf("rate 1.0 should not emit prosody: %s", ssml)
	}
	if !strings.Contains(ssml, `<voice name="en-US-AriaNeural">plain text</voice>`) {
		t.Errorf("text should sit directly in the voice element: %s", ssml)
	}
}

func TestNewAzureEngine_MissingCredentials(t *testing.T) {
	if _, err := NewAzureEngine("", "eastasia"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewAzureEngine("key", ""); err == nil {
		t.Error("expected error for empty region")
	}
}

func TestAzureEngine_Synthesize(t *testing.T) {
	wantSamples := []float32{0, 0.25, -0.25, 0.5}
	wav := audio.EncodeWAV(wantSamples, azureSampleRate)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("subscription key header = %s", got)
		}
		if got := r.Header.Get("X-Microsoft-OutputFormat"); got != azureOutputFormat {
			t.Errorf("output format header = %s", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "zh-CN-XiaoxiaoNeural") {
			t.Errorf("ssml missing voice: %s", body)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(wav)
	}))
	defer srv.Close()

	e, err := NewAzureEngine("test-key", "eastasia")
	if err != nil {
		t.Fatal(err)
	}
	e.endpoint = srv.URL

	samples, rate, err := e.Synthesize(context.Background(), "你好",
		Options{Voice: "zh-CN-XiaoxiaoNeural", Rate: 1.0})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if rate != azureSampleRate {
		t.Errorf("sample rate = %d, want %d", rate, azureSampleRate)
	}
	if len(samples) != len(wantSamples) {
		t.Errorf("got %d samples, want %d", len(samples), len(wantSamples))
	}
}

func TestAzureEngine_Synthesize_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid subscription key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	e, err := NewAzureEngine("bad-key", "eastasia")
	if err != nil {
		t.Fatal(err)
	}
	e.endpoint = srv.URL

	if _, _, err := e.Synthesize(context.Background(), "hi", Options{}); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestAzureEngine_Synthesize_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	e, err := NewAzureEngine("key", "eastasia")
	if err != nil {
		t.Fatal(err)
	}
	e.endpoint = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, _, err := e.Synthesize(ctx, "hi", Options{}); err == nil {
		t.Fatal("expected error when context deadline exceeded")
	}
}

func TestTencentSpeed(t *testing.T) {
	tests := []struct {
		rate float64
		want float64
	}{
		{1.0, 0},
		{0, 0},
		{-1, 0},
		{1.5, 2.0},
		{2.0, 4.0},
		{0.8, -1.0},
		{0.5, -2.0},
		{10.0, 6.0}, // 超出上限钳位
		{0.1, -2.0}, // 超出下限钳位
	}

	for _, tt := range tests {
		if got := tencentSpeed(tt.rate); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("tencentSpeed(%.1f) = %.2f, want %.2f", tt.rate, got, tt.want)
		}
	}
}

func TestNewTencentEngine_MissingCredentials(t *testing.T) {
	if _, err := NewTencentEngine(TencentConfig{}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
