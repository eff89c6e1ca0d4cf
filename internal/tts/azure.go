package tts

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/iabetor/tingwen/internal/audio"
)

const (
	// azureOutputFormat 请求的输出格式，16-bit 单声道 PCM。
	azureOutputFormat = "riff-24khz-16bit-mono-pcm"
	// azureSampleRate 与输出格式对应的采样率。
	azureSampleRate = 24000
)

// AzureEngine 使用 Azure 语音服务的 REST 接口实现语音合成。
// 通过 SSML 控制音色和语速。
type AzureEngine struct {
	key      string
	endpoint string
	client   *http.Client
}

// NewAzureEngine 创建 Azure 语音合成引擎。
func NewAzureEngine(key, region string) (*AzureEngine, error) {
	if key == "" || region == "" {
		return nil, fmt.Errorf("[tts] Azure 引擎需要 key 和 region")
	}
	return &AzureEngine{
		key:      key,
		endpoint: fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region),
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Synthesize 将文本合成为单声道 float32 音频样本。
func (e *AzureEngine) Synthesize(ctx context.Context, text string, opts Options) ([]float32, int, error) {
	voice := opts.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	rate := opts.Rate
	if rate <= 0 {
		rate = 1.0
	}

	log.Printf("[tts] azure: 正在合成 %d 个字符，音色=%s，语速=%.1f", len([]rune(text)), voice, rate)

	ssml := buildSSML(text, voice, rate)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] 创建请求失败: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", azureOutputFormat)
	req.Header.Set("User-Agent", "tingwen")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] Azure 合成请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("[tts] Azure 返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] 读取音频响应失败: %w", err)
	}

	pcm := audio.StripWAVHeader(wav)
	if len(pcm) == 0 {
		return nil, 0, fmt.Errorf("[tts] Azure 未返回音频数据")
	}

	samples := audio.BytesToFloat32(pcm)
	log.Printf("[tts] azure: 收到 %d 字节 PCM，%d 个样本", len(pcm), len(samples))

	return samples, azureSampleRate, nil
}

// buildSSML 构造带音色和语速的 SSML 请求体。
// Azure 把不带符号的百分比解释为相对提速（100% 即两倍速），
// 原速请求不能包 prosody 元素。
func buildSSML(text, voice string, rate float64) string {
	body := html.EscapeString(text)
	if rate != 1.0 {
		body = fmt.Sprintf(`<prosody rate="%d%%">%s</prosody>`, int(rate*100), body)
	}
	return fmt.Sprintf(`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="en-US">`+
		`<voice name="%s">%s</voice></speak>`, voice, body)
}
