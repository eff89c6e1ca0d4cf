package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/hajimehoshi/go-mp3"
	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/iabetor/tingwen/internal/audio"
)

// EdgeEngine 使用微软 Edge TTS 实现语音合成，无需凭据。
// 通过 edge-tts-go 获取 MP3 音频，再用 go-mp3 解码为 PCM。
// Edge 协议不提供语速参数，语速通过重采样实现。
type EdgeEngine struct{}

// NewEdgeEngine 创建 Edge TTS 引擎。
func NewEdgeEngine() *EdgeEngine {
	return &EdgeEngine{}
}

// Synthesize 将文本合成为单声道 float32 音频样本。
func (e *EdgeEngine) Synthesize(ctx context.Context, text string, opts Options) ([]float32, int, error) {
	voice := opts.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	log.Printf("[tts] edge-tts: 正在合成 %d 个字符，音色=%s", len([]rune(text)), voice)

	// 创建 Communicate 实例并通过 Stream() 获取 MP3 音频块
	comm, err := edge.NewCommunicate(text, edge.WithVoice(voice))
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] edge-tts 创建实例失败: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] edge-tts 开始流式合成失败: %w", err)
	}

	// 从 channel 收集所有音频数据
	var mp3Buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}
		// Stream() 返回的 map 中，type=="audio" 的条目包含音频数据
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				mp3Buf.Write(data)
			}
		}
	}

	mp3Data := mp3Buf.Bytes()
	if len(mp3Data) == 0 {
		return nil, 0, fmt.Errorf("[tts] edge-tts: 未收到音频数据")
	}

	// 解码 MP3 为原始 PCM
	decoder, err := mp3.NewDecoder(bytes.NewReader(mp3Data))
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] MP3 解码失败: %w", err)
	}

	sampleRate := decoder.SampleRate()

	pcmData, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] 读取 PCM 数据失败: %w", err)
	}

	// go-mp3 输出立体声 signed 16-bit LE PCM，转为单声道 float32
	samples := audio.StereoBytesToMonoFloat32(pcmData)

	// 语速通过重采样实现
	if opts.Rate > 0 && opts.Rate != 1.0 {
		samples = audio.Stretch(samples, opts.Rate)
	}

	log.Printf("[tts] edge-tts: 收到 %d 字节 MP3，生成 %d 个样本，采样率 %d Hz",
		len(mp3Data), len(samples), sampleRate)

	return samples, sampleRate, nil
}
