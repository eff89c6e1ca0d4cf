package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/hajimehoshi/go-mp3"
	tencenttts "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tts/v20190823"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"

	"github.com/iabetor/tingwen/internal/audio"
)

// TencentEngine 使用腾讯云 TTS 实现语音合成。
// 适用于中国大陆网络环境，音色为数字编号而非神经音色名称。
type TencentEngine struct {
	client    *tencenttts.Client
	voiceType int64
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string
	SecretKey string
	VoiceType int64
	Region    string
}

// NewTencentEngine 创建腾讯云 TTS 引擎。
func NewTencentEngine(cfg TencentConfig) (*TencentEngine, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS 需要 SecretID 和 SecretKey")
	}

	if cfg.VoiceType == 0 {
		cfg.VoiceType = 1001 // 默认音色：智瑜（女声）
	}
	if cfg.Region == "" {
		cfg.Region = "ap-guangzhou"
	}

	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tts.tencentcloudapi.com"

	client, err := tencenttts.NewClient(credential, cfg.Region, cpf)
	if err != nil {
		return nil, fmt.Errorf("[tts] 创建腾讯云 TTS 客户端失败: %w", err)
	}

	log.Printf("[tts] 腾讯云 TTS 引擎已初始化 (voice=%d, region=%s)", cfg.VoiceType, cfg.Region)

	return &TencentEngine{
		client:    client,
		voiceType: cfg.VoiceType,
	}, nil
}

// Synthesize 将文本合成为单声道 float32 音频样本。
// opts.Voice 为数字音色编号时覆盖配置的默认音色。
func (e *TencentEngine) Synthesize(ctx context.Context, text string, opts Options) ([]float32, int, error) {
	voiceType := e.voiceType
	if opts.Voice != "" {
		if v, err := strconv.ParseInt(opts.Voice, 10, 64); err == nil {
			voiceType = v
		}
	}

	log.Printf("[tts] 腾讯云 TTS: 正在合成 %d 个字符，音色=%d", len([]rune(text)), voiceType)

	request := tencenttts.NewTextToVoiceRequest()
	request.Text = common.StringPtr(text)
	request.VoiceType = common.Int64Ptr(voiceType)
	request.Codec = common.StringPtr("mp3")
	request.Speed = common.Float64Ptr(tencentSpeed(opts.Rate))
	request.Volume = common.Float64Ptr(5.0)

	response, err := e.client.TextToVoice(request)
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] 腾讯云 TTS 合成失败: %w", err)
	}

	if response.Response == nil || response.Response.Audio == nil {
		return nil, 0, fmt.Errorf("[tts] 腾讯云 TTS: 未返回音频数据")
	}

	mp3Data, err := base64.StdEncoding.DecodeString(*response.Response.Audio)
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] Base64 解码失败: %w", err)
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(mp3Data))
	if err != nil {
		return nil, 0, fmt.Errorf("[tts] MP3 解码失败: %w", err)
	}

	sampleRate := decoder.SampleRate()

	pcmBuf := new(bytes.Buffer)
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}
		n, err := decoder.Read(buf)
		if n > 0 {
			pcmBuf.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("[tts] 读取 PCM 数据失败: %w", err)
		}
	}

	samples := audio.StereoBytesToMonoFloat32(pcmBuf.Bytes())

	log.Printf("[tts] 腾讯云 TTS: 收到 %d 字节 MP3，生成 %d 个样本，采样率 %d Hz",
		len(mp3Data), len(samples), sampleRate)

	return samples, sampleRate, nil
}

// tencentSpeed 将语速倍率映射到腾讯云的 Speed 参数。
// 腾讯云取值范围 [-2, 6]：0 为正常，6 约 2.5 倍速，-2 约 0.6 倍速。
func tencentSpeed(rate float64) float64 {
	if rate <= 0 || rate == 1.0 {
		return 0
	}
	var speed float64
	if rate > 1.0 {
		speed = (rate - 1.0) * 4.0
	} else {
		speed = (rate - 1.0) * 5.0
	}
	if speed > 6 {
		speed = 6
	}
	if speed < -2 {
		speed = -2
	}
	return speed
}
