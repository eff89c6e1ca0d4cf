package tts

import "context"

// Options 单次合成的参数。
type Options struct {
	// Voice 音色标识，如 en-US-AriaNeural。
	Voice string

	// Rate 语速倍率，1.0 为正常速度，有效范围约 [0.5, 2.0]。
	Rate float64
}

// Engine 定义语音合成后端接口。
type Engine interface {
	// Synthesize 将文本转换为音频。
	// 返回单声道 float32 音频样本、采样率（Hz）和错误。
	Synthesize(ctx context.Context, text string, opts Options) ([]float32, int, error)
}
