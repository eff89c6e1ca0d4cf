package audio

import (
	"encoding/binary"
	"math"
)

// Float32ToInt16 将 [-1.0, 1.0] 范围的 float32 样本转换为 PCM int16。
func Float32ToInt16(in []float32) []int16 {
	out := make([]int16, len(in))
	for i, s := range in {
		// 钳位到 [-1.0, 1.0]
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		out[i] = int16(s * math.MaxInt16)
	}
	return out
}

// Int16ToFloat32 将 PCM int16 样本转换为 [-1.0, 1.0] 范围的 float32。
func Int16ToFloat32(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = float32(s) / math.MaxInt16
	}
	return out
}

// BytesToFloat32 将小端 16-bit 单声道 PCM 字节转换为 float32 样本。
func BytesToFloat32(b []byte) []float32 {
	n := len(b) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(b[2*i : 2*i+2]))
		out[i] = float32(s) / math.MaxInt16
	}
	return out
}

// StereoBytesToMonoFloat32 将小端 16-bit 立体声 PCM 字节转换为单声道 float32。
// 每个立体声帧 4 字节：左声道 2 字节 + 右声道 2 字节，左右取平均。
// 不完整的尾部帧会被丢弃。
func StereoBytesToMonoFloat32(pcm []byte) []float32 {
	const bytesPerFrame = 4
	if len(pcm)%bytesPerFrame != 0 {
		pcm = pcm[:len(pcm)/bytesPerFrame*bytesPerFrame]
	}

	numFrames := len(pcm) / bytesPerFrame
	samples := make([]float32, numFrames)

	for i := 0; i < numFrames; i++ {
		offset := i * bytesPerFrame
		left := int16(binary.LittleEndian.Uint16(pcm[offset : offset+2]))
		right := int16(binary.LittleEndian.Uint16(pcm[offset+2 : offset+4]))
		mono := (float32(left) + float32(right)) / 2.0
		samples[i] = mono / 32768.0
	}

	return samples
}
