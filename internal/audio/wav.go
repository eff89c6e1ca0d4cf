package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// EncodeWAV 将单声道 float32 样本编码为 16-bit PCM 的 RIFF/WAVE 字节流。
func EncodeWAV(samples []float32, sampleRate int) []byte {
	pcm := Float32ToInt16(samples)
	dataSize := len(pcm) * 2

	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataSize)

	// RIFF 头
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	// fmt 块
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	// data 块
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range pcm {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

// WriteWAVFile 将单声道 float32 样本写入 WAV 文件。
func WriteWAVFile(path string, samples []float32, sampleRate int) error {
	if len(samples) == 0 {
		return fmt.Errorf("没有可写入的音频样本")
	}
	if err := os.WriteFile(path, EncodeWAV(samples, sampleRate), 0644); err != nil {
		return fmt.Errorf("写入音频文件 %s 失败: %w", path, err)
	}
	return nil
}

// StripWAVHeader 去掉 RIFF/WAVE 头，返回 data 块中的原始 PCM 字节。
// 输入不是 RIFF 格式时原样返回。
func StripWAVHeader(b []byte) []byte {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return b
	}

	// 逐块扫描直到 data 块
	offset := 12
	for offset+8 <= len(b) {
		chunkID := string(b[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(b[offset+4 : offset+8]))
		if chunkID == "data" {
			end := offset + 8 + chunkSize
			if end > len(b) {
				end = len(b)
			}
			return b[offset+8 : end]
		}
		offset += 8 + chunkSize
	}
	return nil
}
