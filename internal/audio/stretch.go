package audio

// Stretch 通过线性插值重采样改变播放速度。
// rate > 1.0 加快（样本变少），rate < 1.0 减慢（样本变多）。
// 用于不支持原生语速参数的合成引擎，音调会随速度一起变化。
func Stretch(samples []float32, rate float64) []float32 {
	if rate <= 0 || rate == 1.0 || len(samples) < 2 {
		return samples
	}

	outLen := int(float64(len(samples)) / rate)
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float32, outLen)
	for i := 0; i < outLen; i++ {
		pos := float64(i) * rate
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}
