package tts

// DefaultVoice 未指定音色时的默认值。
const DefaultVoice = "en-US-AriaNeural"

// Voice 描述一个可选的神经网络音色。
// Azure 语音服务和 Edge TTS 使用同一套音色标识。
type Voice struct {
	Name        string `json:"name"`         // 服务端音色标识
	DisplayName string `json:"display_name"` // UI 显示名称
	Locale      string `json:"locale"`
	Gender      string `json:"gender"`
}

// voices 是 UI 音色选择器的候选列表。
var voices = []Voice{
	{Name: "en-US-AriaNeural", DisplayName: "Aria（女声，美式英语）", Locale: "en-US", Gender: "Female"},
	{Name: "en-US-GuyNeural", DisplayName: "Guy（男声，美式英语）", Locale: "en-US", Gender: "Male"},
	{Name: "en-US-JennyNeural", DisplayName: "Jenny（女声，美式英语）", Locale: "en-US", Gender: "Female"},
	{Name: "en-US-DavisNeural", DisplayName: "Davis（男声，美式英语）", Locale: "en-US", Gender: "Male"},
	{Name: "en-US-EmmaNeural", DisplayName: "Emma（女声，美式英语）", Locale: "en-US", Gender: "Female"},
	{Name: "zh-CN-XiaoxiaoNeural", DisplayName: "晓晓（女声，普通话）", Locale: "zh-CN", Gender: "Female"},
	{Name: "zh-CN-XiaoyiNeural", DisplayName: "晓伊（女声，普通话）", Locale: "zh-CN", Gender: "Female"},
	{Name: "zh-CN-YunxiNeural", DisplayName: "云希（男声，普通话）", Locale: "zh-CN", Gender: "Male"},
	{Name: "zh-CN-YunjianNeural", DisplayName: "云健（男声，普通话）", Locale: "zh-CN", Gender: "Male"},
}

// Voices 返回所有可选音色。
func Voices() []Voice {
	out := make([]Voice, len(voices))
	copy(out, voices)
	return out
}

// ValidVoice 判断音色标识是否在候选列表中。
func ValidVoice(name string) bool {
	for _, v := range voices {
		if v.Name == name {
			return true
		}
	}
	return false
}
