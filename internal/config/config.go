package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 TingWen 的顶层配置结构。
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Extract ExtractConfig `yaml:"extract"`
	LLM     LLMConfig     `yaml:"llm"`
	TTS     TTSConfig     `yaml:"tts"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig Web 服务配置。
type ServerConfig struct {
	// Addr HTTP 监听地址，如 ":8080"。
	Addr string `yaml:"addr"`

	// OutputDir 音频输出目录。每次转换在其下创建一个会话子目录，
	// 生成的文件不会被自动删除。
	OutputDir string `yaml:"output_dir"`

	// MaxUploadMB 上传 PDF 的最大体积（MB）。
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// ExtractConfig 文本提取配置。
type ExtractConfig struct {
	// TimeoutSeconds 抓取网页的超时时间（秒）。
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// UserAgent 抓取网页时使用的 User-Agent。
	// 部分站点会拒绝无 UA 的请求。
	UserAgent string `yaml:"user_agent"`
}

// LLMConfig 文本优化（大模型改写）配置。
type LLMConfig struct {
	// Enabled 是否启用文本优化功能。关闭后 UI 不提供优化选项，
	// 提取出的文本原样送入语音合成。
	Enabled bool `yaml:"enabled"`

	// Models 按优先级排列的模型列表，请求失败时自动降级到下一个。
	Models []LLMModel `yaml:"models"`

	// MaxTokens 单次改写请求的最大 token 数。
	MaxTokens int `yaml:"max_tokens"`

	// Instructions 追加到默认优化提示词之后的自定义指令。
	Instructions string `yaml:"instructions"`
}

// LLMModel 描述一个大模型接入点。
type LLMModel struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"` // openai 或 azure

	// OpenAI 兼容接口字段。
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`

	// Azure OpenAI 专用字段。
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
}

// TTSConfig 语音合成配置。
type TTSConfig struct {
	// Engine 合成引擎：azure、edge 或 tencent。
	Engine string `yaml:"engine"`

	// DefaultVoice 未指定时使用的默认音色。
	DefaultVoice string `yaml:"default_voice"`

	// MaxChunkChars 单次合成请求的最大字符数，
	// 超长文本按句子边界切分为多段分别合成。
	MaxChunkChars int `yaml:"max_chunk_chars"`

	Azure   AzureTTSConfig `yaml:"azure"`
	Tencent TencentConfig  `yaml:"tencent"`
}

// AzureTTSConfig Azure 语音服务配置。
type AzureTTSConfig struct {
	Key    string `yaml:"key"`
	Region string `yaml:"region"`
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string `yaml:"secret_id"`
	SecretKey string `yaml:"secret_key"`
	VoiceType int64  `yaml:"voice_type"`
	Region    string `yaml:"region"`
}

// HistoryConfig 转换历史记录配置。
type HistoryConfig struct {
	// DBPath SQLite 数据库文件路径，为空则使用 ~/.tingwen/tingwen.db。
	DBPath string `yaml:"db_path"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${TINGWEN_AZURE_SPEECH_KEY}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.OutputDir == "" {
		cfg.Server.OutputDir = "audio_output"
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Extract.TimeoutSeconds == 0 {
		cfg.Extract.TimeoutSeconds = 15
	}
	if cfg.Extract.UserAgent == "" {
		cfg.Extract.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 TingWen/1.0"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2048
	}
	if cfg.TTS.Engine == "" {
		cfg.TTS.Engine = "azure"
	}
	if cfg.TTS.DefaultVoice == "" {
		cfg.TTS.DefaultVoice = "en-US-AriaNeural"
	}
	if cfg.TTS.MaxChunkChars == 0 {
		cfg.TTS.MaxChunkChars = 2000
	}
	if cfg.TTS.Tencent.Region == "" {
		cfg.TTS.Tencent.Region = "ap-guangzhou"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	for i := range cfg.LLM.Models {
		m := &cfg.LLM.Models[i]
		if m.Provider == "" {
			m.Provider = "openai"
		}
		if m.Provider == "azure" && m.APIVersion == "" {
			m.APIVersion = "2024-02-15-preview"
		}
		// 去除 API Key 两端可能的空白（环境变量展开后常见）
		m.APIKey = strings.TrimSpace(m.APIKey)
	}
	cfg.TTS.Azure.Key = strings.TrimSpace(cfg.TTS.Azure.Key)
	cfg.TTS.Tencent.SecretID = strings.TrimSpace(cfg.TTS.Tencent.SecretID)
	cfg.TTS.Tencent.SecretKey = strings.TrimSpace(cfg.TTS.Tencent.SecretKey)
}

// Validate 检查凭据完整性。缺失凭据时在任何网络请求发起前报错，
// 避免运行到一半才因为认证失败中断。
func (cfg *Config) Validate() error {
	switch cfg.TTS.Engine {
	case "azure":
		if cfg.TTS.Azure.Key == "" || cfg.TTS.Azure.Region == "" {
			return fmt.Errorf("azure 引擎需要配置 tts.azure.key 和 tts.azure.region")
		}
	case "tencent":
		if cfg.TTS.Tencent.SecretID == "" || cfg.TTS.Tencent.SecretKey == "" {
			return fmt.Errorf("tencent 引擎需要配置 tts.tencent.secret_id 和 tts.tencent.secret_key")
		}
	case "edge":
		// Edge TTS 无需凭据
	default:
		return fmt.Errorf("不支持的 TTS 引擎: %s", cfg.TTS.Engine)
	}

	if cfg.LLM.Enabled {
		if len(cfg.LLM.Models) == 0 {
			return fmt.Errorf("已启用文本优化但未配置任何 llm.models")
		}
		for _, m := range cfg.LLM.Models {
			switch m.Provider {
			case "openai":
				if m.APIURL == "" || m.APIKey == "" {
					return fmt.Errorf("llm 模型 %q 需要配置 api_url 和 api_key", m.Name)
				}
			case "azure":
				if m.Endpoint == "" || m.APIKey == "" || m.Deployment == "" {
					return fmt.Errorf("llm 模型 %q 需要配置 endpoint、api_key 和 deployment", m.Name)
				}
			default:
				return fmt.Errorf("llm 模型 %q 的 provider 不支持: %s", m.Name, m.Provider)
			}
		}
	}

	return nil
}
