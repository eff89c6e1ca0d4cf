// Package service 实现文本转音频的编排流水线：
// 提取 → （可选）优化 → 切分 → 合成 → 写文件。
// 流程严格线性，任一阶段失败则整个请求失败，不保留中间结果。
package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iabetor/tingwen/internal/audio"
	"github.com/iabetor/tingwen/internal/config"
	"github.com/iabetor/tingwen/internal/extract"
	"github.com/iabetor/tingwen/internal/llm"
	"github.com/iabetor/tingwen/internal/logger"
	"github.com/iabetor/tingwen/internal/store"
	"github.com/iabetor/tingwen/internal/tts"
)

// SourceType 输入来源类型。
type SourceType string

const (
	SourceText SourceType = "text"
	SourcePDF  SourceType = "pdf"
	SourceURL  SourceType = "url"
)

// Request 一次转换请求。Source 决定 Text/PDF/URL 中哪个字段有效。
type Request struct {
	Source SourceType
	Text   string
	PDF    []byte
	URL    string

	// SourceName 来源名称（PDF 文件名或 URL），用于生成输出文件名。
	SourceName string

	Voice    string
	Rate     float64
	Optimize bool

	// Instructions 本次请求附加的优化指令，可为空。
	Instructions string
}

// Result 转换结果。
type Result struct {
	// SessionDir 相对输出目录的会话子目录名。
	SessionDir string
	// Files 生成的音频文件名（相对会话目录），按段顺序排列。
	Files []string
	// Text 实际送入合成的最终文本。
	Text    string
	Chunks  int
	Stats   TextStats
	Elapsed time.Duration
}

// Converter 编排转换流水线的服务。
type Converter struct {
	extractor *extract.Extractor
	optimizer *llm.Optimizer // 为 nil 时优化步骤不可用
	engine    tts.Engine
	history   *store.Store // 为 nil 时不记录历史

	outputDir     string
	maxChunkChars int
	defaultVoice  string
}

// New 根据配置创建 Converter，构造提取器、优化器、合成引擎和历史存储。
func New(cfg *config.Config) (*Converter, error) {
	extractor := extract.New(
		time.Duration(cfg.Extract.TimeoutSeconds)*time.Second,
		cfg.Extract.UserAgent,
	)

	engine, err := buildEngine(cfg)
	if err != nil {
		return nil, err
	}

	var optimizer *llm.Optimizer
	if cfg.LLM.Enabled {
		models := make([]llm.ModelConfig, 0, len(cfg.LLM.Models))
		for _, m := range cfg.LLM.Models {
			models = append(models, llm.ModelConfig{
				Name:       m.Name,
				Provider:   m.Provider,
				APIURL:     m.APIURL,
				APIKey:     m.APIKey,
				Model:      m.Model,
				Endpoint:   m.Endpoint,
				Deployment: m.Deployment,
				APIVersion: m.APIVersion,
				MaxTokens:  cfg.LLM.MaxTokens,
			})
		}
		provider, err := llm.NewMultiProvider(models)
		if err != nil {
			return nil, fmt.Errorf("创建 LLM 提供者失败: %w", err)
		}
		optimizer = llm.NewOptimizer(provider, cfg.LLM.Instructions)
	}

	history, err := store.Open(cfg.History.DBPath)
	if err != nil {
		return nil, fmt.Errorf("打开历史数据库失败: %w", err)
	}

	if err := os.MkdirAll(cfg.Server.OutputDir, 0755); err != nil {
		history.Close()
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	c := NewConverter(extractor, optimizer, engine, history,
		cfg.Server.OutputDir, cfg.TTS.MaxChunkChars)
	c.defaultVoice = cfg.TTS.DefaultVoice
	return c, nil
}

// buildEngine 根据配置选择合成引擎。
func buildEngine(cfg *config.Config) (tts.Engine, error) {
	switch cfg.TTS.Engine {
	case "azure":
		return tts.NewAzureEngine(cfg.TTS.Azure.Key, cfg.TTS.Azure.Region)
	case "edge":
		return tts.NewEdgeEngine(), nil
	case "tencent":
		return tts.NewTencentEngine(tts.TencentConfig{
			SecretID:  cfg.TTS.Tencent.SecretID,
			SecretKey: cfg.TTS.Tencent.SecretKey,
			VoiceType: cfg.TTS.Tencent.VoiceType,
			Region:    cfg.TTS.Tencent.Region,
		})
	default:
		return nil, fmt.Errorf("不支持的 TTS 引擎: %s", cfg.TTS.Engine)
	}
}

// NewConverter 用现成的组件组装 Converter，主要供测试使用。
func NewConverter(extractor *extract.Extractor, optimizer *llm.Optimizer,
	engine tts.Engine, history *store.Store, outputDir string, maxChunkChars int) *Converter {
	if maxChunkChars <= 0 {
		maxChunkChars = 2000
	}
	return &Converter{
		extractor:     extractor,
		optimizer:     optimizer,
		engine:        engine,
		history:       history,
		outputDir:     outputDir,
		maxChunkChars: maxChunkChars,
		defaultVoice:  tts.DefaultVoice,
	}
}

// OptimizeAvailable 返回优化步骤是否可用（是否配置了 LLM）。
func (c *Converter) OptimizeAvailable() bool {
	return c.optimizer != nil
}

// OutputDir 返回音频输出目录。
func (c *Converter) OutputDir() string {
	return c.outputDir
}

// History 返回最近的转换记录。
func (c *Converter) History(limit int) ([]store.Conversion, error) {
	if c.history == nil {
		return nil, nil
	}
	return c.history.Recent(limit)
}

// Close 释放持有的资源。
func (c *Converter) Close() error {
	if c.history != nil {
		return c.history.Close()
	}
	return nil
}

// Convert 执行一次完整的转换。
// 返回的错误为 *StageError，标明失败的阶段。
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	// 阶段一：提取文本
	text, err := c.extractText(ctx, req)
	if err != nil {
		return nil, stageErr(StageExtract, err)
	}

	// 阶段二：可选的 LLM 优化。失败即整体失败，不降级使用原文。
	if req.Optimize {
		if c.optimizer == nil {
			logger.Warnf("[service] 请求了文本优化但未配置 LLM，跳过优化步骤")
		} else {
			optimized, err := c.optimizer.Optimize(ctx, text, req.Instructions)
			if err != nil {
				return nil, stageErr(StageOptimize, err)
			}
			text = optimized
		}
	}

	voice := req.Voice
	if voice == "" {
		voice = c.defaultVoice
	}
	rate := req.Rate
	if rate <= 0 {
		rate = 1.0
	}

	// 阶段三：按句切分
	chunks := mergeSentences(text, c.maxChunkChars)
	if len(chunks) == 0 {
		return nil, stageErr(StageExtract, fmt.Errorf("没有可合成的文本"))
	}

	// 会话目录：基础名 + 时间戳，不同请求互不冲突
	base := SafeFilename(req.SourceName, string(req.Source))
	sessionDir := fmt.Sprintf("%s_%s", base, start.Format("20060102_150405"))
	absSession := filepath.Join(c.outputDir, sessionDir)
	if err := os.MkdirAll(absSession, 0755); err != nil {
		return nil, stageErr(StageWrite, fmt.Errorf("创建会话目录失败: %w", err))
	}

	logger.Infof("[service] 开始合成: source=%s voice=%s rate=%.1f chunks=%d chars=%d",
		req.Source, voice, rate, len(chunks), len([]rune(text)))

	// 阶段四/五：逐段合成并写文件
	files := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		samples, sampleRate, err := c.engine.Synthesize(ctx, chunk, tts.Options{
			Voice: voice,
			Rate:  rate,
		})
		if err != nil {
			return nil, stageErr(StageSynthesize, fmt.Errorf("第 %d/%d 段合成失败: %w", i+1, len(chunks), err))
		}

		name := chunkFileName(base, i, len(chunks))
		if err := audio.WriteWAVFile(filepath.Join(absSession, name), samples, sampleRate); err != nil {
			return nil, stageErr(StageWrite, err)
		}
		files = append(files, name)
	}

	result := &Result{
		SessionDir: sessionDir,
		Files:      files,
		Text:       text,
		Chunks:     len(chunks),
		Stats:      Stats(text),
		Elapsed:    time.Since(start),
	}

	// 历史记录失败不影响转换结果
	if c.history != nil {
		rec := &store.Conversion{
			SourceType: string(req.Source),
			SourceName: req.SourceName,
			Voice:      voice,
			Rate:       rate,
			Optimized:  req.Optimize && c.optimizer != nil,
			Chunks:     len(chunks),
			Characters: result.Stats.Characters,
			SessionDir: sessionDir,
		}
		if err := c.history.Add(rec); err != nil {
			logger.Warnf("[service] 写入历史记录失败: %v", err)
		}
	}

	logger.Infof("[service] 合成完成: %d 个文件，耗时 %s", len(files), result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// extractText 按来源类型提取文本。
func (c *Converter) extractText(ctx context.Context, req Request) (string, error) {
	switch req.Source {
	case SourceText:
		return c.extractor.FromText(req.Text)
	case SourcePDF:
		return c.extractor.FromPDF(bytes.NewReader(req.PDF), int64(len(req.PDF)))
	case SourceURL:
		return c.extractor.FromURL(ctx, req.URL)
	default:
		return "", fmt.Errorf("未知的输入类型: %s", req.Source)
	}
}

// chunkFileName 生成段音频文件名。
// 单段时为 base.wav，多段时为 base_part_01_of_03.wav 形式，
// 编号补零保证文件按名称排序即播放顺序。
func chunkFileName(base string, index, total int) string {
	if total == 1 {
		return base + ".wav"
	}
	width := len(fmt.Sprintf("%d", total))
	return fmt.Sprintf("%s_part_%0*d_of_%d.wav", base, width, index+1, total)
}
