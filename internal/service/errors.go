package service

import "fmt"

// Stage 标识流水线中的一个阶段。
type Stage string

const (
	StageExtract    Stage = "extract"
	StageOptimize   Stage = "optimize"
	StageSynthesize Stage = "synthesize"
	StageWrite      Stage = "write"
)

// StageError 携带失败阶段信息的错误。
// 流水线任一阶段失败即整体失败，错误信息标明出错的阶段。
type StageError struct {
	Stage Stage
	Err   error
}

// Error 实现 error 接口。
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.StageLabel(), e.Err)
}

// Unwrap 支持 errors.Is / errors.As。
func (e *StageError) Unwrap() error {
	return e.Err
}

// StageLabel 返回阶段的中文名称，用于 UI 展示。
func (e *StageError) StageLabel() string {
	switch e.Stage {
	case StageExtract:
		return "文本提取失败"
	case StageOptimize:
		return "文本优化失败"
	case StageSynthesize:
		return "语音合成失败"
	case StageWrite:
		return "音频写入失败"
	default:
		return "转换失败"
	}
}

// stageErr 构造 StageError。
func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
