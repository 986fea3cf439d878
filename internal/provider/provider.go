// Package provider 封裝外部的文字生成供應商。
package provider

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable 沒有或無效的 API 金鑰
	ErrUnavailable = errors.New("generation provider unavailable")
	// ErrFailed 呼叫失敗、逾時或回應格式錯誤
	ErrFailed = errors.New("generation failed")
)

type Request struct {
	SystemInstruction string
	Transcript        string
	Temperature       float64
	MaxOutputTokens   int
}

type Response struct {
	Text           string
	PromptTokens   int
	ResponseTokens int
}

// Generator 依系統指示與逐字稿產生一則回覆
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
