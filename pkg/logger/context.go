package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// WithContext 把日誌器綁到 ctx，沿用 zerolog 內建的 context key，
// 因此 zerolog.Ctx 與本套件的 Ctx 讀到的是同一個日誌器。
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// Ctx 取出 ctx 上的日誌器；沒有綁定時得到全域日誌器（見 init 中的 DefaultContextLogger）
func Ctx(ctx context.Context) zerolog.Logger {
	return *zerolog.Ctx(ctx)
}
