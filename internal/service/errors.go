package service

import (
	"errors"

	"planroom/internal/provider"
	"planroom/internal/usage"
)

// 單一請求範圍內的錯誤；任何一種都不會關閉連線或房間。
var (
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrLimitReached        = usage.ErrLimitReached
	ErrProviderUnavailable = provider.ErrUnavailable
	ErrProviderError       = errors.New("ai provider error")
	ErrInFlight            = errors.New("ai request already in flight for room")
	ErrTurnTaking          = errors.New("ai already replied last")
)
