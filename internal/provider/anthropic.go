package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic 以 Claude Messages API 實作 Generator
type Anthropic struct {
	client *anthropic.Client
	model  string
}

// NewAnthropic 建立供應商；apiKey 為空時 Generate 一律回傳 ErrUnavailable。
func NewAnthropic(apiKey, model string, opts ...option.RequestOption) *Anthropic {
	if apiKey == "" {
		return &Anthropic{model: model}
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return &Anthropic{client: &client, model: model}
}

func (a *Anthropic) Generate(ctx context.Context, req Request) (*Response, error) {
	if a.client == nil {
		return nil, fmt.Errorf("%w: no api key configured", ErrUnavailable)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(req.MaxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Transcript)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemInstruction},
		}
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}

	reply := strings.TrimSpace(text.String())
	if reply == "" {
		return nil, fmt.Errorf("%w: empty response (stop reason %s)", ErrFailed, message.StopReason)
	}

	return &Response{
		Text:           reply,
		PromptTokens:   int(message.Usage.InputTokens),
		ResponseTokens: int(message.Usage.OutputTokens),
	}, nil
}
