package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Anthropic {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAnthropic("test-key", "claude-test", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
}

func TestAnthropic_Generate(t *testing.T) {
	var got map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "  Book the JR pass early.  "}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 120, "output_tokens": 18}
		}`)
	})

	resp, err := p.Generate(context.Background(), Request{
		SystemInstruction: "be concise",
		Transcript:        "USERS 1: alice | MSGS 1\nalice:plan japan trip",
		Temperature:       0.7,
		MaxOutputTokens:   500,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if resp.Text != "Book the JR pass early." {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.PromptTokens != 120 || resp.ResponseTokens != 18 {
		t.Errorf("unexpected tokens %d/%d", resp.PromptTokens, resp.ResponseTokens)
	}

	if got["model"] != "claude-test" {
		t.Errorf("request model = %v", got["model"])
	}
	if got["max_tokens"] != float64(500) {
		t.Errorf("request max_tokens = %v", got["max_tokens"])
	}
	if _, ok := got["system"]; !ok {
		t.Error("request missing system instruction")
	}
}

func TestAnthropic_NoAPIKey(t *testing.T) {
	p := NewAnthropic("", "claude-test")
	_, err := p.Generate(context.Background(), Request{Transcript: "x", MaxOutputTokens: 10})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestAnthropic_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"invalid key", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, ErrUnavailable},
		{"server error", http.StatusInternalServerError, `{"type":"error","error":{"type":"api_error","message":"boom"}}`, ErrFailed},
		{"empty content", http.StatusOK, `{"id":"msg_02","type":"message","role":"assistant","model":"claude-test","content":[],"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":0}}`, ErrFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := p.Generate(context.Background(), Request{Transcript: "x", MaxOutputTokens: 10})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAnthropic_Timeout(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, Request{Transcript: "x", MaxOutputTokens: 10})
	if !errors.Is(err, ErrFailed) {
		t.Errorf("expected ErrFailed on timeout, got %v", err)
	}
}
