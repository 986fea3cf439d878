package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"planroom/internal/models"
	"planroom/internal/provider"
	"planroom/internal/transcript"
	"planroom/internal/usage"
	"planroom/pkg/logger"
)

// State 是房間 AI 助手的狀態
type State int

const (
	StateIdle State = iota
	StateAdmissionCheck
	StateContextBuild
	StateGenerating
	StateSettle
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdmissionCheck:
		return "admission_check"
	case StateContextBuild:
		return "context_build"
	case StateGenerating:
		return "generating"
	case StateSettle:
		return "settle"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// NoticePolicy 決定供應商錯誤以系統通知或 AI 訊息呈現
type NoticePolicy string

const (
	NoticeSystem NoticePolicy = "system"
	NoticeAI     NoticePolicy = "ai"
)

// 對房間廣播的固定通知
const (
	NoticeLimitReached = "AI usage limit reached"
	NoticeUnavailable  = "AI assistant is not configured"
	NoticeFailed       = "AI could not respond right now. Please try again later."
	NoticeTurnTaking   = "The AI just replied. Wait for someone else to chime in before asking again."
)

type AssistantConfig struct {
	SystemPrompt    string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
	WindowSize      int
	ErrorNotice     NoticePolicy
	TurnTaking      bool
}

// Assistant 依序執行 准入 → 建立上下文 → 生成 → 結算，
// 同一房間同一時間最多只有一個流程在進行。
type Assistant struct {
	cfg       AssistantConfig
	ledger    *usage.Ledger
	store     MessageStore
	generator provider.Generator
	relay     *Relay
	locker    RoomLocker

	mu     sync.Mutex
	states map[string]State
	closed bool
	wg     sync.WaitGroup
}

func NewAssistant(cfg AssistantConfig, ledger *usage.Ledger, store MessageStore,
	generator provider.Generator, relay *Relay, locker RoomLocker) *Assistant {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = transcript.DefaultWindowSize
	}
	if cfg.ErrorNotice == "" {
		cfg.ErrorNotice = NoticeSystem
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Assistant{
		cfg:       cfg,
		ledger:    ledger,
		store:     store,
		generator: generator,
		relay:     relay,
		locker:    locker,
		states:    make(map[string]State),
	}
}

// State 回傳房間目前的狀態
func (a *Assistant) State(room string) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.states[room]
}

func (a *Assistant) setState(ctx context.Context, room string, s State) {
	a.mu.Lock()
	if s == StateIdle {
		delete(a.states, room)
	} else {
		a.states[room] = s
	}
	a.mu.Unlock()

	l := logger.Ctx(ctx)
	l.Debug().Str(logger.FieldRoom, room).Str(logger.FieldState, s.String()).Msg("assistant state")
}

// Dispatch 在背景處理 AI 請求。使用獨立的 context，
// 發出請求的連線關閉時不會取消生成，房間內其他人仍會收到回覆。
// Shutdown 之後不再接受新請求，回傳 false。
func (a *Assistant) Dispatch(ctx context.Context, room, requester string) bool {
	ctx = context.WithoutCancel(ctx)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		l := logger.Ctx(ctx)
		l.Info().Str(logger.FieldRoom, room).Msg("ai request rejected: shutting down")
		return false
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		if err := a.Request(ctx, room, requester); err != nil {
			l := logger.Ctx(ctx)
			l.Info().Err(err).Str(logger.FieldRoom, room).Str(logger.FieldUsername, requester).
				Msg("ai request finished without reply")
		}
	}()
	return true
}

// Wait 等待所有背景請求結束
func (a *Assistant) Wait() {
	a.wg.Wait()
}

// Shutdown 停止接受新請求並等待進行中的請求結算
func (a *Assistant) Shutdown() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
}

// Request 同步執行一次 AI 請求。所有錯誤都只影響這次請求。
func (a *Assistant) Request(ctx context.Context, room, requester string) error {
	if requester == models.UsernameAI {
		return fmt.Errorf("%w: ai cannot trigger itself", ErrMalformedPayload)
	}

	release, ok, err := a.locker.TryLock(ctx, room)
	if err != nil {
		a.fail(ctx, room, err)
		return fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	if !ok {
		return ErrInFlight
	}
	defer release()
	defer a.setState(ctx, room, StateIdle)

	// 准入
	a.setState(ctx, room, StateAdmissionCheck)
	spent, err := a.ledger.CheckBudget(ctx, room)
	if errors.Is(err, usage.ErrLimitReached) {
		l := logger.Ctx(ctx)
		l.Info().Str(logger.FieldRoom, room).Str(logger.FieldCost, spent.StringFixed(usage.CostPrecision)).
			Msg("ai request denied: spend ceiling reached")
		a.relay.Notice(room, NoticeLimitReached)
		return ErrLimitReached
	}
	if err != nil {
		a.fail(ctx, room, err)
		return fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	// 建立上下文
	a.setState(ctx, room, StateContextBuild)
	history, err := a.store.ListMessages(ctx, room)
	if err != nil {
		a.fail(ctx, room, err)
		return fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	if a.cfg.TurnTaking && len(history) > 0 && history[len(history)-1].Author == models.UsernameAI {
		a.relay.Notice(room, NoticeTurnTaking)
		return ErrTurnTaking
	}
	text := transcript.Compress(history, a.cfg.WindowSize)

	// 生成
	a.setState(ctx, room, StateGenerating)
	genCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	resp, err := a.generator.Generate(genCtx, provider.Request{
		SystemInstruction: a.cfg.SystemPrompt,
		Transcript:        text,
		Temperature:       a.cfg.Temperature,
		MaxOutputTokens:   a.cfg.MaxOutputTokens,
	})
	cancel()
	if errors.Is(err, provider.ErrUnavailable) {
		l := logger.Ctx(ctx)
		l.Warn().Err(err).Str(logger.FieldRoom, room).Msg("ai provider unavailable")
		a.relay.Notice(room, NoticeUnavailable)
		return err
	}
	if err != nil {
		a.fail(ctx, room, err)
		return fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	// 結算
	a.setState(ctx, room, StateSettle)
	record, err := a.ledger.Record(ctx, room, resp.PromptTokens, resp.ResponseTokens)
	if err != nil {
		l := logger.Ctx(ctx)
		l.Error().Err(err).Str(logger.FieldRoom, room).Msg("usage not recorded")
	} else {
		l := logger.Ctx(ctx)
		l.Info().Str(logger.FieldRoom, room).
			Int("prompt_tokens", record.PromptTokens).
			Int("response_tokens", record.ResponseTokens).
			Str(logger.FieldCost, record.Cost().StringFixed(usage.CostPrecision)).
			Msg("ai reply generated")
	}

	if err := a.store.EnsureAuthor(ctx, models.UsernameAI); err != nil {
		l := logger.Ctx(ctx)
		l.Warn().Err(err).Msg("ai author not available")
	}
	a.relay.Publish(ctx, room, models.UsernameAI, resp.Text)
	return nil
}

// fail 記錄錯誤並依政策廣播失敗通知
func (a *Assistant) fail(ctx context.Context, room string, err error) {
	l := logger.Ctx(ctx)
	l.Error().Err(err).Str(logger.FieldRoom, room).Msg("ai request failed")

	if a.cfg.ErrorNotice == NoticeAI {
		a.relay.Announce(room, models.UsernameAI, NoticeFailed)
		return
	}
	a.relay.Notice(room, NoticeFailed)
}
