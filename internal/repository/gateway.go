package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"planroom/internal/models"
)

// Gateway 是聊天核心使用的持久化介面實作：訊息與用量都經由這裡讀寫。
type Gateway struct {
	repos *Repositories

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewGateway(repos *Repositories) *Gateway {
	return &Gateway{repos: repos, now: time.Now}
}

// SaveMessage 儲存訊息；作者不存在時回傳 ErrNotFound。
func (g *Gateway) SaveMessage(ctx context.Context, room, username, content string) (uint, error) {
	author, err := g.repos.User.FindByUsername(ctx, username)
	if err != nil {
		return 0, err
	}

	msg := &models.Message{
		Room:      room,
		AuthorID:  author.ID,
		Content:   content,
		Timestamp: g.nextTimestamp(),
	}
	if err := g.repos.Message.Create(ctx, msg); err != nil {
		return 0, fmt.Errorf("save message: %w", err)
	}
	return msg.ID, nil
}

// ListMessages 回傳房間完整歷史，依時間升冪
func (g *Gateway) ListMessages(ctx context.Context, room string) ([]models.HistoryEntry, error) {
	messages, err := g.repos.Message.FindByRoom(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, models.HistoryEntry{
			Author:    m.Author.Username,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return entries, nil
}

// EnsureAuthor 確保作者帳號存在（AI 身分在第一次使用時建立）
func (g *Gateway) EnsureAuthor(ctx context.Context, username string) error {
	_, err := g.repos.User.FirstOrCreate(ctx, username)
	return err
}

func (g *Gateway) SaveUsage(ctx context.Context, record *models.UsageRecord) error {
	return g.repos.Usage.Create(ctx, record)
}

func (g *Gateway) SumCostMicros(ctx context.Context, room string) (int64, error) {
	return g.repos.Usage.SumCostMicros(ctx, room)
}

// nextTimestamp 產生微秒精度、嚴格遞增的時間戳
func (g *Gateway) nextTimestamp() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now().UTC().Truncate(time.Microsecond)
	if !ts.After(g.last) {
		ts = g.last.Add(time.Microsecond)
	}
	g.last = ts
	return ts
}
