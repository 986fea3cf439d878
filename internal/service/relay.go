package service

import (
	"context"

	"planroom/internal/models"
	"planroom/pkg/logger"
)

// MessageStore 是聊天核心需要的訊息持久化介面
type MessageStore interface {
	SaveMessage(ctx context.Context, room, username, content string) (uint, error)
	ListMessages(ctx context.Context, room string) ([]models.HistoryEntry, error)
	EnsureAuthor(ctx context.Context, username string) error
}

// Relay 負責把聊天訊息先存檔再廣播。
// 存檔失敗只記錄日誌，訊息照樣廣播。
type Relay struct {
	hub   Broadcaster
	store MessageStore
	order *keyedMutex
}

func NewRelay(hub Broadcaster, store MessageStore) *Relay {
	return &Relay{hub: hub, store: store, order: newKeyedMutex()}
}

// Publish 在房間順序鎖內存檔並廣播一則一般訊息
func (r *Relay) Publish(ctx context.Context, room, username, content string) {
	unlock := r.order.Lock(room)
	defer unlock()

	if _, err := r.store.SaveMessage(ctx, room, username, content); err != nil {
		l := logger.Ctx(ctx)
		l.Warn().Err(err).Str(logger.FieldRoom, room).Str(logger.FieldUsername, username).
			Msg("message not persisted")
	}
	r.hub.Broadcast(room, ChatEvent(username, content))
}

// Notice 廣播系統通知（不存檔）
func (r *Relay) Notice(room, text string) {
	unlock := r.order.Lock(room)
	defer unlock()

	r.hub.Broadcast(room, SystemEvent(text))
}

// Announce 以指定身分廣播一般訊息但不存檔
func (r *Relay) Announce(room, username, text string) {
	unlock := r.order.Lock(room)
	defer unlock()

	r.hub.Broadcast(room, ChatEvent(username, text))
}
