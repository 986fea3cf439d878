package service

import (
	"sync"

	"planroom/pkg/logger"
)

// Broadcaster 把事件送給房間內目前所有連線
type Broadcaster interface {
	Broadcast(room string, event Event)
}

type roomMembers struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

// Hub 管理房間成員並負責廣播。
// 同一房間的廣播在持有該房間鎖時依序放入各連線的佇列，因此每個訂閱者
// 看到的順序與呼叫順序一致；不同房間之間互不阻塞。
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*roomMembers
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*roomMembers)}
}

// Join 註冊連線後廣播加入通知（包含剛加入的連線）
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	members, ok := h.rooms[c.Room]
	if !ok {
		members = &roomMembers{clients: make(map[*Client]struct{})}
		h.rooms[c.Room] = members
	}
	members.mu.Lock()
	members.clients[c] = struct{}{}
	members.mu.Unlock()
	h.mu.Unlock()

	l := logger.L()
	l.Info().Str(logger.FieldRoom, c.Room).Str(logger.FieldClientID, c.ID).
		Str(logger.FieldUsername, c.Identity).Msg("client joined room")

	h.Broadcast(c.Room, joinNotice(c.Identity))
}

// Leave 移除連線並通知房間內其他成員；重複呼叫只會通知一次。
func (h *Hub) Leave(c *Client) {
	h.remove(c)
	c.close()

	if !c.markLeft() {
		return
	}

	l := logger.L()
	l.Info().Str(logger.FieldRoom, c.Room).Str(logger.FieldClientID, c.ID).
		Str(logger.FieldUsername, c.Identity).Msg("client left room")

	h.Broadcast(c.Room, leaveNotice(c.Identity))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[c.Room]
	if !ok {
		return
	}
	members.mu.Lock()
	delete(members.clients, c)
	empty := len(members.clients) == 0
	members.mu.Unlock()

	// 房間空了就刪除（只有成員資格，訊息仍保存在資料庫）
	if empty {
		delete(h.rooms, c.Room)
	}
}

// Broadcast 盡力投遞；佇列已滿的連線視為失效並被移除，不影響其他成員。
func (h *Hub) Broadcast(room string, event Event) {
	h.mu.RLock()
	members, ok := h.rooms[room]
	h.mu.RUnlock()
	if !ok {
		return
	}

	members.mu.Lock()
	defer members.mu.Unlock()

	for c := range members.clients {
		if c.enqueue(event) {
			continue
		}
		delete(members.clients, c)
		c.close()

		l := logger.L()
		l.Warn().Str(logger.FieldRoom, room).Str(logger.FieldClientID, c.ID).
			Msg("send queue full, dropping client")
	}
}

// RoomSize 回傳房間目前的連線數
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	members, ok := h.rooms[room]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	members.mu.Lock()
	defer members.mu.Unlock()
	return len(members.clients)
}

// CloseAll 關閉所有連線的傳送佇列，寫入協程會送出關閉訊框後結束
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, members := range h.rooms {
		members.mu.Lock()
		for c := range members.clients {
			c.close()
		}
		members.clients = make(map[*Client]struct{})
		members.mu.Unlock()
		delete(h.rooms, room)
	}
}
