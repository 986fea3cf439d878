package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"planroom/pkg/config"
	"planroom/pkg/logger"
)

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	ID       string
	Room     string
	Identity string // 加入時決定的顯示名稱，之後不再變動

	conn   *websocket.Conn
	send   chan Event // 廣播佇列，由 writePump 消化
	cfg    config.WebSocketConfig
	closed sync.Once
	left   atomic.Bool
}

func NewClient(conn *websocket.Conn, room, identity string, cfg config.WebSocketConfig) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	return &Client{
		ID:       uuid.New().String(),
		Room:     room,
		Identity: identity,
		conn:     conn,
		send:     make(chan Event, cfg.SendBuffer),
		cfg:      cfg,
	}
}

// enqueue 非阻塞放入佇列；佇列已滿時回傳 false
func (c *Client) enqueue(event Event) bool {
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// close 只能在連線已從房間移除後呼叫
func (c *Client) close() {
	c.closed.Do(func() { close(c.send) })
}

func (c *Client) markLeft() bool {
	return c.left.CompareAndSwap(false, true)
}

// readPump 持續讀取客戶端訊息直到連線關閉或逾時
func (c *Client) readPump(handle func([]byte)) {
	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := logger.L()
				l.Warn().Err(err).Str(logger.FieldClientID, c.ID).Msg("websocket unexpected close")
			}
			return
		}
		handle(message)
	}
}

// writePump 把佇列中的事件寫到連線，並定期送出心跳
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
