package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"planroom/internal/middleware"
	"planroom/internal/models"
	"planroom/internal/service"
	"planroom/pkg/logger"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 前端與 API 分開部署
	},
}

// WebSocketHandler 處理聊天室的 WebSocket 連接
type WebSocketHandler struct {
	chat *service.ChatService
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(chat *service.ChatService) *WebSocketHandler {
	return &WebSocketHandler{chat: chat}
}

// HandleWebSocket 升級連線並加入房間。未登入時以 Anonymous 身分加入。
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	room, ok := roomParam(c)
	if !ok {
		return
	}

	identity := c.GetString(middleware.ContextUsername)
	if identity == "" {
		identity = models.UsernameAnonymous
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失敗時已寫回 HTTP 錯誤
		l := logger.Ctx(c.Request.Context())
		l.Warn().Err(err).Str(logger.FieldRoom, room).Msg("websocket upgrade failed")
		return
	}

	h.chat.HandleConnection(c.Request.Context(), conn, room, identity)
}
