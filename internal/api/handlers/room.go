package handlers

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"planroom/internal/models"
	"planroom/internal/service"
	"planroom/pkg/logger"
)

const maxRoomNameLength = 50

// HistoryReader 讀取房間歷史
type HistoryReader interface {
	ListMessages(ctx context.Context, room string) ([]models.HistoryEntry, error)
}

// RoomHandler 提供房間歷史與在線人數
type RoomHandler struct {
	history HistoryReader
	chat    *service.ChatService
}

func NewRoomHandler(history HistoryReader, chat *service.ChatService) *RoomHandler {
	return &RoomHandler{history: history, chat: chat}
}

// GetMessages 回傳房間完整歷史（依時間排序）與目前在線人數
func (h *RoomHandler) GetMessages(c *gin.Context) {
	room, ok := roomParam(c)
	if !ok {
		return
	}

	entries, err := h.history.ListMessages(c.Request.Context(), room)
	if err != nil {
		l := logger.Ctx(c.Request.Context())
		l.Error().Err(err).Str(logger.FieldRoom, room).Msg("list messages failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"room":     room,
		"online":   h.chat.RoomSize(room),
		"messages": entries,
	})
}

// roomParam 驗證路徑中的房間名稱，失敗時直接寫回 400
func roomParam(c *gin.Context) (string, bool) {
	room := c.Param("room")
	if room == "" || utf8.RuneCountInString(room) > maxRoomNameLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room name must be 1-50 characters"})
		return "", false
	}
	return room, true
}
