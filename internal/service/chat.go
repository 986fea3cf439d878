package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"planroom/pkg/config"
	"planroom/pkg/logger"
)

const frameTypeAIRequest = "ai_request"

// inboundFrame 是客戶端送來的訊息框：
// {"type":"ai_request"} 或 {"message":"...","username":"..."}
type inboundFrame struct {
	Type     string  `json:"type"`
	Message  *string `json:"message"`
	Username string  `json:"username"`
}

// ChatService 處理每條連線的生命週期與收到的訊息
type ChatService struct {
	hub       *Hub
	relay     *Relay
	assistant *Assistant
	wsCfg     config.WebSocketConfig
}

func NewChatService(hub *Hub, relay *Relay, assistant *Assistant, wsCfg config.WebSocketConfig) *ChatService {
	return &ChatService{hub: hub, relay: relay, assistant: assistant, wsCfg: wsCfg}
}

// HandleConnection 加入房間並處理連線直到斷線，斷線後廣播離開通知。
func (s *ChatService) HandleConnection(ctx context.Context, conn *websocket.Conn, room, identity string) {
	client := NewClient(conn, room, identity, s.wsCfg)
	defer conn.Close()

	s.hub.Join(client)
	defer s.hub.Leave(client)

	go client.writePump()
	client.readPump(func(data []byte) {
		if err := s.HandleFrame(ctx, client, data); err != nil {
			l := logger.Ctx(ctx)
			l.Debug().Err(err).Str(logger.FieldClientID, client.ID).Msg("frame dropped")
		}
	})
}

// HandleFrame 處理一個訊息框。格式錯誤的訊息框直接丟棄，連線保持開啟。
func (s *ChatService) HandleFrame(ctx context.Context, c *Client, data []byte) error {
	// encoding/json 會把無效的 UTF-8 換成 U+FFFD，需先行檢查
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: invalid utf-8", ErrMalformedPayload)
	}

	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if frame.Type == frameTypeAIRequest {
		s.assistant.Dispatch(ctx, c.Room, c.Identity)
		return nil
	}

	if frame.Message == nil {
		return fmt.Errorf("%w: missing message", ErrMalformedPayload)
	}
	content := strings.TrimSpace(*frame.Message)
	if content == "" {
		return fmt.Errorf("%w: empty message", ErrMalformedPayload)
	}

	// 身分以加入時解析的為準，忽略訊息框中的 username
	s.relay.Publish(ctx, c.Room, c.Identity, content)
	return nil
}

func (s *ChatService) RoomSize(room string) int {
	return s.hub.RoomSize(room)
}
