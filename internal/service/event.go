package service

import (
	"fmt"

	"planroom/internal/models"
)

// Event 是送往客戶端的訊息框
type Event struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	System   bool   `json:"system"`
}

// SystemEvent 建立系統通知
func SystemEvent(text string) Event {
	return Event{Message: text, Username: models.UsernameSystem, System: true}
}

// ChatEvent 建立一般聊天訊息
func ChatEvent(username, text string) Event {
	return Event{Message: text, Username: username}
}

func joinNotice(identity string) Event {
	return SystemEvent(fmt.Sprintf("%s joined the chat!", identity))
}

func leaveNotice(identity string) Event {
	return SystemEvent(fmt.Sprintf("%s left the chat", identity))
}
