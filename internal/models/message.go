package models

import (
	"time"

	"gorm.io/gorm"
)

// Message 代表一則已持久化的聊天訊息，建立後不再修改
type Message struct {
	gorm.Model
	Room      string    `json:"room" gorm:"type:varchar(50);not null;index:idx_room_timestamp"`
	AuthorID  uint      `json:"author_id" gorm:"not null"`
	Author    User      `json:"-"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index:idx_room_timestamp"`
}

// HistoryEntry 是房間歷史中的一筆 (作者, 內容, 時間)
type HistoryEntry struct {
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
