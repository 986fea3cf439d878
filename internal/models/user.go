package models

import (
	"gorm.io/gorm"
)

// 保留的身分名稱，不能被註冊為一般帳號
const (
	UsernameAI        = "AI"
	UsernameSystem    = "System"
	UsernameAnonymous = "Anonymous"
)

// User 表示系統中的用戶（也包含延遲建立的 AI 作者）
type User struct {
	gorm.Model        // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username   string `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password   string `gorm:"not null" json:"-"`                    // 密碼雜湊，json 序列化時會被忽略
}
