package repository

import (
	"errors"

	"planroom/internal/storage"
)

// ErrNotFound 查無資料（例如作者帳號不存在）
var ErrNotFound = errors.New("record not found")

type Repositories struct {
	User    UserRepository
	Message MessageRepository
	Usage   UsageRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Message: NewMessageRepository(db),
		Usage:   NewUsageRepository(db),
	}
}
