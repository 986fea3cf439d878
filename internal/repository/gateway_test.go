package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"planroom/internal/models"
	"planroom/internal/storage"
)

// setupTestDB 建立記憶體內的 SQLite 測試資料庫
func setupTestDB(t *testing.T) *storage.PostgresDB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// :memory: 每條連線各自一份資料庫，限制為單一連線
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := &storage.PostgresDB{DB: gdb}

	if err := db.AutoMigrate(&models.User{}, &models.Message{}, &models.UsageRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func newTestGateway(t *testing.T) (*Gateway, *Repositories) {
	t.Helper()
	repos := NewRepositories(setupTestDB(t))
	return NewGateway(repos), repos
}

func TestGateway_SaveMessage(t *testing.T) {
	ctx := context.Background()
	gw, repos := newTestGateway(t)

	if err := repos.User.Create(ctx, &models.User{Username: "alice", Password: "x"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	t.Run("known author", func(t *testing.T) {
		id, err := gw.SaveMessage(ctx, "JAPAN1", "alice", "hello")
		if err != nil {
			t.Fatalf("SaveMessage() error = %v", err)
		}
		if id == 0 {
			t.Error("expected non-zero message ID")
		}
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := gw.SaveMessage(ctx, "JAPAN1", models.UsernameAnonymous, "hi")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestGateway_ListMessages_Ordered(t *testing.T) {
	ctx := context.Background()
	gw, repos := newTestGateway(t)

	for _, name := range []string{"alice", "bob"} {
		if err := repos.User.Create(ctx, &models.User{Username: name, Password: "x"}); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	// 固定時鐘，驗證時間戳仍嚴格遞增
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	gw.now = func() time.Time { return fixed }

	sends := []struct{ room, user, text string }{
		{"R1", "alice", "first"},
		{"R2", "bob", "other room"},
		{"R1", "bob", "second"},
		{"R1", "alice", "third"},
	}
	for _, s := range sends {
		if _, err := gw.SaveMessage(ctx, s.room, s.user, s.text); err != nil {
			t.Fatalf("SaveMessage(%q) error = %v", s.text, err)
		}
	}

	entries, err := gw.ListMessages(ctx, "R1")
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantContent := []string{"first", "second", "third"}
	wantAuthor := []string{"alice", "bob", "alice"}
	for i, e := range entries {
		if e.Content != wantContent[i] || e.Author != wantAuthor[i] {
			t.Errorf("entry %d = %s:%s, want %s:%s", i, e.Author, e.Content, wantAuthor[i], wantContent[i])
		}
		if i > 0 && !e.Timestamp.After(entries[i-1].Timestamp) {
			t.Errorf("entry %d timestamp %v not after %v", i, e.Timestamp, entries[i-1].Timestamp)
		}
	}
}

func TestGateway_EnsureAuthor_Lazy(t *testing.T) {
	ctx := context.Background()
	gw, repos := newTestGateway(t)

	if _, err := repos.User.FindByUsername(ctx, models.UsernameAI); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected AI user absent before first use, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := gw.EnsureAuthor(ctx, models.UsernameAI); err != nil {
			t.Fatalf("EnsureAuthor() error = %v", err)
		}
	}

	if _, err := gw.SaveMessage(ctx, "R1", models.UsernameAI, "reply"); err != nil {
		t.Fatalf("SaveMessage() as AI error = %v", err)
	}

	var count int64
	repos.User.(*userRepository).db.Model(&models.User{}).Where("username = ?", models.UsernameAI).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one AI user, got %d", count)
	}
}

func TestGateway_SumCostMicros(t *testing.T) {
	ctx := context.Background()
	gw, _ := newTestGateway(t)

	records := []models.UsageRecord{
		{Room: "R1", PromptTokens: 1000, ResponseTokens: 200, TotalTokens: 1200, CostMicros: 135},
		{Room: "R1", PromptTokens: 10, ResponseTokens: 10, TotalTokens: 20, CostMicros: 4},
		{Room: "R2", PromptTokens: 100000, ResponseTokens: 0, TotalTokens: 100000, CostMicros: 7500},
	}
	for i := range records {
		records[i].Timestamp = time.Now()
		if err := gw.SaveUsage(ctx, &records[i]); err != nil {
			t.Fatalf("SaveUsage() error = %v", err)
		}
	}

	tests := []struct {
		room string
		want int64
	}{
		{"", 7639},
		{"R1", 139},
		{"R2", 7500},
		{"EMPTY", 0},
	}
	for _, tt := range tests {
		got, err := gw.SumCostMicros(ctx, tt.room)
		if err != nil {
			t.Fatalf("SumCostMicros(%q) error = %v", tt.room, err)
		}
		if got != tt.want {
			t.Errorf("SumCostMicros(%q) = %d, want %d", tt.room, got, tt.want)
		}
	}
}
