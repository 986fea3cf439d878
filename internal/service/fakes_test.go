package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"planroom/internal/models"
	"planroom/internal/provider"
	"planroom/internal/repository"
)

// fakeStore 同時實作 MessageStore 與 usage.Store
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]bool
	messages map[string][]models.HistoryEntry
	usage    []models.UsageRecord
	clock    time.Time
	listErr  error
	saveErr  error
}

func newFakeStore(users ...string) *fakeStore {
	s := &fakeStore{
		users:    make(map[string]bool),
		messages: make(map[string][]models.HistoryEntry),
		clock:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, u := range users {
		s.users[u] = true
	}
	return s
}

func (s *fakeStore) SaveMessage(_ context.Context, room, username, content string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	if !s.users[username] {
		return 0, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	s.clock = s.clock.Add(time.Second)
	s.messages[room] = append(s.messages[room], models.HistoryEntry{Author: username, Content: content, Timestamp: s.clock})
	return uint(len(s.messages[room])), nil
}

func (s *fakeStore) ListMessages(_ context.Context, room string) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.HistoryEntry, len(s.messages[room]))
	copy(out, s.messages[room])
	return out, nil
}

func (s *fakeStore) EnsureAuthor(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = true
	return nil
}

func (s *fakeStore) SaveUsage(_ context.Context, r *models.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = append(s.usage, *r)
	return nil
}

func (s *fakeStore) SumCostMicros(_ context.Context, room string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, r := range s.usage {
		if room == "" || r.Room == room {
			total += r.CostMicros
		}
	}
	return total, nil
}

func (s *fakeStore) usageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.usage)
}

func (s *fakeStore) history(room string) []models.HistoryEntry {
	h, _ := s.ListMessages(context.Background(), room)
	return h
}

type fakeGenerator struct {
	mu   sync.Mutex
	reqs []provider.Request
	fn   func(ctx context.Context, req provider.Request) (*provider.Response, error)
}

func (g *fakeGenerator) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	g.mu.Lock()
	g.reqs = append(g.reqs, req)
	fn := g.fn
	g.mu.Unlock()

	if fn == nil {
		return &provider.Response{Text: "Sounds like a plan.", PromptTokens: 1000, ResponseTokens: 200}, nil
	}
	return fn(ctx, req)
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reqs)
}

func (g *fakeGenerator) lastRequest() provider.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reqs[len(g.reqs)-1]
}

var errBoom = errors.New("boom")
