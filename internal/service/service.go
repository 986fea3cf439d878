package service

import (
	"fmt"

	"planroom/internal/provider"
	"planroom/internal/repository"
	"planroom/internal/usage"
	"planroom/pkg/config"
)

type Services struct {
	User      *UserService
	Chat      *ChatService
	Assistant *Assistant
	Ledger    *usage.Ledger
	Gateway   *repository.Gateway
	Hub       *Hub
}

func NewServices(repos *repository.Repositories, generator provider.Generator, locker RoomLocker, cfg *config.Config) (*Services, error) {
	ceiling, err := usage.ParseCeiling(cfg.AI.SpendCeiling)
	if err != nil {
		return nil, fmt.Errorf("ai config: %w", err)
	}

	gateway := repository.NewGateway(repos)
	ledger := usage.NewLedger(gateway, usage.Scope(cfg.AI.CostScope), ceiling)

	hub := NewHub()
	relay := NewRelay(hub, gateway)
	assistant := NewAssistant(AssistantConfig{
		SystemPrompt:    cfg.AI.SystemPrompt,
		Temperature:     cfg.AI.Temperature,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
		Timeout:         cfg.AI.Timeout,
		WindowSize:      cfg.AI.WindowSize,
		ErrorNotice:     NoticePolicy(cfg.AI.ErrorNotice),
		TurnTaking:      cfg.AI.TurnTaking,
	}, ledger, gateway, generator, relay, locker)

	return &Services{
		User:      NewUserService(repos.User),
		Chat:      NewChatService(hub, relay, assistant, cfg.WebSocket),
		Assistant: assistant,
		Ledger:    ledger,
		Gateway:   gateway,
		Hub:       hub,
	}, nil
}
