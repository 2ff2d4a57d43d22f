package handlers

import (
	"github.com/rs/zerolog"

	"travelbro-server/internal/domain/chat"
)

// Provider bundles the HTTP handlers.
type Provider struct {
	Chat *ChatHandler
}

// NewProvider constructs the handler provider.
func NewProvider(chatService *chat.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Chat: NewChatHandler(chatService, log),
	}
}
