package handlers

import (
	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/config"
)

// Provider wires HTTP handlers.
type Provider struct {
	Photos *PhotoHandler
	Chats  *ChatHandler
}

func NewProvider(cfg *config.Config, photos PhotoLister, chats ChatQuerier, log zerolog.Logger) *Provider {
	return &Provider{
		Photos: NewPhotoHandler(cfg, photos, log),
		Chats:  NewChatHandler(cfg, chats, log),
	}
}
