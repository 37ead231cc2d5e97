package service

import (
	"context"

	"cardroom/internal/config"
	"cardroom/internal/service/auth"
	"cardroom/internal/service/presence"
	"cardroom/internal/service/room"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Auth     *auth.Service
	Presence *presence.Service
	Room     *room.Service
}

func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	presenceSvc := presence.NewService(rdb, config.GlobalConfig.Room.PresenceTTLSec)
	return &Container{
		Auth:     auth.NewService(db),
		Presence: presenceSvc,
		Room:     room.NewService(db, presenceSvc),
	}
}

func (c *Container) Start(ctx context.Context) error {
	return c.Room.Start(ctx)
}
