package service

import (
	"context"
	"time"
)

// storePingTimeout — таймаут проверки хранилища сессий.
const storePingTimeout = 2 * time.Second

// Pinger — хранилище, доступность которого можно проверить.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker — проверка готовности серверного хранилища сессий (Redis).
type StoreChecker struct {
	store Pinger
}

// NewStoreChecker создаёт StoreChecker.
func NewStoreChecker(store Pinger) *StoreChecker {
	return &StoreChecker{store: store}
}

// CheckReady — "ok" или "fail" с текстом ошибки.
func (c *StoreChecker) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), storePingTimeout)
	defer cancel()
	if err := c.store.Ping(ctx); err != nil {
		return "fail", err.Error()
	}
	return "ok", ""
}
