package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// store bounds every persistence call by a per-operation timeout.
type store struct {
	db      *gorm.DB
	timeout time.Duration
}

func (s store) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout <= 0 {
		return s.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

type StoreConfig struct {
	// Timeout bounds each persistence call; zero means the request context alone.
	Timeout time.Duration
}
