package repository

import (
	"context"
	"time"

	"Yurift-App/internal/domain/model"
)

// SearchLogEntry 検索1回分の記録
type SearchLogEntry struct {
	SessionID   string
	RequestID   string
	Moods       []string
	Sensations  []string
	Location    model.Coordinate
	State       model.SearchState
	FacilityIDs []int64
	Cached      bool
	Message     string
	Duration    time.Duration
}

// SearchLogRepository は検索ログを保存する
type SearchLogRepository interface {
	CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error)
}
