package repository

import (
	"time"

	"github.com/patrickmn/go-cache"

	"Yurift-App/internal/domain/session"
)

// MemorySessionRepository はブラウザセッションごとのDriftSessionをメモリに保持する
// 最後のアクセスからttl経過したセッションは破棄される（セッションをまたいだ永続化はしない）
type MemorySessionRepository struct {
	cache *cache.Cache
}

func NewMemorySessionRepository(ttl, cleanupInterval time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		cache: cache.New(ttl, cleanupInterval),
	}
}

func (r *MemorySessionRepository) Save(sessionID string, s *session.DriftSession) {
	r.cache.Set(sessionID, s, cache.DefaultExpiration)
}

// Get はセッションを取得し、有効期限を延長する
func (r *MemorySessionRepository) Get(sessionID string) (*session.DriftSession, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	s := x.(*session.DriftSession)
	r.cache.Set(sessionID, s, cache.DefaultExpiration)
	return s, true
}

func (r *MemorySessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *MemorySessionRepository) Count() int {
	return r.cache.ItemCount()
}
