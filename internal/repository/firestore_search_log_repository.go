package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"Yurift-App/internal/domain/repository"
)

const searchLogCollection = "searchLogs"

// FirestoreSearchLogRepository Firestoreを使用した検索ログリポジトリ
type FirestoreSearchLogRepository struct {
	client   *firestore.Client
	ttlHours int
	now      func() time.Time
}

var _ repository.SearchLogRepository = (*FirestoreSearchLogRepository)(nil)

// NewFirestoreSearchLogRepository 新しいFirestoreSearchLogRepositoryインスタンスを作成
// ttlHours 経過後のドキュメントはFirestoreのTTLポリシー（expireAt）で削除される
func NewFirestoreSearchLogRepository(client *firestore.Client, ttlHours int) *FirestoreSearchLogRepository {
	return &FirestoreSearchLogRepository{
		client:   client,
		ttlHours: ttlHours,
		now:      time.Now,
	}
}

// searchLogDocument Firestoreに保存する検索ログ
type searchLogDocument struct {
	SessionID   string    `firestore:"session_id"`
	RequestID   string    `firestore:"request_id"`
	Vibes       []string  `firestore:"vibes"`
	Sensations  []string  `firestore:"sensations"`
	Location    *latLng   `firestore:"location"`
	State       string    `firestore:"state"`
	FacilityIDs []int64   `firestore:"facility_ids"`
	Cached      bool      `firestore:"cached"`
	Message     string    `firestore:"message,omitempty"`
	DurationMs  int64     `firestore:"duration_ms"`
	CreatedAt   time.Time `firestore:"createdAt"`
	ExpireAt    time.Time `firestore:"expireAt"`
}

type latLng struct {
	Lat float64 `firestore:"lat"`
	Lng float64 `firestore:"lng"`
}

func toSearchLogDocument(entry repository.SearchLogEntry, now time.Time, ttlHours int) *searchLogDocument {
	facilityIDs := entry.FacilityIDs
	if facilityIDs == nil {
		facilityIDs = []int64{}
	}
	return &searchLogDocument{
		SessionID:   entry.SessionID,
		RequestID:   entry.RequestID,
		Vibes:       entry.Moods,
		Sensations:  entry.Sensations,
		Location:    &latLng{Lat: entry.Location.Lat, Lng: entry.Location.Lng},
		State:       string(entry.State),
		FacilityIDs: facilityIDs,
		Cached:      entry.Cached,
		Message:     entry.Message,
		DurationMs:  entry.Duration.Milliseconds(),
		CreatedAt:   now,
		ExpireAt:    now.Add(time.Duration(ttlHours) * time.Hour),
	}
}

// CreateSearchLog は検索ログを保存し、ドキュメントIDを返す
func (r *FirestoreSearchLogRepository) CreateSearchLog(ctx context.Context, entry repository.SearchLogEntry) (string, error) {
	logID := fmt.Sprintf("search_%s", uuid.New().String())
	doc := toSearchLogDocument(entry, r.now(), r.ttlHours)

	if _, err := r.client.Collection(searchLogCollection).Doc(logID).Set(ctx, doc); err != nil {
		return "", fmt.Errorf("検索ログの保存に失敗しました: %w", err)
	}
	return logID, nil
}

// NoopSearchLogRepository は検索ログを保存しない（Firestore未設定時）
type NoopSearchLogRepository struct{}

func (NoopSearchLogRepository) CreateSearchLog(ctx context.Context, entry repository.SearchLogEntry) (string, error) {
	return "", nil
}
