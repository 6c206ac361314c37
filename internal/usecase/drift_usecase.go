package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"Yurift-App/internal/domain/model"
	"Yurift-App/internal/domain/repository"
	"Yurift-App/internal/domain/session"
	"Yurift-App/internal/infrastructure/driftapi"
	"Yurift-App/internal/infrastructure/geolocation"
	"Yurift-App/internal/pkg/logger"
)

const (
	logModule        = "drift_usecase"
	searchLogTimeout = 5 * time.Second
)

var (
	// ErrSessionNotFound は指定IDのセッションが存在しない（期限切れを含む）場合のエラー
	ErrSessionNotFound = errors.New("セッションが見つかりません")
	// ErrInvalidTag は未定義のVibe/Sensationコードが指定された場合のエラー
	ErrInvalidTag = errors.New("未定義のタグです")
)

// SessionRepository はブラウザセッションごとのDriftSessionを保持する
type SessionRepository interface {
	Save(sessionID string, s *session.DriftSession)
	Get(sessionID string) (*session.DriftSession, bool)
	Delete(sessionID string)
}

// IPLocator はクライアントIPから位置情報プロバイダを作る
type IPLocator interface {
	ForIP(ip string) repository.GeolocationProvider
}

// SessionSnapshot はセッションIDと状態のコピー
type SessionSnapshot struct {
	SessionID string
	session.Snapshot
}

// LocationReport はブラウザから報告された位置情報取得の結果
// CoordinateもErrorも空の場合はクライアントIPから推定する
type LocationReport struct {
	Coordinate *model.Coordinate
	Error      string
	ClientIP   string
}

type MoodOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type SensationOption struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type SelectionLimits struct {
	MaxVibes      int `json:"max_vibes"`
	RequiredVibes int `json:"required_vibes"`
	MaxSensations int `json:"max_sensations"`
	MinSensations int `json:"min_sensations"`
}

// Catalog は選択肢の一覧
type Catalog struct {
	Vibes      []MoodOption      `json:"vibes"`
	Sensations []SensationOption `json:"sensations"`
	Limits     SelectionLimits   `json:"limits"`
}

type DriftUseCase interface {
	// Options はVibe/Sensationの選択肢と選択数の制約を返す
	Options() Catalog

	CreateSession(ctx context.Context) *SessionSnapshot
	GetSession(sessionID string) (*SessionSnapshot, error)
	DeleteSession(sessionID string) error

	ToggleMood(sessionID, code string) (*SessionSnapshot, error)
	ToggleSensation(sessionID, code string) (*SessionSnapshot, error)

	SetLocation(sessionID string, coord model.Coordinate) (*SessionSnapshot, error)
	// RequestLocation は位置情報を取得してセッションに設定する（失敗時はデフォルト位置）
	RequestLocation(ctx context.Context, sessionID string, report LocationReport) (*SessionSnapshot, error)

	// Search は検索を1回実行する。検索の失敗はエラーではなく結果の状態として返す
	Search(ctx context.Context, sessionID, requestID string) (*SessionSnapshot, error)
	Reset(sessionID string) (*SessionSnapshot, error)
}

// driftUseCaseImpl はDriftUseCaseの実装
type driftUseCaseImpl struct {
	sessions      SessionRepository
	searchRepo    repository.FacilitySearchRepository
	ipLocator     IPLocator
	searchLogRepo repository.SearchLogRepository
	logger        logger.ILogger
	locateTimeout time.Duration
	now           func() time.Time
}

// NewDriftUseCase は新しいDriftUseCaseインスタンスを作成
// ipLocatorはnilでもよい（その場合、位置情報が報告されなければデフォルト位置になる）
func NewDriftUseCase(
	sessions SessionRepository,
	searchRepo repository.FacilitySearchRepository,
	ipLocator IPLocator,
	searchLogRepo repository.SearchLogRepository,
	log logger.ILogger,
	locateTimeout time.Duration,
) DriftUseCase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &driftUseCaseImpl{
		sessions:      sessions,
		searchRepo:    searchRepo,
		ipLocator:     ipLocator,
		searchLogRepo: searchLogRepo,
		logger:        log,
		locateTimeout: locateTimeout,
		now:           time.Now,
	}
}

func (u *driftUseCaseImpl) Options() Catalog {
	moods := model.GetAllMoods()
	vibes := make([]MoodOption, 0, len(moods))
	for _, m := range moods {
		vibes = append(vibes, MoodOption{Code: string(m), Label: m.Label()})
	}

	all := model.GetAllSensations()
	sensations := make([]SensationOption, 0, len(all))
	for _, s := range all {
		sensations = append(sensations, SensationOption{Code: string(s), Description: s.Description()})
	}

	return Catalog{
		Vibes:      vibes,
		Sensations: sensations,
		Limits: SelectionLimits{
			MaxVibes:      model.MaxMoods,
			RequiredVibes: model.RequiredMoods,
			MaxSensations: model.MaxSensations,
			MinSensations: model.MinSensations,
		},
	}
}

func (u *driftUseCaseImpl) CreateSession(ctx context.Context) *SessionSnapshot {
	id := uuid.New().String()
	s := session.NewDriftSession(u.searchRepo,
		session.WithLogger(u.logger),
		session.WithLocateTimeout(u.locateTimeout),
	)
	u.sessions.Save(id, s)

	u.logger.Info(logModule, "🆕 セッション作成", map[string]interface{}{
		"session_id": id,
	})
	return &SessionSnapshot{SessionID: id, Snapshot: s.Snapshot()}
}

func (u *driftUseCaseImpl) GetSession(sessionID string) (*SessionSnapshot, error) {
	s, err := u.get(sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionSnapshot{SessionID: sessionID, Snapshot: s.Snapshot()}, nil
}

func (u *driftUseCaseImpl) DeleteSession(sessionID string) error {
	if _, err := u.get(sessionID); err != nil {
		return err
	}
	u.sessions.Delete(sessionID)
	return nil
}

func (u *driftUseCaseImpl) ToggleMood(sessionID, code string) (*SessionSnapshot, error) {
	tag, err := model.ParseMoodTag(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTag, err)
	}
	return u.apply(sessionID, func(s *session.DriftSession) {
		s.ToggleMood(tag)
	})
}

func (u *driftUseCaseImpl) ToggleSensation(sessionID, code string) (*SessionSnapshot, error) {
	tag, err := model.ParseSensationTag(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTag, err)
	}
	return u.apply(sessionID, func(s *session.DriftSession) {
		s.ToggleSensation(tag)
	})
}

func (u *driftUseCaseImpl) SetLocation(sessionID string, coord model.Coordinate) (*SessionSnapshot, error) {
	if !coord.InRange() {
		return nil, &model.ValidationError{Field: "location", Message: "緯度は-90から90、経度は-180から180の範囲で指定してください"}
	}
	return u.apply(sessionID, func(s *session.DriftSession) {
		s.SetLocation(coord)
	})
}

func (u *driftUseCaseImpl) RequestLocation(ctx context.Context, sessionID string, report LocationReport) (*SessionSnapshot, error) {
	s, err := u.get(sessionID)
	if err != nil {
		return nil, err
	}

	var provider repository.GeolocationProvider
	switch {
	case report.Coordinate != nil || report.Error != "":
		provider = geolocation.Reported{Coordinate: report.Coordinate, Reason: report.Error}
	case u.ipLocator != nil:
		provider = u.ipLocator.ForIP(report.ClientIP)
	}

	s.RequestLocation(ctx, provider)
	return &SessionSnapshot{SessionID: sessionID, Snapshot: s.Snapshot()}, nil
}

func (u *driftUseCaseImpl) Search(ctx context.Context, sessionID, requestID string) (*SessionSnapshot, error) {
	s, err := u.get(sessionID)
	if err != nil {
		return nil, err
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	// ブラウザが切断しても検索は最後まで実行し、結果をセッションに反映する
	searchCtx := driftapi.WithRequestID(context.WithoutCancel(ctx), requestID)

	snapshot := s.Snapshot()
	start := u.now()
	outcome, applied := s.RunSearch(searchCtx)
	if applied {
		u.recordSearch(searchCtx, repository.SearchLogEntry{
			SessionID:   sessionID,
			RequestID:   requestID,
			Moods:       moodCodes(snapshot.Moods),
			Sensations:  sensationCodes(snapshot.Sensations),
			Location:    locationOrZero(snapshot.Location),
			State:       outcome.State,
			FacilityIDs: facilityIDs(outcome.Facilities),
			Cached:      outcome.Cached,
			Message:     outcome.Message,
			Duration:    u.now().Sub(start),
		})
	}

	return &SessionSnapshot{SessionID: sessionID, Snapshot: s.Snapshot()}, nil
}

func (u *driftUseCaseImpl) Reset(sessionID string) (*SessionSnapshot, error) {
	return u.apply(sessionID, func(s *session.DriftSession) {
		s.Reset()
	})
}

func (u *driftUseCaseImpl) get(sessionID string) (*session.DriftSession, error) {
	s, ok := u.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w (session_id: %s)", ErrSessionNotFound, sessionID)
	}
	return s, nil
}

func (u *driftUseCaseImpl) apply(sessionID string, action func(s *session.DriftSession)) (*SessionSnapshot, error) {
	s, err := u.get(sessionID)
	if err != nil {
		return nil, err
	}
	action(s)
	return &SessionSnapshot{SessionID: sessionID, Snapshot: s.Snapshot()}, nil
}

// recordSearch は検索ログを保存する（失敗しても検索結果には影響させない）
func (u *driftUseCaseImpl) recordSearch(ctx context.Context, entry repository.SearchLogEntry) {
	if u.searchLogRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, searchLogTimeout)
	defer cancel()

	logID, err := u.searchLogRepo.CreateSearchLog(ctx, entry)
	if err != nil {
		u.logger.Warn(logModule, "⚠️ 検索ログの保存に失敗", map[string]interface{}{
			"session_id": entry.SessionID,
			"request_id": entry.RequestID,
			"error":      err.Error(),
		})
		return
	}
	u.logger.Debug(logModule, "📝 検索ログを保存", map[string]interface{}{
		"log_id":      logID,
		"state":       string(entry.State),
		"duration_ms": entry.Duration.Milliseconds(),
	})
}

func moodCodes(tags []model.MoodTag) []string {
	codes := make([]string, len(tags))
	for i, t := range tags {
		codes[i] = string(t)
	}
	return codes
}

func sensationCodes(tags []model.SensationTag) []string {
	codes := make([]string, len(tags))
	for i, t := range tags {
		codes[i] = string(t)
	}
	return codes
}

func facilityIDs(facilities []model.Facility) []int64 {
	ids := make([]int64, len(facilities))
	for i, f := range facilities {
		ids[i] = f.ID
	}
	return ids
}

func locationOrZero(c *model.Coordinate) model.Coordinate {
	if c == nil {
		return model.Coordinate{}
	}
	return *c
}
