package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"Yurift-App/internal/domain/model"
	"Yurift-App/internal/domain/repository"
	"Yurift-App/internal/pkg/logger"
)

const (
	logModule = "drift_session"

	// DefaultLocateTimeout は位置情報取得の待ち時間の既定値
	DefaultLocateTimeout = 10 * time.Second
)

// ErrNoGeolocationProvider は位置情報プロバイダが利用できない場合のエラー
var ErrNoGeolocationProvider = errors.New("位置情報プロバイダが利用できません")

// DriftSession は1ブラウザセッション分のVibe/Sensation選択・位置情報・検索状態を保持する
//
// 全てのアクションはロック下で即座に適用される。位置情報取得と検索のネットワーク呼び出しの間はロックを保持しない。
type DriftSession struct {
	mu sync.Mutex

	searchRepo    repository.FacilitySearchRepository
	logger        logger.ILogger
	locateTimeout time.Duration

	moods      *SelectionSet[model.MoodTag]
	sensations *SelectionSet[model.SensationTag]
	location   *model.Coordinate
	outcome    model.SearchOutcome

	// generation はReset・検索開始のたびに進み、古い検索レスポンスを捨てるために使う
	generation uint64
}

// Option はDriftSessionの設定を変更する
type Option func(*DriftSession)

// WithLogger はロガーを設定する
func WithLogger(l logger.ILogger) Option {
	return func(s *DriftSession) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocateTimeout は位置情報取得のタイムアウトを設定する
func WithLocateTimeout(d time.Duration) Option {
	return func(s *DriftSession) {
		if d > 0 {
			s.locateTimeout = d
		}
	}
}

// NewDriftSession は空の選択・位置情報なし・Idleの状態でセッションを作成する
func NewDriftSession(searchRepo repository.FacilitySearchRepository, opts ...Option) *DriftSession {
	s := &DriftSession{
		searchRepo:    searchRepo,
		logger:        logger.NewNopLogger(),
		locateTimeout: DefaultLocateTimeout,
		moods:         NewSelectionSet[model.MoodTag](model.MaxMoods),
		sensations:    NewSelectionSet[model.SensationTag](model.MaxSensations),
		outcome:       model.IdleOutcome(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot はUI描画用の状態のコピー
type Snapshot struct {
	Moods      []model.MoodTag
	Sensations []model.SensationTag
	Location   *model.Coordinate
	Outcome    model.SearchOutcome
	CanSearch  bool
}

// Snapshot は現在の状態のコピーを返す
func (s *DriftSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var location *model.Coordinate
	if s.location != nil {
		loc := *s.location
		location = &loc
	}

	return Snapshot{
		Moods:      s.moods.Items(),
		Sensations: s.sensations.Items(),
		Location:   location,
		Outcome:    s.outcome.Clone(),
		CanSearch:  s.canSearchLocked(),
	}
}

// ToggleMood はVibeの選択を切り替える（最大3個、上限時・未定義コードは何もしない）
func (s *DriftSession) ToggleMood(tag model.MoodTag) {
	if !tag.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moods.Toggle(tag)
}

// ToggleSensation はSensationの選択を切り替える（最大4個、上限時・未定義コードは何もしない）
func (s *DriftSession) ToggleSensation(tag model.SensationTag) {
	if !tag.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sensations.Toggle(tag)
}

// Moods は選択順のVibeを返す
func (s *DriftSession) Moods() []model.MoodTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moods.Items()
}

// Sensations は選択順のSensationを返す
func (s *DriftSession) Sensations() []model.SensationTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sensations.Items()
}

// SetLocation は位置情報を上書きする
func (s *DriftSession) SetLocation(c model.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = &c
}

// Location は現在の位置情報を返す（未取得ならnil）
func (s *DriftSession) Location() *model.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.location == nil {
		return nil
	}
	loc := *s.location
	return &loc
}

// RequestLocation はプロバイダから現在地を取得して位置情報を上書きする
//
// 拒否・タイムアウト・エラーの場合はデフォルト位置（東京駅）を設定する。エラーは返さない。
func (s *DriftSession) RequestLocation(ctx context.Context, provider repository.GeolocationProvider) model.Coordinate {
	coord, err := s.locate(ctx, provider)
	if err != nil {
		s.logger.Warn(logModule, "⚠️ 位置情報の取得に失敗、デフォルト位置を使用", map[string]interface{}{
			"error": err.Error(),
		})
		coord = model.FallbackCoordinate
	}

	s.mu.Lock()
	prev := s.location
	s.location = &coord
	s.mu.Unlock()

	details := map[string]interface{}{
		"lat":      coord.Lat,
		"lng":      coord.Lng,
		"fallback": err != nil,
	}
	if prev != nil {
		details["moved_meters"] = prev.DistanceMeters(coord)
	}
	s.logger.Debug(logModule, "📍 位置情報を更新", details)

	return coord
}

// locate はタイムアウト付きでプロバイダを1回呼び出す
// プロバイダがcontextを無視しても、タイムアウト後は待たずに戻る
func (s *DriftSession) locate(ctx context.Context, provider repository.GeolocationProvider) (model.Coordinate, error) {
	if provider == nil {
		return model.Coordinate{}, ErrNoGeolocationProvider
	}

	ctx, cancel := context.WithTimeout(ctx, s.locateTimeout)
	defer cancel()

	type located struct {
		coord model.Coordinate
		err   error
	}
	resultChan := make(chan located, 1)
	go func() {
		coord, err := provider.CurrentPosition(ctx)
		resultChan <- located{coord: coord, err: err}
	}()

	select {
	case r := <-resultChan:
		return r.coord, r.err
	case <-ctx.Done():
		return model.Coordinate{}, ctx.Err()
	}
}

// Outcome は現在の検索結果を返す
func (s *DriftSession) Outcome() model.SearchOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome.Clone()
}

// CanSearch は検索の前提条件を満たし、かつ検索中でないかを判定する
func (s *DriftSession) CanSearch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSearchLocked()
}

func (s *DriftSession) canSearchLocked() bool {
	return s.outcome.State != model.SearchStateSearching &&
		s.moods.Len() == model.RequiredMoods &&
		s.sensations.Len() >= model.MinSensations &&
		s.location != nil
}

// StartSearch は前提条件を検証し、検索サービスを1回呼び出して結果を反映する
//
// 検索中の呼び出しは何もせず現在の結果を返す。待機中にResetされた場合、届いたレスポンスは捨てる。
func (s *DriftSession) StartSearch(ctx context.Context) model.SearchOutcome {
	outcome, _ := s.RunSearch(ctx)
	return outcome
}

// RunSearch はStartSearchと同じ処理を行い、この呼び出しが検索を実行して結果を反映したかも返す
// 前提条件エラー・検索中・破棄された場合はappliedがfalseになる
func (s *DriftSession) RunSearch(ctx context.Context) (outcome model.SearchOutcome, applied bool) {
	s.mu.Lock()

	if s.outcome.State == model.SearchStateSearching {
		outcome := s.outcome.Clone()
		s.mu.Unlock()
		s.logger.Warn(logModule, "⚠️ 検索中のため新しい検索を開始しません", nil)
		return outcome, false
	}

	req, err := model.NewSearchRequest(s.moods.Items(), s.sensations.Items(), s.location)
	if err != nil {
		s.outcome = model.FailedOutcome(err)
		outcome := s.outcome.Clone()
		s.mu.Unlock()
		s.logger.Info(logModule, "🚫 検索の前提条件を満たしていません", map[string]interface{}{
			"message": outcome.Message,
		})
		return outcome, false
	}

	s.generation++
	generation := s.generation
	s.outcome = model.SearchingOutcome()
	s.mu.Unlock()

	s.logger.Info(logModule, "🚀 Drift検索開始", map[string]interface{}{
		"vibes":      req.MoodCodes(),
		"sensations": req.SensationCodes(),
		"lat":        req.Location.Lat,
		"lng":        req.Location.Lng,
	})

	result, err := s.searchRepo.Search(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		s.logger.Info(logModule, "🗑️ リセット後に届いた検索結果を破棄", map[string]interface{}{
			"generation": generation,
		})
		return s.outcome.Clone(), false
	}

	if err != nil {
		s.outcome = model.FailedOutcome(err)
		s.logger.Warn(logModule, "❌ Drift検索失敗", map[string]interface{}{
			"error":   err.Error(),
			"message": s.outcome.Message,
		})
		return s.outcome.Clone(), true
	}

	s.outcome = model.SucceededOutcome(result)
	s.logger.Info(logModule, "✅ Drift検索完了", map[string]interface{}{
		"count":  len(result.Facilities),
		"cached": result.Cached,
	})
	return s.outcome.Clone(), true
}

// Reset は選択・位置情報・検索結果を全て初期状態に戻す
func (s *DriftSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.moods.Clear()
	s.sensations.Clear()
	s.location = nil
	s.outcome = model.IdleOutcome()
	s.generation++
}
