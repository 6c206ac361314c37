package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"Yurift-App/internal/domain/model"
	"Yurift-App/internal/infrastructure/driftapi"
	"Yurift-App/internal/usecase"
)

// UpstreamHealthChecker は検索サービスのヘルスチェックを行う
type UpstreamHealthChecker interface {
	Health(ctx context.Context) (*driftapi.HealthStatus, error)
}

// DriftHandler はDriftセッションAPIのハンドラー
type DriftHandler struct {
	driftUseCase usecase.DriftUseCase
	upstream     UpstreamHealthChecker
	version      string
}

// NewDriftHandler は新しいDriftHandlerインスタンスを作成
func NewDriftHandler(driftUseCase usecase.DriftUseCase, upstream UpstreamHealthChecker, version string) *DriftHandler {
	return &DriftHandler{
		driftUseCase: driftUseCase,
		upstream:     upstream,
		version:      version,
	}
}

// RegisterRoutes は/api配下にエンドポイントを登録する
func (h *DriftHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/health", h.GetHealth)
		api.GET("/options", h.GetOptions)

		sessions := api.Group("/sessions")
		sessions.POST("", h.PostSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.POST("/:id/moods/:tag", h.PostToggleMood)
		sessions.POST("/:id/sensations/:tag", h.PostToggleSensation)
		sessions.PUT("/:id/location", h.PutLocation)
		sessions.POST("/:id/location/request", h.PostRequestLocation)
		sessions.POST("/:id/search", h.PostSearch)
		sessions.POST("/:id/reset", h.PostReset)
	}
}

// --- レスポンス ---

type locationResponse struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	IsFallback bool    `json:"is_fallback"`
}

type facilityResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Price       int     `json:"price"`
	DistanceKm  float64 `json:"distance_km"`
	Catchphrase string  `json:"catchphrase"`
	Score       float64 `json:"score"`
}

type rateLimitResponse struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
	Reset     int `json:"reset"`
}

type searchResponse struct {
	State      string             `json:"state"`
	Facilities []facilityResponse `json:"facilities"`
	Cached     bool               `json:"cached"`
	Empty      bool               `json:"empty"`
	Message    string             `json:"message,omitempty"`
	RateLimit  *rateLimitResponse `json:"rate_limit,omitempty"`
}

type sessionResponse struct {
	SessionID  string            `json:"session_id"`
	Vibes      []string          `json:"vibes"`
	Sensations []string          `json:"sensations"`
	Location   *locationResponse `json:"location"`
	Search     searchResponse    `json:"search"`
	CanSearch  bool              `json:"can_search"`
}

func toSessionResponse(s *usecase.SessionSnapshot) sessionResponse {
	resp := sessionResponse{
		SessionID:  s.SessionID,
		Vibes:      make([]string, len(s.Moods)),
		Sensations: make([]string, len(s.Sensations)),
		CanSearch:  s.CanSearch,
	}
	for i, m := range s.Moods {
		resp.Vibes[i] = string(m)
	}
	for i, t := range s.Sensations {
		resp.Sensations[i] = string(t)
	}
	if s.Location != nil {
		resp.Location = &locationResponse{
			Lat:        s.Location.Lat,
			Lng:        s.Location.Lng,
			IsFallback: s.Location.IsFallback(),
		}
	}

	outcome := s.Outcome
	resp.Search = searchResponse{
		State:      string(outcome.State),
		Facilities: make([]facilityResponse, 0, len(outcome.Facilities)),
		Cached:     outcome.Cached,
		Empty:      outcome.IsEmpty(),
		Message:    outcome.Message,
	}
	for _, f := range outcome.Facilities {
		resp.Search.Facilities = append(resp.Search.Facilities, facilityResponse{
			ID:          f.ID,
			Name:        f.Name,
			Address:     f.Address,
			Lat:         f.Coordinate.Lat,
			Lng:         f.Coordinate.Lng,
			Price:       f.Price,
			DistanceKm:  f.DistanceKm,
			Catchphrase: f.Tagline,
			Score:       f.Score,
		})
	}
	if rl := outcome.RateLimit; rl != nil {
		resp.Search.RateLimit = &rateLimitResponse{Limit: rl.Limit, Remaining: rl.Remaining, Reset: rl.ResetSeconds}
	}
	return resp
}

// --- エンドポイント ---

// GetHealth はBFFと検索サービスの状態を返す
// GET /api/health
func (h *DriftHandler) GetHealth(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": "Yurift-App",
		"version": h.version,
	}
	if h.upstream != nil {
		status, err := h.upstream.Health(c.Request.Context())
		if err != nil {
			resp["status"] = "degraded"
			resp["upstream"] = gin.H{"status": "unreachable", "error": err.Error()}
		} else {
			resp["upstream"] = status
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetOptions はVibe/Sensationの選択肢を返す
// GET /api/options
func (h *DriftHandler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.driftUseCase.Options())
}

// PostSession はセッションを作成する
// POST /api/sessions
func (h *DriftHandler) PostSession(c *gin.Context) {
	snapshot := h.driftUseCase.CreateSession(c.Request.Context())
	c.JSON(http.StatusCreated, toSessionResponse(snapshot))
}

// GetSession はセッションの状態を返す
// GET /api/sessions/:id
func (h *DriftHandler) GetSession(c *gin.Context) {
	snapshot, err := h.driftUseCase.GetSession(c.Param("id"))
	h.respond(c, snapshot, err)
}

// DeleteSession はセッションを破棄する
// DELETE /api/sessions/:id
func (h *DriftHandler) DeleteSession(c *gin.Context) {
	if err := h.driftUseCase.DeleteSession(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostToggleMood はVibeの選択を切り替える
// POST /api/sessions/:id/moods/:tag
func (h *DriftHandler) PostToggleMood(c *gin.Context) {
	snapshot, err := h.driftUseCase.ToggleMood(c.Param("id"), c.Param("tag"))
	h.respond(c, snapshot, err)
}

// PostToggleSensation はSensationの選択を切り替える
// POST /api/sessions/:id/sensations/:tag
func (h *DriftHandler) PostToggleSensation(c *gin.Context) {
	snapshot, err := h.driftUseCase.ToggleSensation(c.Param("id"), c.Param("tag"))
	h.respond(c, snapshot, err)
}

type locationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// PutLocation は位置情報を直接設定する
// PUT /api/sessions/:id/location
func (h *DriftHandler) PutLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	snapshot, err := h.driftUseCase.SetLocation(c.Param("id"), model.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
	h.respond(c, snapshot, err)
}

// locationReportRequest はブラウザの位置情報取得結果（全て省略可）
type locationReportRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Error string   `json:"error"`
}

// PostRequestLocation は位置情報を取得する（失敗時はデフォルト位置）
// POST /api/sessions/:id/location/request
func (h *DriftHandler) PostRequestLocation(c *gin.Context) {
	var req locationReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	report := usecase.LocationReport{
		Error:    req.Error,
		ClientIP: c.ClientIP(),
	}
	if req.Lat != nil && req.Lng != nil {
		report.Coordinate = &model.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	}

	snapshot, err := h.driftUseCase.RequestLocation(c.Request.Context(), c.Param("id"), report)
	h.respond(c, snapshot, err)
}

// PostSearch は検索を実行する。検索の失敗もレスポンスのsearch.stateで返す
// POST /api/sessions/:id/search
func (h *DriftHandler) PostSearch(c *gin.Context) {
	snapshot, err := h.driftUseCase.Search(c.Request.Context(), c.Param("id"), c.GetString(requestIDKey))
	h.respond(c, snapshot, err)
}

// PostReset はセッションを初期状態に戻す
// POST /api/sessions/:id/reset
func (h *DriftHandler) PostReset(c *gin.Context) {
	snapshot, err := h.driftUseCase.Reset(c.Param("id"))
	h.respond(c, snapshot, err)
}

func (h *DriftHandler) respond(c *gin.Context, snapshot *usecase.SessionSnapshot, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(snapshot))
}

func (h *DriftHandler) respondError(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "セッションが見つかりません",
			"details": err.Error(),
		})
	case errors.Is(err, usecase.ErrInvalidTag):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "未定義のタグです",
			"details": err.Error(),
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"details": validationErr.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "内部エラーが発生しました",
			"details": err.Error(),
		})
	}
}
