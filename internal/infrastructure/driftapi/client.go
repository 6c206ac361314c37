package driftapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"Yurift-App/internal/domain/model"
	"Yurift-App/internal/domain/repository"
)

const (
	searchPath = "/api/drift"
	healthPath = "/api/health"

	// RequestIDHeader はリクエストごとに付与するID
	RequestIDHeader = "X-Request-ID"

	maxErrorBodyBytes = 64 * 1024
)

// Client はDrift検索サービス（/api/drift）との通信を担当するクライアント
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ repository.FacilitySearchRepository = (*Client)(nil)

// NewClient は新しいClientインスタンスを作成
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTP は任意のhttp.Clientを使うClientを作成（テスト用）
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// --- 検索サービスのワイヤーフォーマット ---

type driftRequest struct {
	Vibes      []string     `json:"vibes"`
	Sensations []string     `json:"sensations"`
	Location   wireLocation `json:"location"`
}

type wireLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type driftResponse struct {
	Facilities   *[]wireFacility `json:"facilities"`
	Cached       bool            `json:"cached"`
	SearchParams json.RawMessage `json:"search_params"`
}

type wireFacility struct {
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

// errorResponse のdetailは文字列とは限らない（バリデーションエラーは配列）
type errorResponse struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// HealthStatus は検索サービスのヘルスチェック結果
type HealthStatus struct {
	Status      string `json:"status"`
	Version     string `json:"api_version"`
	Environment string `json:"environment"`
}

// Search は検索リクエストを検索サービスに送り、施設一覧をサーバーの順序のまま返す
func (c *Client) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResult, error) {
	body, err := json.Marshal(driftRequest{
		Vibes:      req.MoodCodes(),
		Sensations: req.SensationCodes(),
		Location:   wireLocation{Lat: req.Location.Lat, Lng: req.Location.Lng},
	})
	if err != nil {
		return nil, &model.TransportError{Err: fmt.Errorf("リクエストのシリアライズに失敗: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, &model.TransportError{Err: fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, RequestIDFromContext(ctx))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &model.TransportError{Err: fmt.Errorf("APIリクエストに失敗: %w", err)}
	}
	defer resp.Body.Close()

	rateLimit := parseRateLimit(resp.Header)

	if resp.StatusCode != http.StatusOK {
		return nil, &model.TransportError{
			StatusCode: resp.StatusCode,
			Detail:     readDetail(resp.Body),
			RateLimit:  rateLimit,
		}
	}

	var apiResp driftResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &model.TransportError{
			StatusCode: resp.StatusCode,
			RateLimit:  rateLimit,
			Err:        fmt.Errorf("%w: JSONのパースに失敗: %v", model.ErrMalformedResponse, err),
		}
	}

	facilities, err := toFacilities(apiResp.Facilities)
	if err != nil {
		return nil, &model.TransportError{
			StatusCode: resp.StatusCode,
			RateLimit:  rateLimit,
			Err:        err,
		}
	}

	return &model.SearchResult{
		Facilities: facilities,
		Cached:     apiResp.Cached,
		RateLimit:  rateLimit,
	}, nil
}

// Health は検索サービスのヘルスチェックを行う
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	httpReq.Header.Set(RequestIDHeader, RequestIDFromContext(ctx))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ヘルスチェックに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}
	return &status, nil
}

// toFacilities はレスポンスの施設をドメインモデルに変換し、形式をチェックする
func toFacilities(wire *[]wireFacility) ([]model.Facility, error) {
	if wire == nil {
		return nil, fmt.Errorf("%w: facilitiesがありません", model.ErrMalformedResponse)
	}

	facilities := make([]model.Facility, 0, len(*wire))
	seen := make(map[int64]struct{}, len(*wire))
	for _, f := range *wire {
		if _, dup := seen[f.ID]; dup {
			return nil, fmt.Errorf("%w: 施設IDが重複しています (id: %d)", model.ErrMalformedResponse, f.ID)
		}
		seen[f.ID] = struct{}{}

		coord := model.Coordinate{Lat: f.Lat, Lng: f.Lng}
		switch {
		case f.Price < 0:
			return nil, fmt.Errorf("%w: 料金が負の値です (id: %d)", model.ErrMalformedResponse, f.ID)
		case f.DistanceKm < 0:
			return nil, fmt.Errorf("%w: 距離が負の値です (id: %d)", model.ErrMalformedResponse, f.ID)
		case !coord.InRange():
			return nil, fmt.Errorf("%w: 緯度経度が範囲外です (id: %d)", model.ErrMalformedResponse, f.ID)
		}

		facilities = append(facilities, model.Facility{
			ID:         f.ID,
			Name:       f.Name,
			Address:    f.Address,
			Coordinate: coord,
			Price:      f.Price,
			DistanceKm: f.DistanceKm,
			Tagline:    f.Catchphrase,
			Score:      f.Score,
		})
	}
	return facilities, nil
}

// readDetail は失敗レスポンスからdetail文字列を取り出す（文字列でなければ空）
func readDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err != nil || len(errResp.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(errResp.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}

// parseRateLimit はX-RateLimit-*ヘッダーを解析する（Limitがなければnil）
func parseRateLimit(h http.Header) *model.RateLimit {
	limit, err := strconv.Atoi(h.Get("X-RateLimit-Limit"))
	if err != nil {
		return nil
	}
	remaining, _ := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	reset, _ := strconv.Atoi(h.Get("X-RateLimit-Reset"))
	return &model.RateLimit{
		Limit:        limit,
		Remaining:    remaining,
		ResetSeconds: reset,
	}
}

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// WithRequestID はリクエストIDをcontextに保存する
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext はcontextのリクエストIDを返す（なければ新しく生成する）
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}
