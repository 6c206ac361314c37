package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"Yurift-App/internal/handler"
	"Yurift-App/internal/infrastructure/driftapi"
	"Yurift-App/internal/infrastructure/geolocation"
	"Yurift-App/internal/pkg/logger"
	"Yurift-App/internal/repository"
	"Yurift-App/internal/usecase"
)

// fakeDriftAPI はgin製の偽の検索サービス
type fakeDriftAPI struct {
	mu       sync.Mutex
	requests []fakeDriftRequest
	status   int
	body     interface{}
	headers  map[string]string
	hold     chan struct{} // nilでなければ、閉じられるまでレスポンスを返さない
	entered  chan struct{}
}

type fakeDriftRequest struct {
	Vibes      []string `json:"vibes"`
	Sensations []string `json:"sensations"`
	Location   struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	RequestID string `json:"-"`
}

func (f *fakeDriftAPI) respond(status int, body interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

func (f *fakeDriftAPI) received() []fakeDriftRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeDriftRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeDriftAPI) handler() http.Handler {
	r := gin.New()
	r.POST("/api/drift", func(c *gin.Context) {
		var req fakeDriftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "ValidationError", "detail": err.Error()})
			return
		}
		req.RequestID = c.GetHeader(driftapi.RequestIDHeader)

		f.mu.Lock()
		f.requests = append(f.requests, req)
		status, body, headers, hold, entered := f.status, f.body, f.headers, f.hold, f.entered
		f.mu.Unlock()

		if entered != nil {
			entered <- struct{}{}
		}
		if hold != nil {
			<-hold
		}
		for k, v := range headers {
			c.Header(k, v)
		}
		c.JSON(status, body)
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "api_version": "2.0.0", "environment": "test"})
	})
	return r
}

// facilitiesBody は検索サービスの成功レスポンス
func facilitiesBody(ids ...int64) gin.H {
	facilities := make([]gin.H, 0, len(ids))
	for i, id := range ids {
		facilities = append(facilities, gin.H{
			"id":          id,
			"name":        "テスト温泉",
			"address":     "東京都八王子市○○1-2-3",
			"lat":         35.68 + float64(i)*0.01,
			"lng":         139.76,
			"price":       800 + i*100,
			"distance_km": 2.5 + float64(i),
			"catchphrase": "森の静寂",
			"score":       92.5 - float64(i),
		})
	}
	return gin.H{"facilities": facilities, "cached": false, "search_params": gin.H{}}
}

type testServer struct {
	router   http.Handler
	upstream *fakeDriftAPI
}

// setupBFF は偽の検索サービスに接続したBFFのルーターを作成する
func setupBFF(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := &fakeDriftAPI{status: http.StatusOK, body: facilitiesBody(1, 2, 3)}
	upstreamServer := httptest.NewServer(upstream.handler())
	t.Cleanup(upstreamServer.Close)

	// IP推定は到達できないアドレスに向け、デフォルト位置へのフォールバックを確認する
	ipProvider := geolocation.NewIPProvider("http://127.0.0.1:1/json", 200*time.Millisecond)

	driftClient := driftapi.NewClient(upstreamServer.URL, 5*time.Second)
	sessionRepo := repository.NewMemorySessionRepository(time.Hour, time.Hour)
	driftUseCase := usecase.NewDriftUseCase(sessionRepo, driftClient, ipProvider, repository.NoopSearchLogRepository{}, logger.NewNopLogger(), time.Second)
	driftHandler := handler.NewDriftHandler(driftUseCase, driftClient, "test")

	r := gin.New()
	r.Use(handler.RequestIDMiddleware(), handler.SecurityHeadersMiddleware(false))
	driftHandler.RegisterRoutes(r)

	return &testServer{router: r, upstream: upstream}
}

// do はBFFにリクエストを送り、JSONレスポンスをoutにデコードする
func (s *testServer) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("リクエストのシリアライズに失敗: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v (%s)", err, w.Body.String())
		}
	}
	return w.Code
}

// sessionView はBFFのセッションレスポンス
type sessionView struct {
	SessionID  string   `json:"session_id"`
	Vibes      []string `json:"vibes"`
	Sensations []string `json:"sensations"`
	Location   *struct {
		Lat        float64 `json:"lat"`
		Lng        float64 `json:"lng"`
		IsFallback bool    `json:"is_fallback"`
	} `json:"location"`
	Search struct {
		State      string `json:"state"`
		Facilities []struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Price int    `json:"price"`
		} `json:"facilities"`
		Cached    bool   `json:"cached"`
		Empty     bool   `json:"empty"`
		Message   string `json:"message"`
		RateLimit *struct {
			Limit     int `json:"limit"`
			Remaining int `json:"remaining"`
			Reset     int `json:"reset"`
		} `json:"rate_limit"`
	} `json:"search"`
	CanSearch bool `json:"can_search"`
}
