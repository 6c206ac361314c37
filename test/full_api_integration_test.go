package test

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectAll(t *testing.T, s *testServer, id string, vibes []string, sensations []string) {
	t.Helper()
	for _, v := range vibes {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/sessions/"+id+"/moods/"+v, nil, nil))
	}
	for _, v := range sensations {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/sessions/"+id+"/sensations/"+url.PathEscape(v), nil, nil))
	}
}

// TestFullAPIIntegration_DriftFlow はセッション作成から検索・リセットまでの一連の流れを確認する
func TestFullAPIIntegration_DriftFlow(t *testing.T) {
	log.Printf("🧪 Drift検索フローの統合テスト開始")
	s := setupBFF(t)

	var created sessionView
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/sessions", nil, &created))
	id := created.SessionID
	require.NotEmpty(t, id)

	t.Run("条件が揃う前の検索は前提条件エラー", func(t *testing.T) {
		var view sessionView
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/sessions/"+id+"/search", nil, &view))
		assert.Equal(t, "failed", view.Search.State)
		assert.Equal(t, "Vibeを3つ選択してください", view.Search.Message)
		assert.Empty(t, s.upstream.received())
	})

	t.Run("選択と位置情報", func(t *testing.T) {
		selectAll(t, s, id, []string{"snow", "forest", "bonfire"}, []string{"トロトロ", "おまかせ"})

		var view sessionView
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/sessions/"+id+"/location/request", gin.H{"error": "denied"}, &view))
		require.NotNil(t, view.Location)
		assert.True(t, view.Location.IsFallback)
		assert.True(t, view.CanSearch)
	})

	t.Run("検索成功", func(t *testing.T) {
		var view sessionView
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/sessions/"+id+"/search", nil, &view))
		log.Printf("✅ 検索結果: %s (%d件)", view.Search.State, len(view.Search.Facilities))

		assert.Equal(t, "succeeded", view.Search.State)
		require.Len(t, view.Search.Facilities, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{view.Search.Facilities[0].ID, view.Search.Facilities[1].ID, view.Search.Facilities[2].ID})

		received := s.upstream.received()
		require.Len(t, received, 1)
		assert.Equal(t, []string{"snow", "forest", "bonfire"}, received[0].Vibes)
		assert.Equal(t, []string{"トロトロ", "おまかせ"}, received[0].Sensations)
		assert.Equal(t, 35.6812, received[0].Location.Lat)
		assert.Equal(t, 139.7671, received[0].Location.Lng)
		assert.NotEmpty(t, received[0].RequestID)
	})

	t.Run("検索サービスのエラーdetailをそのまま表示", func(t *testing.T) {
		s.upstream.respond(http.StatusTooManyRequests, gin.H{"error": "RateLimitExceeded", "detail": "レート制限に達しました。3600秒後に再試行してください。"})

		var view sessionView
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/sessions/"+id+"/search", nil, &view))
		assert.Equal(t, "failed", view.Search.State)
		assert.Equal(t, "レート制限に達しました。3600秒後に再試行してください。", view.Search.Message)
		assert.Empty(t, view.Search.Facilities)
	})

	t.Run("0件", func(t *testing.T) {
		s.upstream.respond(http.StatusOK, facilitiesBody())

		var view sessionView
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/sessions/"+id+"/search", nil, &view))
		assert.Equal(t, "succeeded", view.Search.State)
		assert.True(t, view.Search.Empty)
	})

	t.Run("リセット", func(t *testing.T) {
		var view sessionView
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/sessions/"+id+"/reset", nil, &view))
		assert.Equal(t, "idle", view.Search.State)
		assert.Empty(t, view.Vibes)
		assert.Empty(t, view.Sensations)
		assert.Nil(t, view.Location)
		assert.False(t, view.CanSearch)
	})
}

// TestFullAPIIntegration_IPFallback はブラウザからの報告がない場合にIP推定し、失敗時はデフォルト位置になることを確認する
func TestFullAPIIntegration_IPFallback(t *testing.T) {
	s := setupBFF(t)

	var created sessionView
	s.do(t, http.MethodPost, "/api/sessions", nil, &created)

	var view sessionView
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/sessions/"+created.SessionID+"/location/request", nil, &view))
	require.NotNil(t, view.Location)
	assert.True(t, view.Location.IsFallback)
}

// TestFullAPIIntegration_ResetDuringSearch は検索中にリセットした場合、遅れて届いた結果が反映されないことを確認する
func TestFullAPIIntegration_ResetDuringSearch(t *testing.T) {
	s := setupBFF(t)
	hold := make(chan struct{})
	entered := make(chan struct{}, 1)
	s.upstream.mu.Lock()
	s.upstream.hold = hold
	s.upstream.entered = entered
	s.upstream.mu.Unlock()

	var created sessionView
	s.do(t, http.MethodPost, "/api/sessions", nil, &created)
	id := created.SessionID
	selectAll(t, s, id, []string{"ocean", "sunset", "cave"}, []string{"シャキッ"})
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/sessions/"+id+"/location", gin.H{"lat": 35.0, "lng": 135.0}, nil))

	done := make(chan sessionView, 1)
	go func() {
		var view sessionView
		s.do(t, http.MethodPost, "/api/sessions/"+id+"/search", nil, &view)
		done <- view
	}()
	<-entered

	var searching sessionView
	s.do(t, http.MethodGet, "/api/sessions/"+id, nil, &searching)
	assert.Equal(t, "searching", searching.Search.State)
	assert.False(t, searching.CanSearch)

	var reset sessionView
	s.do(t, http.MethodPost, "/api/sessions/"+id+"/reset", nil, &reset)
	assert.Equal(t, "idle", reset.Search.State)

	close(hold)
	late := <-done
	assert.Equal(t, "idle", late.Search.State)

	var final sessionView
	s.do(t, http.MethodGet, "/api/sessions/"+id, nil, &final)
	assert.Equal(t, "idle", final.Search.State)
	assert.Empty(t, final.Search.Facilities)
}

// TestFullAPIIntegration_ConcurrentSessions は複数セッションが互いに影響しないことを確認する
func TestFullAPIIntegration_ConcurrentSessions(t *testing.T) {
	s := setupBFF(t)
	const sessions = 8

	var wg sync.WaitGroup
	results := make([]sessionView, sessions)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			var created sessionView
			s.do(t, http.MethodPost, "/api/sessions", nil, &created)
			id := created.SessionID
			for _, v := range []string{"forest", "hinoki", "party"} {
				s.do(t, http.MethodPost, "/api/sessions/"+id+"/moods/"+v, nil, nil)
			}
			s.do(t, http.MethodPost, "/api/sessions/"+id+"/sensations/"+url.PathEscape("トロトロ"), nil, nil)
			s.do(t, http.MethodPut, "/api/sessions/"+id+"/location", gin.H{"lat": 35.0 + float64(i)*0.1, "lng": 135.0}, nil)
			s.do(t, http.MethodPost, "/api/sessions/"+id+"/search", nil, &results[i])
		}(i)
	}
	wg.Wait()

	for i, view := range results {
		assert.Equal(t, "succeeded", view.Search.State, fmt.Sprintf("session %d", i))
		assert.InDelta(t, 35.0+float64(i)*0.1, view.Location.Lat, 1e-9)
	}
	assert.Len(t, s.upstream.received(), sessions)
}
