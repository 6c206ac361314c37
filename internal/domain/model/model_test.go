package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCatalog(t *testing.T) {
	assert.Len(t, GetAllMoods(), 12)
	assert.Len(t, GetAllSensations(), 8)

	for _, m := range GetAllMoods() {
		assert.True(t, m.Valid(), m)
		assert.NotEqual(t, string(m), m.Label())
	}
	for _, s := range GetAllSensations() {
		assert.True(t, s.Valid(), s)
		assert.NotEmpty(t, s.Description())
	}
}

func TestParseTags(t *testing.T) {
	mood, err := ParseMoodTag("hinoki")
	require.NoError(t, err)
	assert.Equal(t, MoodHinoki, mood)

	_, err = ParseMoodTag("Forest")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	sensation, err := ParseSensationTag("シュワシュワ")
	require.NoError(t, err)
	assert.Equal(t, SensationShuwaShuwa, sensation)

	_, err = ParseSensationTag("forest")
	assert.Error(t, err)
}

func TestNewSearchRequest(t *testing.T) {
	moods := []MoodTag{MoodSnow, MoodForest, MoodHinoki}
	sensations := []SensationTag{SensationToroToro, SensationPunPun}
	location := &Coordinate{Lat: 35.6812, Lng: 139.7671}

	t.Run("条件を満たせば選択順のまま作成", func(t *testing.T) {
		req, err := NewSearchRequest(moods, sensations, location)
		require.NoError(t, err)
		assert.Equal(t, []string{"snow", "forest", "hinoki"}, req.MoodCodes())
		assert.Equal(t, []string{"トロトロ", "プンプン"}, req.SensationCodes())
		assert.Equal(t, *location, req.Location)

		// 元のスライスを変更してもリクエストは変わらない
		moods[0] = MoodCity
		assert.Equal(t, MoodSnow, req.Moods[0])
		moods[0] = MoodSnow
	})

	t.Run("全て満たさない場合はVibeのエラーが優先", func(t *testing.T) {
		_, err := NewSearchRequest(nil, nil, nil)
		assert.Equal(t, MessageMoodsRequired, FailureMessage(err))
	})

	t.Run("Sensationと位置情報がない場合はSensationのエラー", func(t *testing.T) {
		_, err := NewSearchRequest(moods, nil, nil)
		assert.Equal(t, MessageSensationRequired, FailureMessage(err))
	})

	t.Run("位置情報がない場合", func(t *testing.T) {
		_, err := NewSearchRequest(moods, sensations, nil)
		assert.Equal(t, MessageLocationRequired, FailureMessage(err))
	})
}

func TestFailureMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"detailあり", &TransportError{StatusCode: 429, Detail: "レート制限に達しました"}, "レート制限に達しました"},
		{"detailなし", &TransportError{StatusCode: 500}, MessageSearchFailed},
		{"不正なレスポンス", &TransportError{StatusCode: 200, Err: ErrMalformedResponse}, MessageSearchFailed},
		{"通信エラー", &TransportError{Err: errors.New("dial tcp: refused")}, MessageSearchError},
		{"ラップされたTransportError", fmt.Errorf("検索失敗: %w", &TransportError{StatusCode: 404, Detail: "no results nearby"}), "no results nearby"},
		{"その他のエラー", errors.New("boom"), MessageSearchError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FailureMessage(tc.err))
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	err := &TransportError{StatusCode: 200, Err: ErrMalformedResponse}
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Contains(t, err.Error(), "200")
}

func TestSearchOutcome(t *testing.T) {
	result := &SearchResult{
		Facilities: []Facility{{ID: 1}, {ID: 2}},
		Cached:     true,
		RateLimit:  &RateLimit{Limit: 5, Remaining: 4, ResetSeconds: 86400},
	}
	succeeded := SucceededOutcome(result)
	assert.Equal(t, SearchStateSucceeded, succeeded.State)
	assert.True(t, succeeded.IsTerminal())
	assert.False(t, succeeded.IsEmpty())
	assert.Equal(t, []int64{1, 2}, result.FacilityIDs())

	clone := succeeded.Clone()
	clone.Facilities[0].ID = 99
	assert.Equal(t, int64(1), succeeded.Facilities[0].ID)

	failed := FailedOutcome(&TransportError{StatusCode: 429, Detail: "limit", RateLimit: &RateLimit{Limit: 5}})
	assert.Equal(t, "limit", failed.Message)
	require.NotNil(t, failed.RateLimit)
	assert.Equal(t, 5, failed.RateLimit.Limit)

	assert.True(t, SucceededOutcome(&SearchResult{}).IsEmpty())
	assert.False(t, IdleOutcome().IsTerminal())
}

func TestCoordinate(t *testing.T) {
	assert.True(t, FallbackCoordinate.InRange())
	assert.True(t, FallbackCoordinate.IsFallback())
	assert.False(t, Coordinate{Lat: 91, Lng: 0}.InRange())
	assert.False(t, Coordinate{Lat: 0, Lng: -181}.InRange())

	p := FallbackCoordinate.ToPoint()
	assert.Equal(t, 139.7671, p.Lon())
	assert.Equal(t, FallbackCoordinate, CoordinateFromPoint(p))

	// 東京駅 → 新宿駅 は約6km
	shinjuku := Coordinate{Lat: 35.6896, Lng: 139.7006}
	assert.InDelta(t, 6100, FallbackCoordinate.DistanceMeters(shinjuku), 300)
}
