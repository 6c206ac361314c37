package model

// Facility 検索結果の温泉施設
type Facility struct {
	ID         int64      `json:"id"`          // 施設ID（レスポンス内で一意）
	Name       string     `json:"name"`        // 施設名
	Address    string     `json:"address"`     // 住所
	Coordinate Coordinate `json:"coordinate"`  // 位置情報
	Price      int        `json:"price"`       // 料金（円）
	DistanceKm float64    `json:"distance_km"` // ユーザーからの距離（km）
	Tagline    string     `json:"tagline"`     // キャッチフレーズ
	Score      float64    `json:"score"`       // マッチングスコア（正規化は保証されない）
}

// RateLimit 検索サービスのレート制限情報（X-RateLimit-* ヘッダー）
type RateLimit struct {
	Limit        int `json:"limit"`
	Remaining    int `json:"remaining"`
	ResetSeconds int `json:"reset_seconds"`
}

// SearchResult 検索サービスからの成功レスポンス
type SearchResult struct {
	Facilities []Facility // サーバーが返した順序のまま
	Cached     bool       // キャッシュヒットしたか
	RateLimit  *RateLimit // ヘッダーがなければnil
}

// FacilityIDs 施設IDの一覧を返す
func (r *SearchResult) FacilityIDs() []int64 {
	ids := make([]int64, len(r.Facilities))
	for i, f := range r.Facilities {
		ids[i] = f.ID
	}
	return ids
}
