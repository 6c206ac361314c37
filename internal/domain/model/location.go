package model

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Coordinate 緯度経度を表す基本的な型
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FallbackCoordinate は位置情報が取得できなかった場合のデフォルト位置（東京駅）
var FallbackCoordinate = Coordinate{Lat: 35.6812, Lng: 139.7671}

// worldBound は有効な緯度経度の範囲
var worldBound = orb.Bound{
	Min: orb.Point{-180, -90},
	Max: orb.Point{180, 90},
}

// ToPoint Coordinate を orb.Point に変換（[longitude, latitude]）
func (c Coordinate) ToPoint() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// CoordinateFromPoint orb.Point から Coordinate に変換
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lng: p.Lon()}
}

// InRange 緯度経度が地球上の有効な範囲内かチェック
func (c Coordinate) InRange() bool {
	return worldBound.Contains(c.ToPoint())
}

// DistanceMeters 2点間の距離（メートル、Haversine）
func (c Coordinate) DistanceMeters(other Coordinate) float64 {
	return geo.DistanceHaversine(c.ToPoint(), other.ToPoint())
}

// IsFallback デフォルト位置かどうか
func (c Coordinate) IsFallback() bool {
	return c == FallbackCoordinate
}
