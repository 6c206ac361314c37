package repository

import (
	"context"

	"Yurift-App/internal/domain/model"
)

// GeolocationProvider は現在地を1回だけ取得する
//
// 拒否・タイムアウト・その他の失敗はすべてerrorで返す。フォールバックは呼び出し側の責務。
type GeolocationProvider interface {
	CurrentPosition(ctx context.Context) (model.Coordinate, error)
}
