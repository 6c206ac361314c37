package geolocation

import (
	"context"
	"errors"
	"fmt"

	"Yurift-App/internal/domain/model"
)

// ErrPermissionDenied はブラウザで位置情報の利用が拒否された場合のエラー
var ErrPermissionDenied = errors.New("位置情報の利用が拒否されました")

// Reported はブラウザのgetCurrentPositionの結果（座標または失敗理由）をそのまま返すプロバイダ
type Reported struct {
	Coordinate *model.Coordinate
	Reason     string // "denied", "timeout", "unavailable" など
}

// CurrentPosition は報告された結果を返す
func (r Reported) CurrentPosition(ctx context.Context) (model.Coordinate, error) {
	if r.Coordinate != nil && r.Reason == "" {
		return *r.Coordinate, nil
	}
	switch r.Reason {
	case "denied", "permission_denied":
		return model.Coordinate{}, ErrPermissionDenied
	case "":
		return model.Coordinate{}, errors.New("位置情報が報告されていません")
	default:
		return model.Coordinate{}, fmt.Errorf("位置情報の取得に失敗: %s", r.Reason)
	}
}
