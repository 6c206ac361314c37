package repository

import (
	"context"

	"Yurift-App/internal/domain/model"
)

// FacilitySearchRepository は検索サービスに施設検索を依頼する責務を持つリポジトリインターフェース
//
// 失敗時は *model.TransportError を返す。スコアリングや距離計算は検索サービス側の責務。
type FacilitySearchRepository interface {
	Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResult, error)
}
