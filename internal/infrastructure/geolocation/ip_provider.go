package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Yurift-App/internal/domain/model"
	"Yurift-App/internal/domain/repository"
)

// ErrPrivateAddress はプライベートアドレスなど位置を推定できないIPの場合のエラー
var ErrPrivateAddress = errors.New("位置を推定できないIPアドレスです")

// IPProvider はIPアドレスから現在地を推定するHTTPプロバイダ（ip-api.com 互換）
type IPProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewIPProvider は新しいプロバイダを生成する
func NewIPProvider(baseURL string, timeout time.Duration) *IPProvider {
	return &IPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ipLookupResponse はIP位置情報APIのレスポンスをパースするための構造体
type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Lookup は指定したIPアドレスの位置を取得する
func (p *IPProvider) Lookup(ctx context.Context, ip string) (model.Coordinate, error) {
	if parsed := net.ParseIP(ip); parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return model.Coordinate{}, fmt.Errorf("%w: %s", ErrPrivateAddress, ip)
	}

	reqURL := fmt.Sprintf("%s/%s?fields=status,message,lat,lon", p.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Coordinate{}, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var apiResp ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return model.Coordinate{}, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	if apiResp.Status != "success" {
		return model.Coordinate{}, fmt.Errorf("位置情報の取得に失敗: %s", apiResp.Message)
	}

	return model.Coordinate{Lat: apiResp.Lat, Lng: apiResp.Lon}, nil
}

// ForIP は指定したIPアドレスの位置を1回だけ取得するプロバイダを返す
func (p *IPProvider) ForIP(ip string) repository.GeolocationProvider {
	return ipLookup{provider: p, ip: ip}
}

type ipLookup struct {
	provider *IPProvider
	ip       string
}

func (l ipLookup) CurrentPosition(ctx context.Context) (model.Coordinate, error) {
	return l.provider.Lookup(ctx, l.ip)
}
