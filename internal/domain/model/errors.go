package model

import (
	"errors"
	"fmt"
)

// ユーザーに表示するメッセージ
const (
	MessageMoodsRequired     = "Vibeを3つ選択してください"
	MessageSensationRequired = "Sensationを1つ以上選択してください"
	MessageLocationRequired  = "位置情報を取得してください"
	MessageSearchFailed      = "検索に失敗しました"
	MessageSearchError       = "検索中にエラーが発生しました"
)

// ErrMalformedResponse は検索サービスのレスポンスが不正な場合のエラー
var ErrMalformedResponse = errors.New("検索レスポンスの形式が不正です")

// ValidationError は検索前の前提条件を満たしていないことを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// TransportError は検索サービスとの通信失敗、または失敗レスポンスを表す
type TransportError struct {
	StatusCode int        // 0 の場合はHTTPレスポンスを受け取れていない
	Detail     string     // サーバーが返したdetail（文字列の場合のみ）
	RateLimit  *RateLimit // ヘッダーがなければnil
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("検索サービスエラー (status: %d): %s", e.StatusCode, e.Detail)
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("検索サービスエラー (status: %d): %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("検索サービスへのリクエストに失敗: %v", e.Err)
	default:
		return fmt.Sprintf("検索サービスエラー (status: %d)", e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FailureMessage はエラーをユーザー向けの1つのメッセージに変換する
//
// サーバーのdetailがあればそのまま使い、なければ汎用メッセージを返す。
func FailureMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Detail != "" {
			return transportErr.Detail
		}
		if transportErr.StatusCode != 0 {
			return MessageSearchFailed
		}
	}

	return MessageSearchError
}
