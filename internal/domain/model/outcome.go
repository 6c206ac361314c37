package model

import "errors"

// SearchState 検索状態
type SearchState string

const (
	SearchStateIdle      SearchState = "idle"
	SearchStateSearching SearchState = "searching"
	SearchStateSucceeded SearchState = "succeeded"
	SearchStateFailed    SearchState = "failed"
)

// SearchOutcome 検索ライフサイクルの現在の結果
//
// Succeeded の時のみ Facilities / Cached が、Failed の時のみ Message / Err が意味を持つ。
type SearchOutcome struct {
	State      SearchState
	Facilities []Facility
	Cached     bool
	Message    string
	Err        error
	RateLimit  *RateLimit
}

// IdleOutcome 初期状態
func IdleOutcome() SearchOutcome {
	return SearchOutcome{State: SearchStateIdle}
}

// SearchingOutcome 検索中
func SearchingOutcome() SearchOutcome {
	return SearchOutcome{State: SearchStateSearching}
}

// SucceededOutcome 検索成功（施設はサーバーの順序のまま保持する）
func SucceededOutcome(result *SearchResult) SearchOutcome {
	facilities := make([]Facility, len(result.Facilities))
	copy(facilities, result.Facilities)
	return SearchOutcome{
		State:      SearchStateSucceeded,
		Facilities: facilities,
		Cached:     result.Cached,
		RateLimit:  result.RateLimit,
	}
}

// FailedOutcome 検索失敗
func FailedOutcome(err error) SearchOutcome {
	outcome := SearchOutcome{
		State:   SearchStateFailed,
		Message: FailureMessage(err),
		Err:     err,
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		outcome.RateLimit = transportErr.RateLimit
	}
	return outcome
}

// IsTerminal 成功または失敗で終わっているか
func (o SearchOutcome) IsTerminal() bool {
	return o.State == SearchStateSucceeded || o.State == SearchStateFailed
}

// IsEmpty 検索は成功したが該当施設が0件か
func (o SearchOutcome) IsEmpty() bool {
	return o.State == SearchStateSucceeded && len(o.Facilities) == 0
}

// Clone スライスを複製したコピーを返す
func (o SearchOutcome) Clone() SearchOutcome {
	if o.Facilities != nil {
		facilities := make([]Facility, len(o.Facilities))
		copy(facilities, o.Facilities)
		o.Facilities = facilities
	}
	return o
}
