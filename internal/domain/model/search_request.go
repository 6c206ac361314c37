package model

// SearchRequest はDrift検索に必要な全ての条件を保持する
type SearchRequest struct {
	Moods      []MoodTag      // 必須：選択順のVibe（ちょうど3個）
	Sensations []SensationTag // 必須：選択順のSensation（1-4個）
	Location   Coordinate     // 必須：検索の基準位置
}

// NewSearchRequest は選択状態と位置情報から検索リクエストを作成する
//
// 前提条件は Vibe数 → Sensation数 → 位置情報 の順で判定し、最初に満たさなかった条件のエラーを返す。
func NewSearchRequest(moods []MoodTag, sensations []SensationTag, location *Coordinate) (*SearchRequest, error) {
	if len(moods) != RequiredMoods {
		return nil, &ValidationError{Field: "vibes", Message: MessageMoodsRequired}
	}
	if len(sensations) < MinSensations {
		return nil, &ValidationError{Field: "sensations", Message: MessageSensationRequired}
	}
	if location == nil {
		return nil, &ValidationError{Field: "location", Message: MessageLocationRequired}
	}

	req := &SearchRequest{
		Moods:      make([]MoodTag, len(moods)),
		Sensations: make([]SensationTag, len(sensations)),
		Location:   *location,
	}
	copy(req.Moods, moods)
	copy(req.Sensations, sensations)
	return req, nil
}

// MoodCodes Vibeを文字列コードの一覧で取得
func (r *SearchRequest) MoodCodes() []string {
	codes := make([]string, len(r.Moods))
	for i, m := range r.Moods {
		codes[i] = string(m)
	}
	return codes
}

// SensationCodes Sensationを文字列コードの一覧で取得
func (r *SearchRequest) SensationCodes() []string {
	codes := make([]string, len(r.Sensations))
	for i, s := range r.Sensations {
		codes[i] = string(s)
	}
	return codes
}
