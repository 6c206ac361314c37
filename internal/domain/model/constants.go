package model

// MoodTag はVibe（気分）の選択肢を表すコード
type MoodTag string

// SensationTag はSensation（湯の感触）の選択肢を表すコード
type SensationTag string

// Vibe選択肢
const (
	MoodForest   MoodTag = "forest"
	MoodCity     MoodTag = "city"
	MoodSnow     MoodTag = "snow"
	MoodBonfire  MoodTag = "bonfire"
	MoodHinoki   MoodTag = "hinoki"
	MoodConcrete MoodTag = "concrete"
	MoodOcean    MoodTag = "ocean"
	MoodCave     MoodTag = "cave"
	MoodMorning  MoodTag = "morning"
	MoodSunset   MoodTag = "sunset"
	MoodSolo     MoodTag = "solo"
	MoodParty    MoodTag = "party"
)

// Sensation選択肢
const (
	SensationToroToro   SensationTag = "トロトロ"
	SensationBiriBiri   SensationTag = "ビリビリ"
	SensationShakitto   SensationTag = "シャキッ"
	SensationPunPun     SensationTag = "プンプン"
	SensationShuwaShuwa SensationTag = "シュワシュワ"
	SensationDoroDoro   SensationTag = "ドロドロ"
	SensationSuuSuu     SensationTag = "スースー"
	SensationOmakase    SensationTag = "おまかせ"
)

// 選択数の上限と検索に必要な数
const (
	MaxMoods      = 3
	MaxSensations = 4
	RequiredMoods = 3
	MinSensations = 1
)

// MoodLabelMap はVibeコードから日本語ラベルへのマッピング
var MoodLabelMap = map[MoodTag]string{
	MoodForest:   "森",
	MoodCity:     "都会",
	MoodSnow:     "雪",
	MoodBonfire:  "焚き火",
	MoodHinoki:   "檜",
	MoodConcrete: "コンクリート",
	MoodOcean:    "海",
	MoodCave:     "洞窟",
	MoodMorning:  "朝",
	MoodSunset:   "夕日",
	MoodSolo:     "一人",
	MoodParty:    "グループ",
}

// SensationDescriptionMap はSensationコードから説明文へのマッピング
var SensationDescriptionMap = map[SensationTag]string{
	SensationToroToro:   "美肌効果のあるとろみのある温泉",
	SensationBiriBiri:   "電気風呂や刺激的な炭酸泉",
	SensationShakitto:   "爽快感のある冷泉や水風呂",
	SensationPunPun:     "硫黄の香りが漂う温泉街",
	SensationShuwaShuwa: "微炭酸の気泡が心地よい",
	SensationDoroDoro:   "濁り湯や泥パック温泉",
	SensationSuuSuu:     "メントール配合の清涼感",
	SensationOmakase:    "お好みの温泉をおまかせ",
}

// GetAllMoods は全Vibeを表示順で取得する
func GetAllMoods() []MoodTag {
	return []MoodTag{
		MoodForest,
		MoodCity,
		MoodSnow,
		MoodBonfire,
		MoodHinoki,
		MoodConcrete,
		MoodOcean,
		MoodCave,
		MoodMorning,
		MoodSunset,
		MoodSolo,
		MoodParty,
	}
}

// GetAllSensations は全Sensationを表示順で取得する
func GetAllSensations() []SensationTag {
	return []SensationTag{
		SensationToroToro,
		SensationBiriBiri,
		SensationShakitto,
		SensationPunPun,
		SensationShuwaShuwa,
		SensationDoroDoro,
		SensationSuuSuu,
		SensationOmakase,
	}
}

// Valid は定義済みのVibeかどうかを判定する
func (m MoodTag) Valid() bool {
	_, ok := MoodLabelMap[m]
	return ok
}

// Label は日本語ラベルを返す（未定義の場合はコードのまま）
func (m MoodTag) Label() string {
	if label, ok := MoodLabelMap[m]; ok {
		return label
	}
	return string(m)
}

// Valid は定義済みのSensationかどうかを判定する
func (s SensationTag) Valid() bool {
	_, ok := SensationDescriptionMap[s]
	return ok
}

// Description はSensationの説明文を返す
func (s SensationTag) Description() string {
	return SensationDescriptionMap[s]
}

// ParseMoodTag は文字列をVibeコードに変換する
func ParseMoodTag(code string) (MoodTag, error) {
	tag := MoodTag(code)
	if !tag.Valid() {
		return "", &ValidationError{Field: "vibe", Message: "不正なVibe: " + code}
	}
	return tag, nil
}

// ParseSensationTag は文字列をSensationコードに変換する
func ParseSensationTag(code string) (SensationTag, error) {
	tag := SensationTag(code)
	if !tag.Valid() {
		return "", &ValidationError{Field: "sensation", Message: "不正なSensation: " + code}
	}
	return tag, nil
}
