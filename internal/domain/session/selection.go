package session

// SelectionSet は選択順を保持する重複なし・上限付きの集合
type SelectionSet[T comparable] struct {
	items []T
	limit int
}

// NewSelectionSet は上限limitの空の集合を作成する
func NewSelectionSet[T comparable](limit int) *SelectionSet[T] {
	return &SelectionSet[T]{
		items: make([]T, 0, limit),
		limit: limit,
	}
}

// Toggle は選択済みなら外し、未選択なら上限未満の場合のみ末尾に追加する
// 上限に達している場合は何もしない。戻り値は操作後に選択されているかどうか
func (s *SelectionSet[T]) Toggle(item T) bool {
	if i := s.indexOf(item); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		return false
	}
	if len(s.items) >= s.limit {
		return false
	}
	s.items = append(s.items, item)
	return true
}

// Contains は選択済みかどうかを判定する
func (s *SelectionSet[T]) Contains(item T) bool {
	return s.indexOf(item) >= 0
}

// Items は選択順のコピーを返す
func (s *SelectionSet[T]) Items() []T {
	items := make([]T, len(s.items))
	copy(items, s.items)
	return items
}

func (s *SelectionSet[T]) Len() int {
	return len(s.items)
}

func (s *SelectionSet[T]) Limit() int {
	return s.limit
}

// Remaining はあと何個選択できるか
func (s *SelectionSet[T]) Remaining() int {
	return s.limit - len(s.items)
}

// Full は上限に達しているか（UI側でボタンを無効化する判定に使う）
func (s *SelectionSet[T]) Full() bool {
	return len(s.items) >= s.limit
}

// Clear は全ての選択を解除する
func (s *SelectionSet[T]) Clear() {
	s.items = s.items[:0]
}

func (s *SelectionSet[T]) indexOf(item T) int {
	for i, v := range s.items {
		if v == item {
			return i
		}
	}
	return -1
}
