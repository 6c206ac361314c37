package session

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Yurift-App/internal/domain/model"
)

func TestSelectionSet_Toggle(t *testing.T) {
	t.Run("上限まで選択順に追加される", func(t *testing.T) {
		set := NewSelectionSet[string](3)
		assert.True(t, set.Toggle("a"))
		assert.True(t, set.Toggle("b"))
		assert.True(t, set.Toggle("c"))
		assert.Equal(t, []string{"a", "b", "c"}, set.Items())
		assert.True(t, set.Full())
		assert.Equal(t, 0, set.Remaining())
	})

	t.Run("上限時の追加は無視される", func(t *testing.T) {
		set := NewSelectionSet[string](2)
		set.Toggle("a")
		set.Toggle("b")
		assert.False(t, set.Toggle("c"))
		assert.Equal(t, []string{"a", "b"}, set.Items())
		assert.False(t, set.Contains("c"))
	})

	t.Run("選択済みを切り替えると残りの順序を保って外れる", func(t *testing.T) {
		set := NewSelectionSet[string](4)
		for _, v := range []string{"a", "b", "c", "d"} {
			set.Toggle(v)
		}
		assert.False(t, set.Toggle("b"))
		assert.Equal(t, []string{"a", "c", "d"}, set.Items())
		assert.Equal(t, 1, set.Remaining())

		assert.True(t, set.Toggle("b"))
		assert.Equal(t, []string{"a", "c", "d", "b"}, set.Items())
	})

	t.Run("Itemsはコピーを返す", func(t *testing.T) {
		set := NewSelectionSet[string](3)
		set.Toggle("a")
		items := set.Items()
		items[0] = "z"
		assert.Equal(t, []string{"a"}, set.Items())
	})

	t.Run("Clearで空になる", func(t *testing.T) {
		set := NewSelectionSet[string](3)
		set.Toggle("a")
		set.Clear()
		assert.Equal(t, 0, set.Len())
		assert.Empty(t, set.Items())
	})
}

// 任意のトグル列に対して上限と重複なしが保たれる
func TestSelectionSet_InvariantUnderRandomToggles(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	moods := model.GetAllMoods()
	sensations := model.GetAllSensations()

	s := NewDriftSession(&stubSearchRepository{})
	for i := 0; i < 2000; i++ {
		s.ToggleMood(moods[rng.Intn(len(moods))])
		s.ToggleSensation(sensations[rng.Intn(len(sensations))])

		gotMoods := s.Moods()
		gotSensations := s.Sensations()
		require.LessOrEqual(t, len(gotMoods), model.MaxMoods)
		require.LessOrEqual(t, len(gotSensations), model.MaxSensations)
		require.Equal(t, len(gotMoods), len(uniq(gotMoods)))
		require.Equal(t, len(gotSensations), len(uniq(gotSensations)))
	}
}

func uniq[T comparable](items []T) map[T]struct{} {
	seen := make(map[T]struct{}, len(items))
	for _, v := range items {
		seen[v] = struct{}{}
	}
	return seen
}
