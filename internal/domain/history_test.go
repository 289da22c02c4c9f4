package domain_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/ghostline/internal/domain"
)

func TestSuggestionHistory_Find(t *testing.T) {
	t.Run("should return stored text on exact match", func(t *testing.T) {
		history := domain.NewSuggestionHistory(0)
		history.Insert(domain.Suggestion{Text: "foo", Prefix: "a", Suffix: "b", CompletionID: "c1"})

		match, ok := history.Find("a", "b")

		require.True(t, ok)
		require.Equal(t, "foo", match.Text)
		require.Equal(t, "c1", match.CompletionID)
	})

	t.Run("should return remaining tail when user typed into the suggestion", func(t *testing.T) {
		history := domain.NewSuggestionHistory(0)
		history.Insert(domain.Suggestion{Text: "world", Prefix: "hello ", Suffix: "", CompletionID: "c1"})

		match, ok := history.Find("hello wo", "")

		require.True(t, ok)
		require.Equal(t, "rld", match.Text)
		require.Equal(t, "c1", match.CompletionID)
	})

	t.Run("should miss when typed text diverges from the suggestion", func(t *testing.T) {
		history := domain.NewSuggestionHistory(0)
		history.Insert(domain.Suggestion{Text: "world", Prefix: "hello ", Suffix: "", CompletionID: "c1"})

		_, ok := history.Find("hello wa", "")

		require.False(t, ok)
	})

	t.Run("should miss when suffix differs", func(t *testing.T) {
		history := domain.NewSuggestionHistory(0)
		history.Insert(domain.Suggestion{Text: "world", Prefix: "hello ", Suffix: ")", CompletionID: "c1"})

		_, ok := history.Find("hello wo", "")

		require.False(t, ok)
	})

	t.Run("should miss when the suggestion was typed out completely", func(t *testing.T) {
		history := domain.NewSuggestionHistory(0)
		history.Insert(domain.Suggestion{Text: "world", Prefix: "hello ", Suffix: "", CompletionID: "c1"})

		_, ok := history.Find("hello world", "")

		require.False(t, ok)
	})

	t.Run("should prefer the most recent candidate", func(t *testing.T) {
		history := domain.NewSuggestionHistory(0)
		history.Insert(domain.Suggestion{Text: "old", Prefix: "x", Suffix: "", CompletionID: "c1"})
		history.Insert(domain.Suggestion{Text: "new", Prefix: "x", Suffix: "", CompletionID: "c2"})

		match, ok := history.Find("x", "")

		require.True(t, ok)
		require.Equal(t, "new", match.Text)
		require.Equal(t, "c2", match.CompletionID)
	})

	t.Run("should miss on empty history", func(t *testing.T) {
		history := domain.NewSuggestionHistory(0)

		_, ok := history.Find("a", "b")

		require.False(t, ok)
	})
}

func TestSuggestionHistory_Insert(t *testing.T) {
	t.Run("should evict the oldest entry above capacity", func(t *testing.T) {
		history := domain.NewSuggestionHistory(domain.DefaultHistoryCapacity)

		for i := 0; i < 21; i++ {
			history.Insert(domain.Suggestion{
				Text:         fmt.Sprintf("text-%d", i),
				Prefix:       fmt.Sprintf("prefix-%d", i),
				CompletionID: fmt.Sprintf("id-%d", i),
			})
		}

		require.Equal(t, 20, history.Len())

		snapshot := history.Snapshot()
		require.Equal(t, "text-1", snapshot[0].Text)
		require.Equal(t, "text-20", snapshot[19].Text)
		for i, s := range snapshot {
			require.Equal(t, fmt.Sprintf("text-%d", i+1), s.Text)
		}

		_, ok := history.Find("prefix-0", "")
		require.False(t, ok)
	})

	t.Run("should ignore exact duplicates", func(t *testing.T) {
		history := domain.NewSuggestionHistory(0)
		suggestion := domain.Suggestion{Text: "foo", Prefix: "a", Suffix: "b", CompletionID: "c1"}

		require.True(t, history.Insert(suggestion))
		suggestion.CompletionID = "c2"
		require.False(t, history.Insert(suggestion))

		require.Equal(t, 1, history.Len())
		match, _ := history.Find("a", "b")
		require.Equal(t, "c1", match.CompletionID)
	})

	t.Run("should use default capacity for non-positive values", func(t *testing.T) {
		history := domain.NewSuggestionHistory(-3)

		for i := 0; i < 25; i++ {
			history.Insert(domain.Suggestion{Text: fmt.Sprintf("t%d", i)})
		}

		require.Equal(t, domain.DefaultHistoryCapacity, history.Len())
	})
}
