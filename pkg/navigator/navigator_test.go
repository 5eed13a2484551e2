package navigator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSearcher はテスト用の Searcher 実装です。
type MockSearcher struct {
	links   []string
	err     error
	queries []string
}

func (m *MockSearcher) Search(ctx context.Context, query string) ([]string, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.links, nil
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "site:example.org staff directory email position", BuildQuery("example.org"))
}

func TestSelectCandidate(t *testing.T) {
	tests := []struct {
		name     string
		links    []string
		keywords []string
		expected string
		found    bool
	}{
		{
			name: "配列順で最初の一致",
			links: []string{
				"https://example.org/news",
				"https://example.org/staff-directory",
				"https://example.org/about",
			},
			keywords: DefaultKeywords,
			expected: "https://example.org/staff-directory",
			found:    true,
		},
		{
			name: "キーワード順は優先順位ではない",
			links: []string{
				"https://example.org/about-us",
				"https://example.org/staff",
			},
			keywords: DefaultKeywords,
			expected: "https://example.org/about-us",
			found:    true,
		},
		{
			name: "ホスト名に含まれる場合も一致",
			links: []string{
				"https://www.google.com/preferences",
				"https://directory.example.org/",
			},
			keywords: DefaultKeywords,
			expected: "https://directory.example.org/",
			found:    true,
		},
		{
			name:     "一致なし",
			links:    []string{"https://example.org/news", "https://example.org/calendar"},
			keywords: DefaultKeywords,
			found:    false,
		},
		{
			name:     "空白リンクはスキップ",
			links:    []string{"", "   ", "https://example.org/staff"},
			keywords: DefaultKeywords,
			expected: "https://example.org/staff",
			found:    true,
		},
		{
			name:     "大文字小文字は区別する",
			links:    []string{"https://example.org/STAFF"},
			keywords: DefaultKeywords,
			found:    false,
		},
		{
			name:     "リンクなし",
			links:    nil,
			keywords: DefaultKeywords,
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, ok := SelectCandidate(tt.links, tt.keywords)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("nil_searcher", func(t *testing.T) {
		n, err := New(nil)
		assert.ErrorIs(t, err, ErrNilSearcher)
		assert.Nil(t, n)
	})

	t.Run("keywords_option", func(t *testing.T) {
		n, err := New(&MockSearcher{}, WithKeywords([]string{"faculty"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"faculty"}, n.keywords)
	})

	t.Run("empty_keywords_keeps_default", func(t *testing.T) {
		n, err := New(&MockSearcher{}, WithKeywords(nil))
		require.NoError(t, err)
		assert.Equal(t, DefaultKeywords, n.keywords)
	})
}

func TestFindCandidate(t *testing.T) {
	ctx := context.Background()

	t.Run("候補あり", func(t *testing.T) {
		s := &MockSearcher{links: []string{"https://example.org/news", "https://example.org/staff-directory"}}
		n, err := New(s)
		require.NoError(t, err)

		url, ok, err := n.FindCandidate(ctx, "example.org")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "https://example.org/staff-directory", url)
		assert.Equal(t, []string{"site:example.org staff directory email position"}, s.queries)
	})

	t.Run("候補なし", func(t *testing.T) {
		n, err := New(&MockSearcher{links: []string{"https://example.org/news"}})
		require.NoError(t, err)

		url, ok, err := n.FindCandidate(ctx, "example.org")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, url)
	})

	t.Run("検索エラーはリトライせず返す", func(t *testing.T) {
		s := &MockSearcher{err: errors.New("dns failure")}
		n, err := New(s)
		require.NoError(t, err)

		_, ok, err := n.FindCandidate(ctx, "example.org")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.Contains(t, err.Error(), "dns failure")
		assert.Len(t, s.queries, 1)
	})
}
