package extract_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shouni/go-lead-harvester/pkg/extract"
	"github.com/shouni/go-lead-harvester/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockRenderer はテスト用の extract.Renderer 実装です。
type MockRenderer struct {
	text string
	err  error
}

func (m *MockRenderer) Render(ctx context.Context, url string) (string, error) {
	return m.text, m.err
}

// MockPage はテスト用の extract.Page 実装です。
type MockPage struct {
	calls       []string
	text        string
	navigateErr error
	textErr     error
	waited      time.Duration
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	m.calls = append(m.calls, "navigate:"+url)
	return m.navigateErr
}

func (m *MockPage) Wait(ctx context.Context, d time.Duration) error {
	m.calls = append(m.calls, "wait")
	m.waited = d
	return nil
}

func (m *MockPage) VisibleText(ctx context.Context) (string, error) {
	m.calls = append(m.calls, "text")
	return m.text, m.textErr
}

// MockFetcher はテスト用の extract.Fetcher 実装です。
type MockFetcher struct {
	htmlContent string
	fetchError  error
}

func (m *MockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if m.fetchError != nil {
		return nil, m.fetchError
	}
	return []byte(m.htmlContent), nil
}

// ======================================================================
// テスト関数
// ======================================================================

func TestNewExtractor(t *testing.T) {
	t.Run("success_with_valid_renderer", func(t *testing.T) {
		extractor, err := extract.NewExtractor(&MockRenderer{}, nil)
		assert.NoError(t, err)
		assert.NotNil(t, extractor)
	})

	t.Run("error_with_nil_renderer", func(t *testing.T) {
		extractor, err := extract.NewExtractor(nil, nil)
		assert.ErrorIs(t, err, extract.ErrNilRenderer)
		assert.Nil(t, extractor)
	})
}

func TestExtractLeads(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name          string
		text          string
		renderErr     error
		expected      []types.LeadRecord
		expectedError bool
	}{
		{
			name: "メールの前のテキストを名前にする",
			text: "Our Staff\nJane Doe, Principal  jane.doe@example.org\n",
			expected: []types.LeadRecord{
				{Name: "Jane Doe, Principal", Email: "jane.doe@example.org", Position: "Staff/Teacher", SourceDomain: "example.org"},
			},
		},
		{
			name: "名前が無ければUnknown",
			text: "info@example.org",
			expected: []types.LeadRecord{
				{Name: "Unknown", Email: "info@example.org", Position: "Staff/Teacher", SourceDomain: "example.org"},
			},
		},
		{
			name:     "no_email",
			text:     "Welcome to our school",
			expected: nil,
		},
		{
			name:          "render_error_no_partial_text",
			text:          "partial a@example.org",
			renderErr:     errors.New("navigation timeout"),
			expectedError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			extractor, err := extract.NewExtractor(&MockRenderer{text: tc.text, err: tc.renderErr}, nil)
			require.NoError(t, err)

			leads, err := extractor.ExtractLeads(ctx, "https://example.org/staff", "example.org")
			if tc.expectedError {
				assert.Error(t, err)
				assert.Nil(t, leads)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, leads)
		})
	}
}

func TestBrowserRenderer(t *testing.T) {
	ctx := context.Background()

	t.Run("nil_page", func(t *testing.T) {
		r, err := extract.NewBrowserRenderer(nil, time.Second)
		assert.Error(t, err)
		assert.Nil(t, r)
	})

	t.Run("navigate_wait_read", func(t *testing.T) {
		page := &MockPage{text: "Mr. Kim kim@example.org"}
		r, err := extract.NewBrowserRenderer(page, extract.DefaultSettleDelay)
		require.NoError(t, err)

		text, err := r.Render(ctx, "https://example.org/staff")
		require.NoError(t, err)
		assert.Equal(t, "Mr. Kim kim@example.org", text)
		assert.Equal(t, []string{"navigate:https://example.org/staff", "wait", "text"}, page.calls)
		assert.Equal(t, 5*time.Second, page.waited)
	})

	t.Run("navigate_error_stops", func(t *testing.T) {
		page := &MockPage{navigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
		r, err := extract.NewBrowserRenderer(page, 0)
		require.NoError(t, err)

		_, err = r.Render(ctx, "https://example.org/staff")
		assert.Error(t, err)
		assert.Equal(t, []string{"navigate:https://example.org/staff"}, page.calls)
	})

	t.Run("text_error", func(t *testing.T) {
		page := &MockPage{textErr: errors.New("detached frame")}
		r, err := extract.NewBrowserRenderer(page, 0)
		require.NoError(t, err)

		_, err = r.Render(ctx, "https://example.org/staff")
		assert.Error(t, err)
	})
}

func TestHTTPRenderer(t *testing.T) {
	ctx := context.Background()

	t.Run("nil_fetcher", func(t *testing.T) {
		r, err := extract.NewHTTPRenderer(nil)
		assert.Error(t, err)
		assert.Nil(t, r)
	})

	t.Run("fetch_error", func(t *testing.T) {
		r, err := extract.NewHTTPRenderer(&MockFetcher{fetchError: errors.New("network timeout")})
		require.NoError(t, err)

		_, err = r.Render(ctx, "https://example.org/staff")
		assert.Error(t, err)
	})

	t.Run("staff_table_to_leads", func(t *testing.T) {
		html := `<html><head><title>Staff</title><script>var x = "hidden@example.org";</script></head>
<body>
<h1>Staff Directory</h1>
<table>
  <tr><td>Jane Doe</td><td>jane.doe@example.org</td></tr>
  <tr><td>John Roe</td><td>john.roe@example.org</td></tr>
</table>
<p>Front office:<br>office@example.org</p>
</body></html>`
		r, err := extract.NewHTTPRenderer(&MockFetcher{htmlContent: html})
		require.NoError(t, err)

		extractor, err := extract.NewExtractor(r, nil)
		require.NoError(t, err)

		leads, err := extractor.ExtractLeads(ctx, "https://example.org/staff", "example.org")
		require.NoError(t, err)
		require.Len(t, leads, 3)
		assert.Equal(t, "Jane Doe", leads[0].Name)
		assert.Equal(t, "jane.doe@example.org", leads[0].Email)
		assert.Equal(t, "John Roe", leads[1].Name)
		assert.Equal(t, "Unknown", leads[2].Name)
		assert.Equal(t, "office@example.org", leads[2].Email)
	})
}

func TestVisibleText(t *testing.T) {
	html := `<html><head><style>.a{}</style></head><body>
<div>First
line</div><noscript>enable js</noscript>
<ul><li>One</li><li>Two</li></ul>
<span>inline</span> <b>text</b>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	require.NoError(t, err)

	text := extract.VisibleText(doc)
	assert.Equal(t, "First line\nOne\nTwo\ninline text", text)
	assert.NotContains(t, text, "enable js")
}
