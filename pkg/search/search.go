package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shouni/go-lead-harvester/pkg/feed"
)

const (
	// DefaultBrowserSearchURL は、ブラウザ検索で使うクエリURLのテンプレートです。%s にエスケープ済みクエリが入ります。
	DefaultBrowserSearchURL = "https://www.google.com/search?q=%s"
	// DefaultFeedSearchURL は、RSS 形式で結果を返す検索エンドポイントのテンプレートです。
	DefaultFeedSearchURL = "https://www.bing.com/search?format=rss&q=%s"
	// DefaultSettleDelay は、検索結果ページの描画待ち時間です。
	DefaultSettleDelay = 3 * time.Second
)

// Page は、BrowserSearcher が必要とするブラウザページの機能です。
type Page interface {
	Navigate(ctx context.Context, url string) error
	Wait(ctx context.Context, d time.Duration) error
	CollectAttribute(ctx context.Context, selector, attr string) ([]string, error)
}

// BuildURL は、テンプレートにクエリをエスケープして埋め込みます。
func BuildURL(template, query string) string {
	if !strings.Contains(template, "%s") {
		return template + url.QueryEscape(query)
	}
	return fmt.Sprintf(template, url.QueryEscape(query))
}

// BrowserSearcher は、共有ブラウザページで検索結果ページを開き、全アンカーの href を集めます。
// 検索結果ページへの遷移が1回発生します。
type BrowserSearcher struct {
	page        Page
	urlTemplate string
	settle      time.Duration
}

// NewBrowserSearcher は BrowserSearcher を生成します。urlTemplate が空ならデフォルトを使います。
func NewBrowserSearcher(page Page, urlTemplate string, settle time.Duration) (*BrowserSearcher, error) {
	if page == nil {
		return nil, fmt.Errorf("search.NewBrowserSearcher: Page cannot be nil")
	}
	if urlTemplate == "" {
		urlTemplate = DefaultBrowserSearchURL
	}
	if settle < 0 {
		settle = 0
	}
	return &BrowserSearcher{page: page, urlTemplate: urlTemplate, settle: settle}, nil
}

// Search は Searcher インターフェースを実装します。
func (s *BrowserSearcher) Search(ctx context.Context, query string) ([]string, error) {
	searchURL := BuildURL(s.urlTemplate, query)
	if err := s.page.Navigate(ctx, searchURL); err != nil {
		return nil, fmt.Errorf("検索ページへの遷移に失敗しました: %w", err)
	}
	if err := s.page.Wait(ctx, s.settle); err != nil {
		return nil, err
	}

	links, err := s.page.CollectAttribute(ctx, "a", "href")
	if err != nil {
		return nil, fmt.Errorf("検索結果リンクの取得に失敗しました: %w", err)
	}
	return links, nil
}

// FeedSearcher は、RSS で結果を返す検索エンドポイントから、アイテムのリンクを順に返します。
// ブラウザを必要としません。
type FeedSearcher struct {
	parser      *feed.Parser
	urlTemplate string
}

// NewFeedSearcher は FeedSearcher を生成します。urlTemplate が空ならデフォルトを使います。
func NewFeedSearcher(fetcher feed.Fetcher, urlTemplate string) (*FeedSearcher, error) {
	parser, err := feed.NewParser(fetcher)
	if err != nil {
		return nil, err
	}
	if urlTemplate == "" {
		urlTemplate = DefaultFeedSearchURL
	}
	return &FeedSearcher{parser: parser, urlTemplate: urlTemplate}, nil
}

// Search は Searcher インターフェースを実装します。
func (s *FeedSearcher) Search(ctx context.Context, query string) ([]string, error) {
	parsed, err := s.parser.FetchAndParse(ctx, BuildURL(s.urlTemplate, query))
	if err != nil {
		return nil, err
	}
	return feed.NewFeedAdapter(parsed).GetLinks(), nil
}
