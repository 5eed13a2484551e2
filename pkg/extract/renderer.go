package extract

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSettleDelay は、ページ遷移後に動的コンテンツの描画を待つ時間です。
const DefaultSettleDelay = 5 * time.Second

// BrowserRenderer は、共有ブラウザページで URL を開き、待機後に body の innerText を返します。
type BrowserRenderer struct {
	page   Page
	settle time.Duration
}

// NewBrowserRenderer は BrowserRenderer を生成します。
func NewBrowserRenderer(page Page, settle time.Duration) (*BrowserRenderer, error) {
	if page == nil {
		return nil, fmt.Errorf("extract.NewBrowserRenderer: Page cannot be nil")
	}
	if settle < 0 {
		settle = 0
	}
	return &BrowserRenderer{page: page, settle: settle}, nil
}

// Render は Renderer インターフェースを実装します。
func (r *BrowserRenderer) Render(ctx context.Context, url string) (string, error) {
	if err := r.page.Navigate(ctx, url); err != nil {
		return "", err
	}
	if err := r.page.Wait(ctx, r.settle); err != nil {
		return "", err
	}
	return r.page.VisibleText(ctx)
}

// HTTPRenderer は、HTTP で取得した静的 HTML から innerText 相当のテキストを組み立てます。
// JavaScript は実行しません。
type HTTPRenderer struct {
	fetcher Fetcher
}

// NewHTTPRenderer は HTTPRenderer を生成します。
func NewHTTPRenderer(fetcher Fetcher) (*HTTPRenderer, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("extract.NewHTTPRenderer: Fetcher cannot be nil")
	}
	return &HTTPRenderer{fetcher: fetcher}, nil
}

// Render は Renderer インターフェースを実装します。
func (r *HTTPRenderer) Render(ctx context.Context, url string) (string, error) {
	htmlBytes, err := r.fetcher.FetchBytes(ctx, url)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return "", fmt.Errorf("HTML解析に失敗しました: %w", err)
	}
	return VisibleText(doc), nil
}
