package extract

import (
	"context"
	"time"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Renderer は、URLを描画して可視テキストを1つの文字列として返す機能のインターフェースです。
// Extractor は、この抽象に依存します。
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Page は、BrowserRenderer が必要とするブラウザページの機能です。
// *browser.Session はこのインターフェースを満たします。
type Page interface {
	Navigate(ctx context.Context, url string) error
	Wait(ctx context.Context, d time.Duration) error
	VisibleText(ctx context.Context) (string, error)
}

// Fetcher は、HTMLドキュメントの生バイト配列を取得する機能のインターフェースです。
// *httpkit.Client はこのインターフェースを満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
