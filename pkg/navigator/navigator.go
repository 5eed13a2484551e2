package navigator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultKeywords は、候補リンクの判定に使うキーワードです。配列順に評価しますが、優先順位ではありません。
var DefaultKeywords = []string{"staff", "directory", "about"}

// ErrNilSearcher は、Searcher が指定されなかった場合のエラーです。
var ErrNilSearcher = errors.New("navigator: Searcher cannot be nil")

// Searcher は、検索クエリを発行してリンクの一覧を返す外部機能のインターフェースです。
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Navigator は、ターゲットドメインのスタッフ名簿ページの候補を探します。
type Navigator struct {
	searcher Searcher
	keywords []string
	logger   *slog.Logger
}

// Option は Navigator の設定を行うための関数型です。
type Option func(*Navigator)

// WithKeywords は候補判定のキーワードを差し替えます。空の場合は無視します。
func WithKeywords(keywords []string) Option {
	return func(n *Navigator) {
		if len(keywords) > 0 {
			n.keywords = keywords
		}
	}
}

// WithLogger はロガーを設定します。
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New は、新しい Navigator を生成します。
func New(searcher Searcher, opts ...Option) (*Navigator, error) {
	if searcher == nil {
		return nil, ErrNilSearcher
	}
	n := &Navigator{
		searcher: searcher,
		keywords: DefaultKeywords,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// BuildQuery は、ドメインに対するスタッフ名簿検索用のクエリを組み立てます。
func BuildQuery(domain string) string {
	return fmt.Sprintf("site:%s staff directory email position", domain)
}

// SelectCandidate は、links を先頭から走査し、いずれかのキーワードを含む最初のリンクを返します。
// スコアリングは行わず、配列順で最初に構造的に一致したものが勝ちます。
func SelectCandidate(links []string, keywords []string) (string, bool) {
	for _, link := range links {
		if strings.TrimSpace(link) == "" {
			continue
		}
		for _, kw := range keywords {
			if kw != "" && strings.Contains(link, kw) {
				return link, true
			}
		}
	}
	return "", false
}

// FindCandidate は、検索を1回だけ実行して候補URLを1件選びます。
// 候補が無い場合は ok=false を返します。検索エラーはそのまま呼び出し元に返し、リトライしません。
func (n *Navigator) FindCandidate(ctx context.Context, domain string) (candidate string, ok bool, err error) {
	query := BuildQuery(domain)
	n.logger.Info("スタッフ名簿を検索します", "domain", domain, "query", query)

	links, err := n.searcher.Search(ctx, query)
	if err != nil {
		return "", false, fmt.Errorf("検索に失敗しました (domain: %s): %w", domain, err)
	}
	n.logger.Debug("検索結果を取得しました", "domain", domain, "links", len(links))

	candidate, ok = SelectCandidate(links, n.keywords)
	if !ok {
		n.logger.Info("候補ページが見つかりませんでした", "domain", domain)
		return "", false, nil
	}
	n.logger.Info("候補ページが見つかりました", "domain", domain, "url", candidate)
	return candidate, true, nil
}
