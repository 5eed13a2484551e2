package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shouni/go-lead-harvester/pkg/browser"
	"github.com/shouni/go-lead-harvester/pkg/extract"
	"github.com/shouni/go-lead-harvester/pkg/navigator"
	"github.com/shouni/go-lead-harvester/pkg/search"
	"github.com/shouni/go-lead-harvester/pkg/targets"
	"github.com/spf13/cobra"
)

const (
	backendBrowser = "browser"
	backendRSS     = "rss"
	backendHTTP    = "http"

	defaultOutputPath = "output/leads.csv"
)

// runOptions は harvest / candidate / extract で共有するフラグです。
type runOptions struct {
	domains     []string
	targetsFile string
	output      string

	profileDir string
	userAgent  string
	headless   bool
	remoteURL  string
	navTimeout time.Duration

	settle       time.Duration
	searchSettle time.Duration
	search       string
	searchURL    string
	renderer     string
	keywords     []string
}

// addTargetFlags はターゲット指定のフラグを追加します。
func addTargetFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringSliceVarP(&opts.domains, "domain", "d", nil, "対象ドメイン (複数指定可)")
	cmd.Flags().StringVarP(&opts.targetsFile, "targets-file", "f", "", "対象ドメインのファイル (1行1ドメイン、または .yaml の targets リスト)")
}

// addBrowserFlags はブラウザセッションのフラグを追加します。
func addBrowserFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.profileDir, "profile-dir", browser.DefaultProfileDir, "永続ブラウザプロファイルのディレクトリ")
	cmd.Flags().StringVar(&opts.userAgent, "user-agent", browser.DefaultUserAgent, "ブラウザのユーザーエージェント")
	cmd.Flags().BoolVar(&opts.headless, "headless", true, "ヘッドレスで起動する")
	cmd.Flags().StringVar(&opts.remoteURL, "remote-url", "", "外部ChromeのWebSocket URL (空ならローカルで起動)")
	cmd.Flags().DurationVar(&opts.navTimeout, "nav-timeout", browser.DefaultNavigationTimeout, "ページ遷移のタイムアウト")
}

// addSearchFlags は Navigator のフラグを追加します。
func addSearchFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.search, "search", backendBrowser, "検索方式 (browser | rss)")
	cmd.Flags().StringVar(&opts.searchURL, "search-url", "", "検索URLのテンプレート (%s にクエリ、空なら方式ごとのデフォルト)")
	cmd.Flags().DurationVar(&opts.searchSettle, "search-settle", search.DefaultSettleDelay, "検索結果ページの描画待ち時間")
	cmd.Flags().StringSliceVar(&opts.keywords, "keywords", navigator.DefaultKeywords, "候補リンク判定のキーワード (配列順に評価)")
}

// addRendererFlags は Extractor のフラグを追加します。
func addRendererFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.renderer, "renderer", backendBrowser, "ページ取得方式 (browser | http)")
	cmd.Flags().DurationVar(&opts.settle, "settle", extract.DefaultSettleDelay, "ページ遷移後の描画待ち時間")
}

// resolveTargets は、ファイルとフラグからターゲットを入力順に組み立てます。
func resolveTargets(opts runOptions) ([]string, error) {
	var raw []string
	if opts.targetsFile != "" {
		loaded, err := targets.Load(opts.targetsFile)
		if err != nil {
			return nil, err
		}
		raw = append(raw, loaded...)
	}
	raw = append(raw, opts.domains...)
	return targets.Normalize(raw)
}

// components は1回の実行で使う部品です。session が nil でなければ呼び出し元が Close します。
type components struct {
	session   *browser.Session
	navigator *navigator.Navigator
	extractor *extract.Extractor
}

// closeSession は、セッションを閉じ、その失敗を err に結合して返します。
func closeSession(err error, session io.Closer) error {
	if cerr := session.Close(); cerr != nil {
		return errors.Join(err, fmt.Errorf("ブラウザセッションの終了に失敗しました: %w", cerr))
	}
	return err
}

// validateBackends は、検索方式とページ取得方式の指定を検証します。
func validateBackends(opts runOptions, withSearch, withRenderer bool) error {
	if withSearch && opts.search != backendBrowser && opts.search != backendRSS {
		return fmt.Errorf("不明な検索方式です: %q (browser | rss)", opts.search)
	}
	if withRenderer && opts.renderer != backendBrowser && opts.renderer != backendHTTP {
		return fmt.Errorf("不明なページ取得方式です: %q (browser | http)", opts.renderer)
	}
	return nil
}

// buildComponents は、フラグに従って Session / Navigator / Extractor を組み立てます。
// ブラウザはいずれかの方式が browser の場合にのみ起動します。
func buildComponents(ctx context.Context, opts runOptions, withSearch, withRenderer bool) (c components, err error) {
	if err := validateBackends(opts, withSearch, withRenderer); err != nil {
		return c, err
	}

	fetcher := GetGlobalFetcher()
	if fetcher == nil {
		return c, fmt.Errorf("HTTPクライアントが初期化されていません。rootコマンドのPreRunを確認してください")
	}

	needsBrowser := (withSearch && opts.search == backendBrowser) || (withRenderer && opts.renderer == backendBrowser)
	if needsBrowser {
		c.session, err = browser.Launch(ctx, browser.Config{
			ProfileDir:        opts.profileDir,
			UserAgent:         opts.userAgent,
			Headless:          opts.headless,
			NavigationTimeout: opts.navTimeout,
			RemoteURL:         opts.remoteURL,
			Logger:            appLogger,
		})
		if err != nil {
			return c, fmt.Errorf("ブラウザセッションの起動に失敗しました: %w", err)
		}
		defer func() {
			if err != nil {
				c.session.Close()
				c.session = nil
			}
		}()
	}

	if withSearch {
		var searcher navigator.Searcher
		if opts.search == backendBrowser {
			searcher, err = search.NewBrowserSearcher(c.session, opts.searchURL, opts.searchSettle)
		} else {
			searcher, err = search.NewFeedSearcher(fetcher, opts.searchURL)
		}
		if err != nil {
			return c, fmt.Errorf("Searcherの初期化エラー: %w", err)
		}

		c.navigator, err = navigator.New(searcher, navigator.WithKeywords(opts.keywords), navigator.WithLogger(appLogger))
		if err != nil {
			return c, fmt.Errorf("Navigatorの初期化エラー: %w", err)
		}
	}

	if withRenderer {
		var renderer extract.Renderer
		if opts.renderer == backendBrowser {
			renderer, err = extract.NewBrowserRenderer(c.session, opts.settle)
		} else {
			renderer, err = extract.NewHTTPRenderer(fetcher)
		}
		if err != nil {
			return c, fmt.Errorf("Rendererの初期化エラー: %w", err)
		}

		c.extractor, err = extract.NewExtractor(renderer, appLogger)
		if err != nil {
			return c, fmt.Errorf("Extractorの初期化エラー: %w", err)
		}
	}

	return c, nil
}
