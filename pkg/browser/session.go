// Package browser は、永続プロファイルを使うヘッドレス Chrome のセッションを管理します。
// セッションは1つのページを実行全体で共有し、Close で必ず解放されます。
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/gofrs/flock"
)

const (
	// DefaultUserAgent は、セッション全体で使うユーザーエージェントです。
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	// DefaultNavigationTimeout は、ページ遷移1回あたりのタイムアウトです。
	DefaultNavigationTimeout = 30 * time.Second
	// DefaultProfileDir は、プロファイルディレクトリのデフォルトです。
	DefaultProfileDir = ".browser-profile"

	lockFileName = ".harvester.lock"
)

// ErrProfileLocked は、プロファイルディレクトリが別プロセスで使用中の場合のエラーです。
var ErrProfileLocked = errors.New("browser: profile directory is locked by another process")

// Config はセッションの設定です。
type Config struct {
	// ProfileDir は永続プロファイルのルートディレクトリです。
	ProfileDir string

	// UserAgent はセッション全体で使うユーザーエージェントです。
	UserAgent string

	// Headless が false の場合、ウィンドウを表示して起動します。
	Headless bool

	// NavigationTimeout はページ遷移1回あたりのタイムアウトです。
	NavigationTimeout time.Duration

	// RemoteURL は外部の Chrome の WebSocket URL です。空ならローカルで起動します。
	RemoteURL string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.ProfileDir == "" {
		c.ProfileDir = DefaultProfileDir
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = DefaultNavigationTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session は、起動済みのブラウザと共有ページを所有します。
// 取得は Launch、解放は Close で一度だけ行われます。
type Session struct {
	cfg     Config
	lock    *flock.Flock
	lnch    *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page

	closeOnce sync.Once
	closeErr  error
}

// Launch は、プロファイルディレクトリをロックし、Chrome を起動して共有ページを開きます。
// 途中で失敗した場合は、それまでに確保したリソースを解放してからエラーを返します。
func Launch(ctx context.Context, cfg Config) (*Session, error) {
	cfg.defaults()
	log := cfg.Logger

	lock, err := lockProfile(cfg.ProfileDir)
	if err != nil {
		return nil, err
	}
	s := &Session{cfg: cfg, lock: lock}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Context(ctx).
			UserDataDir(cfg.ProfileDir).
			Headless(cfg.Headless).
			Set("user-agent", cfg.UserAgent)

		u, err := l.Launch()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		s.lnch = l
		wsURL = u
		log.Info("browser: launched local chrome", "profile", cfg.ProfileDir, "headless", cfg.Headless)
	} else {
		log.Info("browser: connecting to remote", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	s.page = page

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: set user agent: %w", err)
	}

	return s, nil
}

// lockProfile は、プロファイルディレクトリを作成し、排他ロックを取得します。
func lockProfile(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("browser: create profile dir %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("browser: lock profile %s: %w", dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileLocked, dir)
	}
	return lock, nil
}

// Navigate は、共有ページを url に遷移させ、load イベントまで待ちます。
func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.page == nil {
		return fmt.Errorf("browser: no active page")
	}

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("browser: wait load %s: %w", url, err)
	}
	return nil
}

// Wait は、動的コンテンツの描画のために d だけ待機します。
func (s *Session) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CollectAttribute は、selector に一致する全要素から attr を収集します。
// href のようなプロパティはブラウザが解決した絶対URLになります。
func (s *Session) CollectAttribute(ctx context.Context, selector, attr string) ([]string, error) {
	if s.page == nil {
		return nil, fmt.Errorf("browser: no active page")
	}

	res, err := s.page.Context(ctx).Eval(`(sel, attr) => Array.from(document.querySelectorAll(sel)).map(e => {
		const v = e[attr];
		if (typeof v === "string") return v;
		return e.getAttribute(attr) || "";
	})`, selector, attr)
	if err != nil {
		return nil, fmt.Errorf("browser: collect %s[%s]: %w", selector, attr, err)
	}

	items := res.Value.Arr()
	values := make([]string, 0, len(items))
	for _, item := range items {
		values = append(values, item.Str())
	}
	return values, nil
}

// VisibleText は、document.body の描画済みテキスト (innerText) を返します。
func (s *Session) VisibleText(ctx context.Context) (string, error) {
	if s.page == nil {
		return "", fmt.Errorf("browser: no active page")
	}

	res, err := s.page.Context(ctx).Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return "", fmt.Errorf("browser: read body text: %w", err)
	}
	return res.Value.Str(), nil
}

// Close は、ページ、ブラウザ、起動プロセス、プロファイルロックを順に解放します。
// 何度呼んでも解放は一度だけ行われ、最初の結果を返します。
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error

		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("browser: close page: %w", err))
			}
			s.page = nil
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("browser: close: %w", err))
			}
			s.browser = nil
		}
		// Cleanup はユーザーデータディレクトリを削除するため、永続プロファイルでは Kill のみ行う。
		if s.lnch != nil {
			s.lnch.Kill()
			s.lnch = nil
		}
		if s.lock != nil {
			if err := s.lock.Unlock(); err != nil {
				errs = append(errs, fmt.Errorf("browser: unlock profile: %w", err))
			}
			s.lock = nil
		}

		s.closeErr = errors.Join(errs...)
		if s.closeErr != nil {
			s.cfg.Logger.Warn("browser: close failed", "error", s.closeErr)
		}
	})
	return s.closeErr
}
