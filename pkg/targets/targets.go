package targets

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/publicsuffix"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoTargets は、ターゲットが1件も指定されなかった場合のエラーです。
	ErrNoTargets = errors.New("targets: no target domains specified")
	// ErrInvalidDomain は、ドメインとして解釈できない入力のエラーです。
	ErrInvalidDomain = errors.New("targets: invalid domain")
)

// File は YAML 形式のターゲットファイルの構造です。
type File struct {
	Targets []string `yaml:"targets"`
}

// Load は、ファイルからターゲットドメインを読み込みます。
// 拡張子が .yaml / .yml の場合は YAML、それ以外は1行1ドメインとして扱い、空行と # で始まる行は無視します。
// 入力順は保持し、重複は除去しません。
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ターゲットファイルの読み込みに失敗しました (%s): %w", path, err)
	}

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("ターゲットファイルのパースに失敗しました (%s): %w", path, err)
		}
		raw = f.Targets
	default:
		raw, err = parseLines(data)
		if err != nil {
			return nil, fmt.Errorf("ターゲットファイルのパースに失敗しました (%s): %w", path, err)
		}
	}
	return Normalize(raw)
}

func parseLines(data []byte) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// Normalize は、入力を順序を保ったままドメインに正規化します。1件も無い場合は ErrNoTargets を返します。
func Normalize(raw []string) ([]string, error) {
	domains := make([]string, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		d, err := NormalizeDomain(r)
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	if len(domains) == 0 {
		return nil, ErrNoTargets
	}
	return domains, nil
}

// NormalizeDomain は、URL やホスト名からホスト部分を取り出します。
// スキーム、パス、ポート、末尾のドットを取り除くだけで、大文字小文字や www. は入力のまま保持します。
// 検証は小文字化したホストで公開サフィックスリストに対して行います。
func NormalizeDomain(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDomain, raw, err)
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	if host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, raw)
	}

	if _, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host)); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDomain, raw, err)
	}
	return host, nil
}
