package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-lead-harvester/pkg/parser"
	"github.com/shouni/go-lead-harvester/pkg/types"
)

// ErrNilRenderer は、Renderer が指定されなかった場合のエラーです。
var ErrNilRenderer = errors.New("extract.NewExtractor: Renderer cannot be nil")

// Extractor は、Renderer を使ってページを描画し、可視テキストからリードを抽出します。
type Extractor struct {
	renderer Renderer
	logger   *slog.Logger
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。logger が nil の場合は slog.Default を使います。
func NewExtractor(renderer Renderer, logger *slog.Logger) (*Extractor, error) {
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		renderer: renderer,
		logger:   logger,
	}, nil
}

// ExtractLeads は url を描画し、メールアドレスを含む行ごとに LeadRecord を返します。
// 描画に失敗した場合、部分的なテキストは使わずにエラーを返します。
func (e *Extractor) ExtractLeads(ctx context.Context, url, domain string) ([]types.LeadRecord, error) {
	text, err := e.renderer.Render(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("ページの描画に失敗しました (URL: %s): %w", url, err)
	}

	leads := parser.ParseLeads(text, domain)
	e.logger.Debug("リードを抽出しました", "url", url, "domain", domain, "chars", len(text), "leads", len(leads))
	return leads, nil
}
