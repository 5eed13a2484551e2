package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-lead-harvester/pkg/types"
)

// CandidateFinder は、ターゲットドメインの候補URLを1件探す機能です。*navigator.Navigator が満たします。
type CandidateFinder interface {
	FindCandidate(ctx context.Context, domain string) (string, bool, error)
}

// LeadExtractor は、URLからリードを抽出する機能です。*extract.Extractor が満たします。
type LeadExtractor interface {
	ExtractLeads(ctx context.Context, url, domain string) ([]types.LeadRecord, error)
}

// Summary は実行結果の集計です。
type Summary struct {
	Targets    int
	Candidates int
	Leads      int
	Failures   int
}

// Run は、ターゲットを入力順に1件ずつ処理します。並行処理は行いません。
//
// ターゲットごとのエラーはログに記録してリード0件として扱い、次のターゲットへ進みます。
// ctx がキャンセルされた場合、残りのターゲットは ctx のエラーを記録して処理しません。
func Run(ctx context.Context, domains []string, finder CandidateFinder, extractor LeadExtractor, logger *slog.Logger) []types.TargetResult {
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]types.TargetResult, 0, len(domains))
	for i, domain := range domains {
		if err := ctx.Err(); err != nil {
			results = append(results, types.TargetResult{Domain: domain, Error: err})
			continue
		}

		logger.Info("ターゲットの処理を開始します", "index", i+1, "total", len(domains), "domain", domain)
		res := processTarget(ctx, domain, finder, extractor)
		if res.Error != nil {
			logger.Error("ターゲットの処理に失敗しました", "domain", domain, "error", res.Error)
		} else if res.CandidateURL != "" {
			logger.Info("リードを抽出しました", "domain", domain, "url", res.CandidateURL, "leads", len(res.Leads))
		}
		results = append(results, res)
	}
	return results
}

// processTarget は1ターゲット分の検索と抽出を行います。自動操作層の panic もこのターゲットの失敗として扱います。
func processTarget(ctx context.Context, domain string, finder CandidateFinder, extractor LeadExtractor) (res types.TargetResult) {
	res.Domain = domain
	defer func() {
		if r := recover(); r != nil {
			res.Leads = nil
			res.Error = fmt.Errorf("予期しないエラーが発生しました (domain: %s): %v", domain, r)
		}
	}()

	candidate, ok, err := finder.FindCandidate(ctx, domain)
	if err != nil {
		res.Error = err
		return res
	}
	if !ok {
		return res
	}
	res.CandidateURL = candidate

	leads, err := extractor.ExtractLeads(ctx, candidate, domain)
	if err != nil {
		res.Error = err
		return res
	}
	res.Leads = leads
	return res
}

// Collect は、結果をターゲット順に連結した ResultSet を返します。重複除去は行いません。
func Collect(results []types.TargetResult) []types.LeadRecord {
	var leads []types.LeadRecord
	for _, r := range results {
		leads = append(leads, r.Leads...)
	}
	return leads
}

// Summarize は結果を集計します。
func Summarize(results []types.TargetResult) Summary {
	s := Summary{Targets: len(results)}
	for _, r := range results {
		if r.CandidateURL != "" {
			s.Candidates++
		}
		if r.Error != nil {
			s.Failures++
		}
		s.Leads += len(r.Leads)
	}
	return s
}
