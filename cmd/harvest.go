package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-lead-harvester/internal/pipeline"
	"github.com/shouni/go-lead-harvester/pkg/writer"
	"github.com/spf13/cobra"
)

var harvestOpts runOptions

// runHarvest は、全ターゲットを順に処理し、集めたリードを最後に1回だけCSVへ書き出します。
// ブラウザセッションはエラー経路を含めて必ず解放されます。
func runHarvest(cmd *cobra.Command, opts runOptions) (err error) {
	domains, err := resolveTargets(opts)
	if err != nil {
		return fmt.Errorf("ターゲットの読み込みエラー: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := buildComponents(ctx, opts, true, true)
	if err != nil {
		return err
	}
	if c.session != nil {
		defer func() { err = closeSession(err, c.session) }()
	}

	appLogger.Info("リード収集を開始します", "targets", len(domains), "search", opts.search, "renderer", opts.renderer)

	results := pipeline.Run(ctx, domains, c.navigator, c.extractor, appLogger)
	leads := pipeline.Collect(results)

	if err := writer.WriteCSV(opts.output, leads); err != nil {
		return fmt.Errorf("CSV出力エラー: %w", err)
	}

	fmt.Println("--- リード収集結果 ---")
	for i, res := range results {
		switch {
		case res.Error != nil:
			fmt.Printf("❌ [%d] %s\n", i+1, res.Domain)
			fmt.Printf("     エラー: %v\n", res.Error)
		case res.CandidateURL == "":
			fmt.Printf("➖ [%d] %s (候補ページなし)\n", i+1, res.Domain)
		default:
			fmt.Printf("✅ [%d] %s\n", i+1, res.Domain)
			fmt.Printf("     候補: %s (リード %d 件)\n", res.CandidateURL, len(res.Leads))
		}
	}
	fmt.Println("-------------------------------")

	s := pipeline.Summarize(results)
	fmt.Printf("完了: %d 件のリードを %s に保存しました (対象 %d, 候補あり %d, 失敗 %d)\n",
		s.Leads, opts.output, s.Targets, s.Candidates, s.Failures)

	return nil
}

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "対象ドメインのスタッフ名簿ページを探し、連絡先をCSVに書き出します",
	Long: `各ドメインについて "site:<domain> staff directory email position" を検索し、
staff / directory / about を含む最初のリンクを開いてメールアドレスを含む行を抽出します。
ドメインは1件ずつ順に処理し、失敗したドメインはスキップして次へ進みます。結果は最後に1回だけ書き出します。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHarvest(cmd, harvestOpts)
	},
}

func init() {
	addTargetFlags(harvestCmd, &harvestOpts)
	addBrowserFlags(harvestCmd, &harvestOpts)
	addSearchFlags(harvestCmd, &harvestOpts)
	addRendererFlags(harvestCmd, &harvestOpts)
	harvestCmd.Flags().StringVarP(&harvestOpts.output, "output", "o", defaultOutputPath, "出力CSVのパス (毎回上書き)")
}
