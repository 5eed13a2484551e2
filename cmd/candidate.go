package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var candidateOpts runOptions

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "対象ドメインごとにスタッフ名簿ページの候補URLを表示します",
	Long:  `検索のみを実行し、各ドメインで選ばれた候補URLを表示します。ページの抽出は行いません。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		domains, err := resolveTargets(candidateOpts)
		if err != nil {
			return fmt.Errorf("ターゲットの読み込みエラー: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := buildComponents(ctx, candidateOpts, true, false)
		if err != nil {
			return err
		}
		if c.session != nil {
			defer func() { err = closeSession(err, c.session) }()
		}

		for _, domain := range domains {
			url, ok, err := c.navigator.FindCandidate(ctx, domain)
			switch {
			case err != nil:
				fmt.Printf("❌ %s: %v\n", domain, err)
			case !ok:
				fmt.Printf("➖ %s: 候補なし\n", domain)
			default:
				fmt.Printf("🔗 %s: %s\n", domain, url)
			}
		}
		return nil
	},
}

func init() {
	addTargetFlags(candidateCmd, &candidateOpts)
	addBrowserFlags(candidateCmd, &candidateOpts)
	addSearchFlags(candidateCmd, &candidateOpts)
}
