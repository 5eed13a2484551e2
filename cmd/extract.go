package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/shouni/go-lead-harvester/pkg/extract"
	"github.com/shouni/go-lead-harvester/pkg/targets"
	"github.com/shouni/go-lead-harvester/pkg/types"
	"github.com/shouni/go-lead-harvester/pkg/writer"
	"github.com/spf13/cobra"
)

var (
	rawURL      string
	extractOpts runOptions
)

// runExtractionPipeline は、1つのURLからリードを抽出するメインロジックです。
func runExtractionPipeline(ctx context.Context, url, domain string, extractor *extract.Extractor) ([]types.LeadRecord, error) {
	leads, err := extractor.ExtractLeads(ctx, url, domain)
	if err != nil {
		return nil, fmt.Errorf("リード抽出エラー (URL: %s): %w", url, err)
	}
	return leads, nil
}

// writeLeads は、リードをCSVとして w に書き出します。
// 行がある場合のみ末尾に改行を付けます (ヘッダーは改行で終わるため)。
func writeLeads(w io.Writer, leads []types.LeadRecord) error {
	if err := writer.Encode(w, leads); err != nil {
		return err
	}
	if len(leads) > 0 {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "指定されたURLのページからリードを抽出し、CSVとして標準出力に表示します",
	Long:  `検索を行わず、--url のページを直接開いてメールアドレスを含む行をリードとして抽出します。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		processedURL, err := ensureScheme(rawURL)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		// --domain が無ければURLのホストを抽出元ドメインとする
		domain := ""
		if len(extractOpts.domains) > 0 {
			domain = extractOpts.domains[0]
		}
		if domain == "" {
			domain = processedURL
		}
		domain, err = targets.NormalizeDomain(domain)
		if err != nil {
			return err
		}
		log.Printf("処理対象URL: %s (domain: %s)\n", processedURL, domain)

		c, err := buildComponents(cmd.Context(), extractOpts, false, true)
		if err != nil {
			return err
		}
		if c.session != nil {
			defer func() { err = closeSession(err, c.session) }()
		}

		leads, err := runExtractionPipeline(cmd.Context(), processedURL, domain, c.extractor)
		if err != nil {
			return err
		}

		if err := writeLeads(os.Stdout, leads); err != nil {
			return err
		}
		log.Printf("%d 件のリードを抽出しました\n", len(leads))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&rawURL, "url", "u", "", "抽出対象のURL")
	extractCmd.Flags().StringSliceVarP(&extractOpts.domains, "domain", "d", nil, "抽出元として記録するドメイン (省略時はURLのホスト)")
	addBrowserFlags(extractCmd, &extractOpts)
	addRendererFlags(extractCmd, &extractOpts)
	extractCmd.MarkFlagRequired("url")
}
