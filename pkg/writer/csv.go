package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-lead-harvester/pkg/types"
)

// Header は出力ファイルの固定ヘッダー行です。
const Header = "Name,Email,Position,Source_Domain"

// Encode は、records を固定スキーマのCSVとして w に書き込みます。
//
// 全フィールドをダブルクォートで囲み、Name 内のダブルクォートのみ "" にエスケープします。
// Email はパターン一致により引用符を含み得ず、Position は固定値のため、エスケープしません。
// ヘッダーの後に改行を置き、各行は改行で連結します（最終行の後には改行を置きません）。
func Encode(w io.Writer, records []types.LeadRecord) error {
	rows := make([]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, fmt.Sprintf(`"%s","%s","%s","%s"`,
			strings.ReplaceAll(r.Name, `"`, `""`),
			r.Email,
			r.Position,
			r.SourceDomain,
		))
	}

	if _, err := io.WriteString(w, Header+"\n"+strings.Join(rows, "\n")); err != nil {
		return fmt.Errorf("CSVの書き込みに失敗しました: %w", err)
	}
	return nil
}

// WriteCSV は、path に records を書き込みます。既存ファイルは上書きされ、親ディレクトリは必要に応じて作成されます。
// レコードが0件でもヘッダー行は必ず書き込まれます。
func WriteCSV(path string, records []types.LeadRecord) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("出力ディレクトリの作成に失敗しました (%s): %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("出力ファイルの作成に失敗しました (%s): %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("出力ファイルのクローズに失敗しました (%s): %w", path, cerr)
		}
	}()

	return Encode(f, records)
}
