package types

const (
	// UnknownName は、メールアドレスの前に名前らしき文字列が無い場合に使用するプレースホルダーです。
	UnknownName = "Unknown"
	// PlaceholderPosition は、役職欄に常に設定される固定値です。役職の推定は行いません。
	PlaceholderPosition = "Staff/Teacher"
)

// LeadRecord は、ページテキストの1行から抽出された連絡先1件を表します。
// 生成後に変更されることはありません。
type LeadRecord struct {
	Name         string // メールアドレスより前の文字列（空なら UnknownName）
	Email        string // メールアドレスのパターンに一致した文字列
	Position     string // 常に PlaceholderPosition
	SourceDomain string // 抽出元のターゲットドメイン
}

// TargetResult は、1つのターゲットドメインの処理結果、またはその処理中に発生したエラーを保持します。
// これは、pipeline の出力、Writer への入力として利用されます。
type TargetResult struct {
	Domain       string       // 処理対象のドメイン
	CandidateURL string       // Navigator が選んだ候補URL（見つからなければ空）
	Leads        []LeadRecord // 抽出されたリード
	Error        error        // 処理中に発生したエラー
}
