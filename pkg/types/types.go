package types

// ----------------------------------------------------------------------
// チェック結果の型定義
// ----------------------------------------------------------------------

// CheckResult は、1つのURLに対するチェック結果を保持します。
// レスポンスを受信できた場合は StatusCode が設定され、リトライ上限まで
// ネットワークエラーが続いた場合は Err のみが設定されます。
type CheckResult struct {
	Line        int    // 入力ファイル上の行番号 (1始まり)
	URL         string // 正規化済みURL
	StatusCode  int    // HTTPステータスコード (未受信の場合は 0)
	Title       string // 抽出されたページタイトル (なければ空)
	ContentType string // レスポンスのContent-Typeヘッダー値
	Err         string // 終端的なネットワークエラーの説明 (成功時は空)
	Attempts    int    // 実際に行ったリクエスト試行回数
}

// Received は、HTTPレスポンスを受信できたかどうかを返します。
// ステータスコードの値 (4xx/5xx を含む) は成否の判定に影響しません。
func (r CheckResult) Received() bool {
	return r.Err == ""
}

// Summary は、1回の実行全体の集計結果を保持します。
type Summary struct {
	Success int // レスポンスを受信できたURL数
	Total   int // 処理したURLの総数
}
