package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shouni/go-url-check/pkg/extract"
	"github.com/shouni/go-url-check/pkg/types"
)

const (
	// dividerWidth は、コンソール出力の区切り線の幅です。
	dividerWidth = 80

	// maxConsoleTitleRunes は、コンソールに表示するタイトルの最大長 (ルーン数) です。
	// CSVには常に完全なタイトルが書き込まれます。
	maxConsoleTitleRunes = 100
)

// csvHeader はCSV出力のヘッダー行です。
var csvHeader = []string{"line", "url", "status_code", "title", "error"}

// Reporter は、チェック結果をコンソールと (任意で) CSVファイルに出力します。
// 書き込み先は1つの実行につき1度だけ開かれ、結果は逐次追記されます。
type Reporter struct {
	out       io.Writer
	csvPath   string
	csvFile   *os.File
	csvWriter *csv.Writer
}

// New は、コンソールのみに出力するReporterを生成します。
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// WithCSV は、結果をCSVファイルにも書き出すよう設定し、ヘッダー行を書き込みます。
// ファイルを開けない場合はエラーを返しますが、Reporter自体は引き続き
// コンソール出力のみで利用できます。
func (r *Reporter) WithCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("出力ファイルを作成できませんでした (パス: %s): %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}

	r.csvPath = path
	r.csvFile = f
	r.csvWriter = w
	return nil
}

// Divider は、コンソールに区切り線を出力します。
func (r *Reporter) Divider() {
	fmt.Fprintln(r.out, strings.Repeat("-", dividerWidth))
}

// Header は、処理開始時の概要行を出力します。
func (r *Reporter) Header(total int) {
	fmt.Fprintf(r.out, "有効なURLを %d 件見つけました。処理を開始します...\n", total)
	r.Divider()
}

// Report は、1件のチェック結果をコンソールに出力し、CSVが有効な場合は1行追記します。
func (r *Reporter) Report(res types.CheckResult) {
	fmt.Fprintf(r.out, "[%d行目] %s\n", res.Line, res.URL)

	if res.Received() {
		fmt.Fprintf(r.out, "  ステータスコード: %d\n", res.StatusCode)
		switch {
		case res.Title != "":
			fmt.Fprintf(r.out, "  タイトル: %s\n", truncate(res.Title, maxConsoleTitleRunes))
		case !extract.IsHTML(res.ContentType):
			fmt.Fprintf(r.out, "  タイトル: (非HTMLコンテンツ: %s)\n", res.ContentType)
		default:
			fmt.Fprintln(r.out, "  タイトル: (なし)")
		}
	} else {
		fmt.Fprintf(r.out, "  エラー: %s (試行回数: %d)\n", res.Err, res.Attempts)
	}

	r.Divider()

	if r.csvWriter != nil {
		statusField := ""
		if res.Received() {
			statusField = strconv.Itoa(res.StatusCode)
		}
		// 書き込みエラーはFinishのフラッシュ時にまとめて検出する
		r.csvWriter.Write([]string{
			strconv.Itoa(res.Line),
			res.URL,
			statusField,
			res.Title,
			res.Err,
		})
	}
}

// Finish は、最終集計行を出力し、CSVが有効な場合はフラッシュして閉じます。
// CSVの書き込み失敗はエラーとして返しますが、コンソールへの集計出力は
// その前に完了しています。
func (r *Reporter) Finish(sum types.Summary) error {
	fmt.Fprintf(r.out, "\n処理完了! 成功: %d/%d\n", sum.Success, sum.Total)

	if r.csvWriter == nil {
		return nil
	}

	r.csvWriter.Flush()
	flushErr := r.csvWriter.Error()
	closeErr := r.csvFile.Close()

	if flushErr != nil {
		return fmt.Errorf("CSVの書き込みに失敗しました (パス: %s): %w", r.csvPath, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("出力ファイルを閉じられませんでした (パス: %s): %w", r.csvPath, closeErr)
	}

	fmt.Fprintf(r.out, "結果を保存しました: %s\n", r.csvPath)
	return nil
}

// truncate は、文字列をルーン数で切り詰めます。
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
