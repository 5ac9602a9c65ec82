package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-url-check/pkg/checker"
	"github.com/shouni/go-url-check/pkg/httpclient"
	"github.com/shouni/go-url-check/pkg/report"
	"github.com/shouni/go-url-check/pkg/urlfile"
)

// --- グローバル定数 ---

const (
	appName           = "url-check"
	defaultTimeoutSec = 10  // 秒
	defaultMaxRetries = 3   // 各URLへの最大試行回数
	defaultDelaySec   = 1.0 // 秒
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int     // --timeout タイムアウト
	MaxRetries int     // --retries 最大試行回数
	DelaySec   float64 // --delay リクエスト間の待機時間
	OutputPath string  // --output CSV出力先
}

var Flags AppFlags                   // アプリケーション固有フラグにアクセスするためのグローバル変数
var globalFetcher *httpclient.Client // 全コマンドで共有するフェッチャー

// 💡 ルートコマンドの定義: URLファイルを位置引数として受け取り、そのままチェックを実行する
var rootCmd = &cobra.Command{
	Use:   appName + " <URLファイル>",
	Short: "URLリストの各URLからステータスコードとページタイトルを取得します",
	Long: `テキストファイルからURLリスト (1行1URL) を読み込み、各URLへ順番に
HTTP GETを発行してステータスコードとページタイトルを取得します。
結果はコンソールに表示され、--output を指定するとCSVファイルにも保存されます。`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: initAppPreRunE,
	RunE:              runCheck,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// --- 初期化とロジック ---

// initAppPreRunE は、フラグの検証と共有フェッチャーの初期化を行います。
// サブコマンドの実行前にも呼び出されます。
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	if Flags.MaxRetries <= 0 {
		return fmt.Errorf("試行回数は1以上を指定してください: %d", Flags.MaxRetries)
	}
	if Flags.DelaySec < 0 {
		return fmt.Errorf("待機時間は0以上を指定してください: %g", Flags.DelaySec)
	}

	timeout := time.Duration(Flags.TimeoutSec) * time.Second

	// 共有フェッチャーの初期化。
	// リトライ間隔には、URL間の待機時間と同じ --delay の値を使用する。
	globalFetcher = httpclient.New(timeout).
		WithMaxAttempts(uint64(Flags.MaxRetries)).
		WithRetryInterval(delayDuration())

	return nil
}

// GetGlobalFetcher は、初期化された共有フェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() *httpclient.Client {
	return globalFetcher
}

// delayDuration は、--delay の秒数値を time.Duration に変換します。
func delayDuration() time.Duration {
	return time.Duration(Flags.DelaySec * float64(time.Second))
}

// newReporter は、コンソール用のReporterを生成し、--output が指定されていれば
// CSV出力を設定します。CSVを開けない場合は警告を出し、コンソール出力のみで続行します。
func newReporter() *report.Reporter {
	r := report.New(os.Stdout)
	if Flags.OutputPath != "" {
		if err := r.WithCSV(Flags.OutputPath); err != nil {
			log.Printf("警告: %v", err)
		}
	}
	return r
}

// runCheck は、URLファイルの読み込みからレポート出力までのパイプラインを実行します。
// 個々のURLの失敗は終了コードに影響しません。致命的なエラー (ファイル不在、
// 文字コード判定失敗) のみが非ゼロ終了となります。
func runCheck(cmd *cobra.Command, args []string) error {
	entries, err := urlfile.Load(args[0])
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("ファイルに有効なURLがありません: %s", args[0])
	}

	reporter := newReporter()
	chk := checker.New(GetGlobalFetcher(), reporter, delayDuration())

	sum := chk.Run(cmd.Context(), entries)

	if err := reporter.Finish(sum); err != nil {
		// CSVの書き込み失敗は、完了済みのコンソール出力を無効にしないため警告に留める
		log.Printf("警告: %v", err)
	}

	return nil
}

// --- エントリポイント ---

func init() {
	rootCmd.PersistentFlags().IntVarP(&Flags.TimeoutSec, "timeout", "t", defaultTimeoutSec,
		"HTTPリクエストのタイムアウト時間（秒）")
	rootCmd.PersistentFlags().IntVarP(&Flags.MaxRetries, "retries", "r", defaultMaxRetries,
		"各URLへの最大試行回数")
	rootCmd.PersistentFlags().Float64VarP(&Flags.DelaySec, "delay", "d", defaultDelaySec,
		"リクエスト間およびリトライ間の待機時間（秒）")
	rootCmd.PersistentFlags().StringVarP(&Flags.OutputPath, "output", "o", "",
		"結果を保存するCSVファイルのパス")

	rootCmd.AddCommand(feedCmd)
}

// Execute は、rootCmd を実行するメイン関数です。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("アプリケーションエラー: %v", err)
	}
}
