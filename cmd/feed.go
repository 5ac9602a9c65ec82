package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/shouni/go-url-check/pkg/checker"
	"github.com/shouni/go-url-check/pkg/feed"
	"github.com/shouni/go-url-check/pkg/urlfile"
)

// フィードURLを保持するフラグ変数
var feedURL string

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "RSS/Atomフィードの各記事URLに対して同じチェックを実行します",
	Long: `指定されたURLからRSSまたはAtomフィードを取得し、その全記事リンクに対して
URLファイルの場合と同一のチェック (ステータスコード・タイトル取得) を実行します。
行番号の代わりに、フィード内のアイテム番号が使用されます。`,
	Args: cobra.NoArgs,
	RunE: runFeedCheck,
}

// runFeedCheck は、フィードの取得・解析から記事リンクのチェックまでを実行します。
func runFeedCheck(cmd *cobra.Command, args []string) error {
	fetcher := GetGlobalFetcher()
	parser := feed.NewParser(fetcher)

	target := urlfile.EnsureScheme(feedURL)
	log.Printf("処理対象フィードURL: %s", target)

	parsedFeed, err := parser.FetchAndParse(cmd.Context(), target)
	if err != nil {
		return fmt.Errorf("フィード解析エラー: %w", err)
	}

	entries := feed.Entries(feed.NewFeedAdapter(parsedFeed))
	if len(entries) == 0 {
		return fmt.Errorf("フィードに記事リンクがありません: %s", target)
	}

	fmt.Printf("フィードタイトル: %s\n", parsedFeed.Title)

	reporter := newReporter()
	chk := checker.New(fetcher, reporter, delayDuration())

	sum := chk.Run(cmd.Context(), entries)

	if err := reporter.Finish(sum); err != nil {
		log.Printf("警告: %v", err)
	}

	return nil
}

func init() {
	// サブコマンド固有のフラグ定義
	feedCmd.Flags().StringVarP(&feedURL, "url", "u", "", "チェック対象のフィード (RSS/Atom) URL")

	// URLフラグを必須にする
	feedCmd.MarkFlagRequired("url")
}
