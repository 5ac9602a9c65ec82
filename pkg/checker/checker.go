package checker

import (
	"context"
	"time"

	"github.com/shouni/go-url-check/pkg/extract"
	"github.com/shouni/go-url-check/pkg/httpclient"
	"github.com/shouni/go-url-check/pkg/report"
	"github.com/shouni/go-url-check/pkg/types"
	"github.com/shouni/go-url-check/pkg/urlfile"
)

// Checker は、URLエントリの列をファイル順に処理するドライバーです。
// リクエスト間の意図的なスリープで実行を逐次化しているため、並列フェッチは行いません。
type Checker struct {
	fetcher  httpclient.Fetcher
	reporter *report.Reporter
	delay    time.Duration
}

// New は、新しいCheckerを生成します。delay は連続するURL間の待機時間です。
func New(fetcher httpclient.Fetcher, reporter *report.Reporter, delay time.Duration) *Checker {
	return &Checker{
		fetcher:  fetcher,
		reporter: reporter,
		delay:    delay,
	}
}

// Run は、全エントリを順に処理し、集計を返します。
//
// 個々のURLの失敗は結果として記録されるのみで、バッチ全体を停止させる
// ことはありません。成功とは「レスポンスを受信できたこと」であり、
// ステータスコードの値は問いません。
func (c *Checker) Run(ctx context.Context, entries []urlfile.Entry) types.Summary {
	sum := types.Summary{Total: len(entries)}

	c.reporter.Header(len(entries))

	for i, entry := range entries {
		// リクエスト間の固定スロットル (先頭のURLの前には適用しない)
		if i > 0 && c.delay > 0 {
			time.Sleep(c.delay)
		}

		res := c.checkOne(ctx, entry)
		if res.Received() {
			sum.Success++
		}
		c.reporter.Report(res)
	}

	return sum
}

// checkOne は、1件のエントリに対してフェッチとタイトル抽出を行います。
func (c *Checker) checkOne(ctx context.Context, entry urlfile.Entry) types.CheckResult {
	res := types.CheckResult{
		Line: entry.Line,
		URL:  entry.URL,
	}

	page, attempts, err := c.fetcher.FetchPage(ctx, entry.URL)
	res.Attempts = attempts
	if err != nil {
		res.Err = err.Error()
		return res
	}

	res.StatusCode = page.StatusCode
	res.ContentType = page.ContentType

	// タイトル抽出はHTMLレスポンスに対してのみ行う。
	// 抽出の失敗はタイトルが空になるだけで、URLの結果には影響しない。
	if extract.IsHTML(page.ContentType) {
		res.Title = extract.Title(page.Body)
	}

	return res
}
