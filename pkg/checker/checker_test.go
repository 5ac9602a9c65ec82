package checker

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-url-check/pkg/httpclient"
	"github.com/shouni/go-url-check/pkg/report"
	"github.com/shouni/go-url-check/pkg/types"
	"github.com/shouni/go-url-check/pkg/urlfile"
)

// stubFetcher は、固定の結果を返す httpclient.Fetcher の実装です。
type stubFetcher struct {
	page     *httpclient.Page
	attempts int
	err      error
}

func (s stubFetcher) FetchPage(ctx context.Context, url string) (*httpclient.Page, int, error) {
	return s.page, s.attempts, s.err
}

func TestCheckOne(t *testing.T) {
	entry := urlfile.Entry{Line: 3, Raw: "example.com", URL: "https://example.com"}

	t.Run("title_extracted_for_html", func(t *testing.T) {
		c := New(stubFetcher{
			page: &httpclient.Page{
				StatusCode:  200,
				ContentType: "text/html; charset=utf-8",
				Body:        []byte(`<html><head><title> Hello </title></head></html>`),
			},
			attempts: 1,
		}, report.New(&bytes.Buffer{}), 0)

		res := c.checkOne(context.Background(), entry)

		assert.True(t, res.Received())
		assert.Equal(t, 3, res.Line)
		assert.Equal(t, 200, res.StatusCode)
		assert.Equal(t, "Hello", res.Title)
		assert.Equal(t, 1, res.Attempts)
	})

	t.Run("non_html_skips_title_extraction", func(t *testing.T) {
		c := New(stubFetcher{
			page: &httpclient.Page{
				StatusCode:  200,
				ContentType: "application/json",
				Body:        []byte(`{"title": "<title>Nope</title>"}`),
			},
			attempts: 1,
		}, report.New(&bytes.Buffer{}), 0)

		res := c.checkOne(context.Background(), entry)

		assert.True(t, res.Received())
		assert.Empty(t, res.Title)
		assert.Equal(t, "application/json", res.ContentType)
	})

	t.Run("missing_title_is_not_an_error", func(t *testing.T) {
		c := New(stubFetcher{
			page:     &httpclient.Page{StatusCode: 200, ContentType: "text/html", Body: []byte(`<html><body></body></html>`)},
			attempts: 1,
		}, report.New(&bytes.Buffer{}), 0)

		res := c.checkOne(context.Background(), entry)

		assert.True(t, res.Received())
		assert.Empty(t, res.Title)
	})

	t.Run("network_failure_records_error", func(t *testing.T) {
		c := New(stubFetcher{
			attempts: 3,
			err:      errors.New("接続できませんでした"),
		}, report.New(&bytes.Buffer{}), 0)

		res := c.checkOne(context.Background(), entry)

		assert.False(t, res.Received())
		assert.Equal(t, 0, res.StatusCode)
		assert.Equal(t, "接続できませんでした", res.Err)
		assert.Equal(t, 3, res.Attempts)
	})
}

// TestRunWithLiveServers は、実サーバーに対するエンドツーエンドの動作を確認します。
func TestRunWithLiveServers(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Hello</title></head><body>hi</body></html>`))
	}))
	defer okServer.Close()

	notFoundServer := httptest.NewServer(http.NotFoundHandler())
	defer notFoundServer.Close()

	// 接続拒否を誘発するため、起動後すぐに停止したサーバーのURLを使用する
	deadServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := deadServer.URL
	deadServer.Close()

	entries := []urlfile.Entry{
		{Line: 1, Raw: okServer.URL, URL: okServer.URL},
		{Line: 2, Raw: notFoundServer.URL, URL: notFoundServer.URL},
		{Line: 4, Raw: deadURL, URL: deadURL},
		{Line: 7, Raw: deadURL, URL: deadURL},
	}

	var buf bytes.Buffer
	reporter := report.New(&buf)
	client := httpclient.New(time.Second).WithMaxAttempts(2).WithRetryInterval(time.Millisecond)

	sum := New(client, reporter, 0).Run(context.Background(), entries)

	// 404はレスポンス受信として成功に数え、接続拒否の2件のみが失敗となる
	require.Equal(t, types.Summary{Success: 2, Total: 4}, sum)

	out := buf.String()
	assert.Contains(t, out, "有効なURLを 4 件")
	assert.Contains(t, out, "[1行目] "+okServer.URL)
	assert.Contains(t, out, "ステータスコード: 200")
	assert.Contains(t, out, "タイトル: Hello")
	assert.Contains(t, out, "ステータスコード: 404")
	assert.Contains(t, out, "[4行目] "+deadURL)
	assert.Contains(t, out, "試行回数: 2")
}

// TestRunAppliesDelayBetweenURLs は、連続するURL間のスロットルを確認します。
func TestRunAppliesDelayBetweenURLs(t *testing.T) {
	entries := []urlfile.Entry{
		{Line: 1, URL: "https://example.com/a"},
		{Line: 2, URL: "https://example.com/b"},
		{Line: 3, URL: "https://example.com/c"},
	}

	fetcher := stubFetcher{page: &httpclient.Page{StatusCode: 200, ContentType: "text/html"}, attempts: 1}
	delay := 30 * time.Millisecond

	start := time.Now()
	sum := New(fetcher, report.New(&bytes.Buffer{}), delay).Run(context.Background(), entries)
	elapsed := time.Since(start)

	assert.Equal(t, types.Summary{Success: 3, Total: 3}, sum)
	// 待機は先頭の前ではなくURL間にのみ入るため、2回分以上の経過時間となる
	assert.GreaterOrEqual(t, elapsed, 2*delay)
}
