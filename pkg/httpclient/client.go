package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shouni/go-url-check/pkg/retry"
)

const (
	// HTTPクライアント関連の定数
	DefaultHTTPTimeout = 10 * time.Second
	MaxBodySize        = int64(10 * 1024 * 1024) // 10MB: レスポンスボディの最大読み込みサイズ

	// サイトからのブロックを避けるためのUser-Agent
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
)

// Page は、1回のGETで受信したHTTPレスポンスの要約です。
// ステータスコードの値にかかわらず、レスポンスを受信できた時点で Page が生成されます。
type Page struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher は、URLからレスポンスを取得する機能のインターフェースを定義します。
// 上位のパッケージ (checker, feed) は、この抽象に依存します。
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (page *Page, attempts int, err error)
}

// Client はHTTPリクエストと固定間隔リトライロジックを管理します。
type Client struct {
	httpClient  *http.Client
	retryConfig retry.Config
}

// New は、新しいClientを生成します。
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryConfig: retry.DefaultConfig(),
	}
}

// WithMaxAttempts は最大試行回数 (初回を含む) を設定します。
func (c *Client) WithMaxAttempts(max uint64) *Client {
	c.retryConfig.MaxAttempts = max
	return c
}

// WithRetryInterval は試行間の固定待機時間を設定します。
func (c *Client) WithRetryInterval(interval time.Duration) *Client {
	c.retryConfig.Interval = interval
	return c
}

// addCommonHeaders は共通のHTTPヘッダーを設定します。
func (c *Client) addCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
}

// FetchPage は指定されたURLにGETリクエストを送り、受信したレスポンスを返します。
//
// 何らかのHTTPレスポンスを受信できた時点で成功とみなし、ステータスコード
// (4xx/5xx を含む) によるリトライは行いません。リトライの対象となるのは
// タイムアウト・接続拒否・名前解決失敗などのネットワークレベルの失敗のみです。
// 戻り値 attempts は、実際に行ったリクエスト試行回数です。
func (c *Client) FetchPage(ctx context.Context, url string) (*Page, int, error) {
	var page *Page
	attempts := 0

	op := func() error {
		attempts++
		var fetchErr error
		page, fetchErr = c.doFetch(ctx, url)
		return fetchErr
	}

	err := retry.Do(
		ctx,
		c.retryConfig,
		fmt.Sprintf("URL(%s)のフェッチ", url),
		op,
		isNetworkRetryableError,
	)

	if err != nil {
		return nil, attempts, err
	}
	return page, attempts, nil
}

// doFetch は実際の一度のHTTP GETリクエストを実行し、ボディを読み込みます。
func (c *Client) doFetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GETリクエスト作成に失敗しました: %w", err)
	}
	c.addCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストに失敗しました (ネットワーク/接続エラー): %w", err)
	}
	defer resp.Body.Close()

	// ボディの読み込み失敗はレスポンス受信後のエラーであり、リトライはしない。
	// ステータスコードは確定しているため、ボディなしの Page として扱う。
	limitedReader := io.LimitReader(resp.Body, MaxBodySize)
	bodyBytes, readErr := io.ReadAll(limitedReader)
	if readErr != nil {
		bodyBytes = nil
	}

	return &Page{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        bodyBytes,
	}, nil
}

// isNetworkRetryableError はエラーがリトライ対象かどうかを判定します。
// この関数は retry.ShouldRetryFunc 型のシグネチャを満たします。
func isNetworkRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// 呼び出し側のキャンセルは再試行しても成功しない
	if errors.Is(err, context.Canceled) {
		return false
	}

	// doFetch がエラーを返すのはレスポンスを受信できなかった場合のみであり、
	// タイムアウトを含めすべてリトライ対象とする
	return true
}
