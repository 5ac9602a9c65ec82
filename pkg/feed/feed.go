package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/shouni/go-url-check/pkg/httpclient"
	"github.com/shouni/go-url-check/pkg/urlfile"
)

// Parserが依存すべきインターフェース
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (*httpclient.Page, int, error)
}

// Parser は、RSS/Atomフィードの取得とパースを担当します。
type Parser struct {
	client Fetcher // インターフェースに依存
}

// NewParser は新しい Parser インスタンスを初期化し、依存関係を注入します。
// *httpclient.Client は Fetcher インターフェースを満たしているため、そのまま代入可能です。
func NewParser(client Fetcher) *Parser {
	return &Parser{client: client}
}

// FetchAndParse は指定されたURLからフィードを取得し、パースします。
func (p *Parser) FetchAndParse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	page, _, err := p.client.FetchPage(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得失敗 (URL: %s): %w", feedURL, err)
	}
	if page.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("フィードの取得失敗 (URL: %s): ステータスコード %d", feedURL, page.StatusCode)
	}

	fp := gofeed.NewParser()
	parsedFeed, parseErr := fp.Parse(bytes.NewReader(page.Body))
	if parseErr != nil {
		return nil, fmt.Errorf("フィードのパース失敗 (URL: %s): %w", feedURL, parseErr)
	}
	return parsedFeed, nil
}

// LinkSource は、リンクのリストを提供できる任意の型を表します。
// このインターフェースが抽象化の境界線となります。
type LinkSource interface {
	GetLinks() []string
}

// FeedAdapter は gofeed.Feed を LinkSource に適合させるためのアダプターです。
// gofeed.Feed の具体的な構造への依存を内部に閉じ込めます。
type FeedAdapter struct {
	*gofeed.Feed
}

// NewFeedAdapter は gofeed.Feed から新しいアダプターを作成します。
func NewFeedAdapter(feed *gofeed.Feed) *FeedAdapter {
	return &FeedAdapter{Feed: feed}
}

// GetLinks は LinkSource インターフェースを満たし、gofeed.Feed からリンクを抽出します。
func (a *FeedAdapter) GetLinks() []string {
	if a.Feed == nil || len(a.Items) == 0 {
		return []string{}
	}

	urls := make([]string, 0, len(a.Items))
	for _, item := range a.Items {
		// リンクが存在し、空文字列ではないことを確認
		if item.Link != "" {
			urls = append(urls, item.Link)
		}
	}
	return urls
}

// Entries は、LinkSource の各リンクをチェック対象の urlfile.Entry に変換します。
// 入力ファイルの行番号に相当する値として、1始まりのアイテム番号を使用します。
func Entries(source LinkSource) []urlfile.Entry {
	if source == nil {
		return nil
	}

	links := source.GetLinks()
	entries := make([]urlfile.Entry, 0, len(links))
	for i, link := range links {
		entries = append(entries, urlfile.Entry{
			Line: i + 1,
			Raw:  link,
			URL:  urlfile.EnsureScheme(link),
		})
	}
	return entries
}
