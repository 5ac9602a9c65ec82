package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Title は、HTMLボディから最初の <title> 要素の内容を抽出します。
//
// タグ名の大文字小文字は区別されず、HTMLエンティティはデコードされ、
// 前後の空白はトリムされます。title要素が存在しない場合や解析に
// 失敗した場合は空文字列を返します。タイトルの欠如はエラーではありません。
func Title(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// IsHTML は、Content-Typeヘッダーの値がHTMLを示すかどうかを判定します。
// ヘッダーを返さないサーバーも存在するため、空の値はHTMLとして扱います。
func IsHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "text/html")
}
