package urlfile

import (
	"strings"
)

// EnsureScheme は、URL文字列にスキームが存在しない場合に https:// を補完します。
// すでに http:// または https:// で始まる場合は、そのまま返します。
//
// これ以上の形式検証は行いません。不正なホスト名はそのまま通過し、
// フェッチ時にネットワークエラーとして扱われます。
func EnsureScheme(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}
