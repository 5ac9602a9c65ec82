package urlfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// ErrEncoding は、対応しているどの文字コードでも入力ファイルを
// デコードできなかったことを示します。
var ErrEncoding = errors.New("対応している文字コードでデコードできませんでした")

// Entry は、入力ファイルの空行でない1行から生成された正規化済みURLです。
// 正規化後は不変として扱います。
type Entry struct {
	Line int    // 元ファイル上の行番号 (1始まり)
	Raw  string // トリム済みの原文
	URL  string // スキーム補完済みのURL
}

// fallbackEncodings は、UTF-8としてデコードできなかった場合に試す文字コードです。
// 順序は試行順を表します。
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"GBK", simplifiedchinese.GBK},
	{"Shift_JIS", japanese.ShiftJIS},
	{"EUC-JP", japanese.EUCJP},
}

// Load は、URLリストファイルを読み込み、空行を除いた各行を Entry として返します。
//
// ファイルはまずUTF-8として解釈し、失敗した場合は fallbackEncodings の
// 各文字コードを順に試します。ファイルが存在しない場合と、どの文字コードでも
// デコードできない場合は、それぞれ致命的なエラーを返します。
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("URLファイルを読み込めませんでした (パス: %s): %w", path, err)
	}

	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("URLファイルの文字コード判定に失敗しました (パス: %s): %w", path, err)
	}

	return parseLines(text), nil
}

// decode は、バイト列をUTF-8文字列に変換します。
func decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, fe := range fallbackEncodings {
		decoded, err := fe.enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		// x/text のデコーダーは不正なバイトをエラーにせず U+FFFD に置換するため、
		// 置換文字の有無でデコードの成否を判定する
		if strings.ContainsRune(string(decoded), utf8.RuneError) {
			continue
		}
		return string(decoded), nil
	}

	return "", ErrEncoding
}

// parseLines は、デコード済みテキストを行に分割し、空行を除いた各行から
// 行番号付きの Entry を生成します。行番号は元ファイルの1始まりの位置です。
func parseLines(text string) []Entry {
	var entries []Entry

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		entries = append(entries, Entry{
			Line: i + 1,
			Raw:  trimmed,
			URL:  EnsureScheme(trimmed),
		})
	}

	return entries
}
