package main

import (
	"github.com/shouni/go-url-check/cmd"
)

// main 関数は、CLIのエントリポイントです。エラーハンドリングは cmd.Execute に一元化しています。
func main() {
	cmd.Execute()
}
