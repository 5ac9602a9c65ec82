package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// リトライ関連のデフォルト定数
	DefaultMaxAttempts = 3               // 最大試行回数 (初回を含む)
	DefaultInterval    = 1 * time.Second // 試行間の固定待機時間
)

// Operation はリトライ可能な処理を表す関数です。成功時は nil を返します。
type Operation func() error

// ShouldRetryFunc はエラーを受け取り、そのエラーがリトライ可能かどうかを判定する関数です。
type ShouldRetryFunc func(error) bool

// Config はリトライ動作を設定するための構造体です。
// このツールのリトライポリシーは「固定回数・固定間隔」であり、
// 指数バックオフやジッターは使用しません。
type Config struct {
	MaxAttempts uint64        // 初回を含む最大試行回数
	Interval    time.Duration // 試行間の固定待機時間
}

// DefaultConfig は推奨されるデフォルト設定を返します。
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
	}
}

// newBackOffPolicy は、固定間隔・回数上限付きのバックオフポリシーを生成します。
// backoff.WithMaxRetries の引数は「リトライ回数」(初回を除く) のため、
// MaxAttempts から 1 を引いた値を渡します。
func newBackOffPolicy(ctx context.Context, cfg Config) backoff.BackOffContext {
	maxRetries := uint64(0)
	if cfg.MaxAttempts > 0 {
		maxRetries = cfg.MaxAttempts - 1
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.Interval), maxRetries)
	return backoff.WithContext(bo, ctx)
}

// Do は固定間隔とカスタムエラー判定を使用して操作をリトライします。
// Configを引数で受け取ることで、特定のクライアント構造体への依存を排除しています。
func Do(ctx context.Context, cfg Config, operationName string, op Operation, shouldRetryFn ShouldRetryFunc) error {

	bo := newBackOffPolicy(ctx, cfg)

	var lastErr error

	// リトライ処理内で実行される実際の操作
	retryableOp := func() error {
		err := op()

		if err == nil {
			return nil // 成功
		}

		// 外部から渡された判定関数を使用
		if shouldRetryFn(err) {
			lastErr = err
			return lastErr // リトライ対象
		}

		lastErr = err
		return backoff.Permanent(lastErr) // 永続エラーとしてラップし、即時終了
	}

	err := backoff.Retry(retryableOp, bo)

	if err != nil {
		// コンテキストキャンセル/タイムアウトのエラー処理
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%sに失敗しました: コンテキストタイムアウト/キャンセル: %w", operationName, err)
		}

		// backoff.Permanent でラップされたエラーから元のエラーを取得
		var pErr *backoff.PermanentError
		if errors.As(err, &pErr) {
			return pErr.Err // 永続エラーはそのまま返す
		}

		// リトライ上限到達エラー
		return fmt.Errorf("%sに失敗しました: 最大試行回数 (%d回) に到達。最終エラー: %w", operationName, cfg.MaxAttempts, lastErr)
	}
	return nil
}
