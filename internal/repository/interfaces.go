// Package repository はデータ永続化のインターフェースと実装を提供する。
package repository

import "context"

// KVRepository はキーとJSON値の組を永続化するインターフェース。
// 値の解釈は呼び出し側が行い、リポジトリはバイト列として保存する。
type KVRepository interface {
	// Get は指定キーの値を取得する。見つからない場合はnil, nilを返す。
	Get(ctx context.Context, key string) ([]byte, error)

	// Put は指定キーに値を保存する。既存の値は上書きする。
	Put(ctx context.Context, key string, value []byte) error

	// Delete は指定キーを削除する。存在しない場合も成功とする。
	Delete(ctx context.Context, key string) error
}
