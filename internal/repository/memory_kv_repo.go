package repository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// memoryMaxCost はメモリKVリポジトリが保持する値の合計バイト数の上限。
const memoryMaxCost = 64 << 20

// MemoryKVRepo はristrettoキャッシュを使用したプロセス内KVリポジトリ。
// プロセス終了で内容は失われる。容量を超えた場合は古い値から追い出される。
type MemoryKVRepo struct {
	cache *ristretto.Cache[string, []byte]
}

// NewMemoryKVRepo はMemoryKVRepoを生成する。
func NewMemoryKVRepo() (*MemoryKVRepo, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 10000, // 頻度を追跡するキー数
		MaxCost:     memoryMaxCost,
		BufferItems: 64, // Getバッファあたりのキー数
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory store: %w", err)
	}
	return &MemoryKVRepo{cache: cache}, nil
}

// Get は指定キーの値を取得する。見つからない場合はnil, nilを返す。
func (r *MemoryKVRepo) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := r.cache.Get(key)
	if !ok {
		return nil, nil
	}
	return bytes.Clone(value), nil
}

// Put は指定キーに値を保存する。
// ristrettoの書き込みは非同期のため、Waitで反映を待ってから返る。
func (r *MemoryKVRepo) Put(_ context.Context, key string, value []byte) error {
	if !r.cache.Set(key, bytes.Clone(value), int64(len(value))+1) {
		return fmt.Errorf("failed to put kv entry: rejected by cache")
	}
	r.cache.Wait()
	return nil
}

// Delete は指定キーを削除する。
func (r *MemoryKVRepo) Delete(_ context.Context, key string) error {
	r.cache.Del(key)
	r.cache.Wait()
	return nil
}

// Close はキャッシュのバックグラウンド処理を停止する。
func (r *MemoryKVRepo) Close() {
	r.cache.Close()
}

// compile-time interface check
var _ KVRepository = (*MemoryKVRepo)(nil)
