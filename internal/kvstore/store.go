package kvstore

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hitoshi/travelboard/internal/model"
	"github.com/hitoshi/travelboard/internal/repository"
)

// Store はKVRepositoryの上にJSONの読み書きを提供する。
// どのメソッドもエラーを返さない。失敗はWarnログに記録して握りつぶす。
type Store struct {
	repo   repository.KVRepository
	logger *slog.Logger
}

// New はStoreを生成する。loggerがnilの場合はslog.Default()を使用する。
func New(repo repository.KVRepository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{repo: repo, logger: logger}
}

// Load はキーの値をvへデコードする。値が存在し、正しくデコードできた場合のみtrueを返す。
// 破損したJSONは「値なし」として扱う。
func (s *Store) Load(ctx context.Context, key Key, v any) bool {
	raw, err := s.repo.Get(ctx, key.String())
	if err != nil {
		s.warn("load", key, err)
		return false
	}
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.warn("decode", key, err)
		return false
	}
	return true
}

// Save はvをJSONにエンコードしてキーに保存する。失敗した場合は何もしない。
func (s *Store) Save(ctx context.Context, key Key, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.warn("encode", key, err)
		return
	}
	if err := s.repo.Put(ctx, key.String(), raw); err != nil {
		s.warn("save", key, err)
	}
}

// Remove はキーを削除する。失敗した場合は何もしない。
func (s *Store) Remove(ctx context.Context, key Key) {
	if err := s.repo.Delete(ctx, key.String()); err != nil {
		s.warn("remove", key, err)
	}
}

func (s *Store) warn(op string, key Key, err error) {
	storageErr := model.NewStorageError(op, err)
	s.logger.Warn("kv store operation failed",
		slog.String("key", key.String()),
		slog.String("code", storageErr.Code),
		slog.String("error", storageErr.Message),
	)
}
