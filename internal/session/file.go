package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileEntry は資格情報ファイルに保存される1エントリ。
type fileEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileStore はJSONファイルに資格情報を永続化するCredentialStore。
// CLIで使用する。ファイルは0600で作成し、書き込みは一時ファイル経由で置き換える。
type FileStore struct {
	path   string
	now    func() time.Time
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore はFileStoreを生成する。
func NewFileStore(path string, now func() time.Time, logger *slog.Logger) *FileStore {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		now:    now,
		logger: logger,
	}
}

// Get は期限内の値を返す。ファイルが無い・読めない場合は存在しない扱い。
func (f *FileStore) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		f.logger.Warn("failed to read credentials file",
			slog.String("path", f.path),
			slog.String("error", err.Error()),
		)
		return "", false
	}

	e, ok := entries[key]
	if !ok || !f.now().Before(e.ExpiresAt) {
		return "", false
	}
	return e.Value, true
}

// Set は値を有効期限付きで保存する。
func (f *FileStore) Set(key, value string, maxAge time.Duration) {
	f.update(func(entries map[string]fileEntry) {
		if maxAge <= 0 {
			delete(entries, key)
			return
		}
		entries[key] = fileEntry{Value: value, ExpiresAt: f.now().Add(maxAge)}
	})
}

// Delete は値を削除する。
func (f *FileStore) Delete(key string) {
	f.update(func(entries map[string]fileEntry) {
		delete(entries, key)
	})
}

func (f *FileStore) update(mutate func(map[string]fileEntry)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		// 壊れたファイルは作り直す
		f.logger.Warn("discarding unreadable credentials file",
			slog.String("path", f.path),
			slog.String("error", err.Error()),
		)
		entries = make(map[string]fileEntry)
	}

	mutate(entries)

	// 期限切れエントリは書き戻さない
	now := f.now()
	for k, e := range entries {
		if !now.Before(e.ExpiresAt) {
			delete(entries, k)
		}
	}

	if err := f.save(entries); err != nil {
		f.logger.Error("failed to write credentials file",
			slog.String("path", f.path),
			slog.String("error", err.Error()),
		)
	}
}

func (f *FileStore) load() (map[string]fileEntry, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]fileEntry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	entries := make(map[string]fileEntry)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	return entries, nil
}

func (f *FileStore) save(entries map[string]fileEntry) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
