package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/semmidev/ckptsync/internal/domain"
)

// LocalStorage keeps objects as files under {root}/{bucket}/{key}.
type LocalStorage struct {
	fs       billy.Filesystem
	basePath string
	bucket   string
}

var _ domain.ObjectStore = (*LocalStorage)(nil)

func NewLocal(root, bucket string) (*LocalStorage, error) {
	basePath := filepath.Join(root, bucket)
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory: %w", err)
	}
	return newLocal(osfs.New(basePath), basePath, bucket), nil
}

func newLocal(fsys billy.Filesystem, basePath, bucket string) *LocalStorage {
	return &LocalStorage{fs: fsys, basePath: basePath, bucket: bucket}
}

func (l *LocalStorage) Upload(ctx context.Context, localPath string, key string) error {
	source, err := os.Open(localPath)
	if err != nil {
		return domain.NewRemoteError("upload", l.bucket, key, fmt.Errorf("failed to open source: %w", err))
	}
	defer source.Close()

	if err := l.fs.MkdirAll(filepath.Dir(key), 0755); err != nil {
		return domain.NewRemoteError("upload", l.bucket, key, fmt.Errorf("failed to create dest dir: %w", err))
	}

	dest, err := l.fs.Create(key)
	if err != nil {
		return domain.NewRemoteError("upload", l.bucket, key, fmt.Errorf("failed to create dest: %w", err))
	}
	defer dest.Close()

	if _, err := io.Copy(dest, source); err != nil {
		return domain.NewRemoteError("upload", l.bucket, key, fmt.Errorf("failed to copy: %w", err))
	}

	return nil
}

// List walks the bucket and returns keys that begin with prefix, sorted.
func (l *LocalStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := util.Walk(l.fs, ".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		key := filepath.ToSlash(path)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewRemoteError("list", l.bucket, "", fmt.Errorf("failed to read directory: %w", err))
	}

	sort.Strings(keys)
	return keys, nil
}

func (l *LocalStorage) DeleteBatch(ctx context.Context, keys []string) (int, error) {
	deleted := 0
	failed := make(map[string]string)

	for _, key := range keys {
		if err := l.fs.Remove(key); err != nil {
			failed[key] = err.Error()
			continue
		}
		deleted++
	}

	if len(failed) > 0 {
		return deleted, &domain.DeleteError{Bucket: l.bucket, Failed: failed}
	}
	return deleted, nil
}

func (l *LocalStorage) Describe() string {
	return "file://" + filepath.ToSlash(l.basePath)
}

// GetPath returns the on-disk location of key.
func (l *LocalStorage) GetPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}
