package domain

import (
	"context"
	"path"
	"strings"
)

// ObjectStore is a bucket-bound view of a remote object store.
type ObjectStore interface {
	// List returns every key that begins with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// DeleteBatch removes keys in one logical batch and reports how many
	// the backend confirmed.
	DeleteBatch(ctx context.Context, keys []string) (int, error)
	Upload(ctx context.Context, localPath string, key string) error
	// Describe names the backend and bucket for logs.
	Describe() string
}

// CleanPrefix returns prefix in the form object keys are written with: no
// leading or trailing slash, no empty, "." or ".." segments. Listing and
// uploading must both use the cleaned form.
func CleanPrefix(prefix string) string {
	return strings.TrimPrefix(path.Clean("/"+prefix), "/")
}
