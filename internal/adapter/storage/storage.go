package storage

import (
	"context"
	"fmt"

	"github.com/semmidev/ckptsync/internal/config"
	"github.com/semmidev/ckptsync/internal/domain"
)

// New returns the backend selected by cfg.Storage.Type, bound to the
// uploader bucket.
func New(ctx context.Context, cfg *config.Config) (domain.ObjectStore, error) {
	bucket := cfg.Uploader.Bucket

	var (
		store domain.ObjectStore
		err   error
	)

	switch cfg.Storage.Type {
	case config.StorageS3:
		store, err = asStore(NewS3(ctx, &cfg.Storage, bucket))
	case config.StorageMinio:
		store, err = asStore(NewMinio(&cfg.Storage, bucket))
	case config.StorageLocal:
		store, err = asStore(NewLocal(cfg.Storage.LocalRoot, bucket))
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Type, err)
	}

	return store, nil
}

// asStore keeps a failed constructor from yielding a typed nil interface.
func asStore[T domain.ObjectStore](store T, err error) (domain.ObjectStore, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}
