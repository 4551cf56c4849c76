package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/semmidev/ckptsync/internal/domain"
)

type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

type SyncOptions struct {
	LocalPath string
	Prefix    string
	// ContinueOnUploadError keeps uploading the remaining files after a
	// failed upload instead of stopping at the first one.
	ContinueOnUploadError bool
}

// Sync replaces the objects under a prefix with the files of the current
// local checkpoint.
type Sync struct {
	store  domain.ObjectStore
	logger Logger
	opts   SyncOptions
}

func NewSync(store domain.ObjectStore, logger Logger, opts SyncOptions) *Sync {
	opts.Prefix = domain.CleanPrefix(opts.Prefix)
	return &Sync{
		store:  store,
		logger: logger,
		opts:   opts,
	}
}

// Execute runs one cycle: list, delete, discover, upload. A list or delete
// failure is reported but does not stop the upload; a checkpoint failure
// does.
func (uc *Sync) Execute(ctx context.Context) (*domain.CycleResult, error) {
	result := &domain.CycleResult{StartedAt: time.Now()}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
	}()

	uc.logger.Infof("Starting sync of %s into %s", uc.opts.LocalPath, uc.store.Describe())

	result.PruneErr = uc.prune(ctx, result)

	ckpt, err := ReadCheckpoint(uc.opts.LocalPath)
	if err != nil {
		uc.logger.Errorf("Failed to read checkpoint: %v", err)
		return result, errors.Join(result.PruneErr, fmt.Errorf("discover checkpoint: %w", err))
	}
	result.Checkpoint = ckpt

	files, err := DiscoverFiles(uc.opts.LocalPath, ckpt)
	if err != nil {
		return result, errors.Join(result.PruneErr, fmt.Errorf("discover files: %w", err))
	}
	result.Files = files
	uc.logger.Debugf("Checkpoint %s: %d file(s) to upload", ckpt, len(files))

	uploadErr := uc.publish(ctx, result)

	if uploadErr == nil {
		uc.logger.Infof("Model checkpoint %s uploaded to %s", ckpt, uc.store.Describe())
	}
	uc.logger.Infof("A total of %d file(s) were uploaded", result.Uploaded)

	return result, errors.Join(result.PruneErr, uploadErr)
}

func (uc *Sync) prune(ctx context.Context, result *domain.CycleResult) error {
	prefix := uc.opts.Prefix

	keys, err := uc.store.List(ctx, prefix)
	if err != nil {
		uc.logger.Errorf("Failed to list objects under %q: %v", prefix, err)
		return fmt.Errorf("list: %w", err)
	}
	keys = uniqueKeys(keys)
	result.Listed = keys

	if len(keys) == 0 {
		uc.logger.Warnf("No objects found under %q, nothing was deleted", prefix)
		return nil
	}

	deleted, err := uc.store.DeleteBatch(ctx, keys)
	result.Deleted = deleted
	if err != nil {
		uc.logger.Errorf("Failed to delete objects under %q: %v", prefix, err)
		return fmt.Errorf("delete: %w", err)
	}

	uc.logger.Infof("Deleted %d object(s) under %q", deleted, prefix)
	return nil
}

func (uc *Sync) publish(ctx context.Context, result *domain.CycleResult) error {
	var errs []error

	for _, file := range result.Files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		key := RemoteKey(uc.opts.Prefix, file)
		if err := uc.store.Upload(ctx, file, key); err != nil {
			uc.logger.Errorf("Failed to upload %s: %v", filepath.Base(file), err)
			result.Failed = append(result.Failed, file)
			errs = append(errs, fmt.Errorf("upload %s: %w", file, err))
			if !uc.opts.ContinueOnUploadError {
				break
			}
			continue
		}

		result.Uploaded++
		uc.logger.Infof("%s uploaded to %s", filepath.Base(file), key)
	}

	return errors.Join(errs...)
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	unique := keys[:0:0]
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, key)
	}
	return unique
}
