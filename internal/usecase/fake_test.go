package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

type fakeStore struct {
	mu          sync.Mutex
	objects     map[string]string // key -> local path it was uploaded from
	listErr     error
	deleteErr   error
	uploadErrs  map[string]error // local base name -> error
	deleteCalls [][]string
	uploadCalls []string
}

func newFakeStore(keys ...string) *fakeStore {
	store := &fakeStore{
		objects:    make(map[string]string),
		uploadErrs: make(map[string]error),
	}
	for _, key := range keys {
		store.objects[key] = ""
	}
	return store
}

func (f *fakeStore) List(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStore) DeleteBatch(ctx context.Context, keys []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls = append(f.deleteCalls, append([]string(nil), keys...))
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	for _, key := range keys {
		delete(f.objects, key)
	}
	return len(keys), nil
}

func (f *fakeStore) Upload(ctx context.Context, localPath string, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploadCalls = append(f.uploadCalls, key)
	if err := f.uploadErrs[filepath.Base(localPath)]; err != nil {
		return err
	}
	f.objects[key] = localPath
	return nil
}

func (f *fakeStore) Describe() string {
	return "fake://bucket"
}

func (f *fakeStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
	errors   []string
}

func (l *recordingLogger) Debugf(template string, args ...interface{}) {}

func (l *recordingLogger) Infof(template string, args ...interface{}) {}

func (l *recordingLogger) Warnf(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Errorf(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(template, args...))
}
