package domain

import (
	"fmt"
	"sort"
	"strings"
)

// RemoteError wraps a failed call against the object store.
type RemoteError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func NewRemoteError(op, bucket, key string, err error) *RemoteError {
	return &RemoteError{Op: op, Bucket: bucket, Key: key, Err: err}
}

func (e *RemoteError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// DeleteError lists keys the backend refused to delete within an otherwise
// successful batch request.
type DeleteError struct {
	Bucket string
	Failed map[string]string // key -> backend message
}

func (e *DeleteError) Error() string {
	keys := make([]string, 0, len(e.Failed))
	for key, msg := range e.Failed {
		keys = append(keys, fmt.Sprintf("%s (%s)", key, msg))
	}
	sort.Strings(keys)
	return fmt.Sprintf("delete %s: %d key(s) not deleted: %s",
		e.Bucket, len(e.Failed), strings.Join(keys, ", "))
}
