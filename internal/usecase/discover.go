package usecase

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/semmidev/ckptsync/internal/domain"
)

// ReadCheckpoint returns the checkpoint named on the first line of the marker
// file in dir. Any failure to read the marker wraps domain.ErrCheckpointFormat.
func ReadCheckpoint(dir string) (domain.Checkpoint, error) {
	markerPath := filepath.Join(dir, domain.MarkerFile)

	file, err := os.Open(markerPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCheckpointFormat, err)
	}
	defer file.Close()

	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrCheckpointFormat, markerPath, err)
	}

	return domain.ParseCheckpoint(line)
}

// DiscoverFiles returns the marker and metadata files followed by every file
// in dir whose name contains ckpt, in lexical order.
func DiscoverFiles(dir string, ckpt domain.Checkpoint) ([]string, error) {
	files := []string{
		filepath.Join(dir, domain.MarkerFile),
		filepath.Join(dir, domain.MetadataFile),
	}
	seen := map[string]bool{
		domain.MarkerFile:   true,
		domain.MetadataFile: true,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || seen[name] {
			continue
		}
		if !strings.Contains(name, ckpt.String()) {
			continue
		}
		seen[name] = true
		files = append(files, filepath.Join(dir, name))
	}

	return files, nil
}

// RemoteKey maps a local file to its key under prefix.
func RemoteKey(prefix, localPath string) string {
	return path.Join(prefix, "model", filepath.Base(localPath))
}
