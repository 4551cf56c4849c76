package domain

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// MarkerFile names the file whose first line identifies the active checkpoint.
	MarkerFile = "checkpoint"
	// MetadataFile is uploaded with every checkpoint.
	MetadataFile = "model_metadata.json"
)

// ErrCheckpointFormat reports a checkpoint marker that is missing, unreadable
// or carries no checkpoint number.
var ErrCheckpointFormat = errors.New("invalid checkpoint marker")

var digitRun = regexp.MustCompile(`\d+`)

// Checkpoint is the numeric identifier shared by every file of one snapshot.
type Checkpoint string

// ParseCheckpoint returns the first run of decimal digits in line.
func ParseCheckpoint(line string) (Checkpoint, error) {
	id := digitRun.FindString(line)
	if id == "" {
		return "", fmt.Errorf("%w: no digits in %q", ErrCheckpointFormat, line)
	}
	return Checkpoint(id), nil
}

func (c Checkpoint) String() string {
	return string(c)
}
