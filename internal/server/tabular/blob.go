package tabular

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/timesheet/internal/common"
)

// Blob holds the serialized workbook. Load returns common.ErrNotFound when
// nothing has been saved yet.
type Blob interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileBlob keeps the workbook in a local file.
type FileBlob struct {
	Path string
}

func (b FileBlob) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: workbook %s", common.ErrNotFound, b.Path)
		}
		return nil, unavailable(err)
	}
	return data, nil
}

// Save writes to a temporary file next to Path and renames it into place.
func (b FileBlob) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return unavailable(err)
	}

	tmp, err := os.CreateTemp(dir, ".workbook-*.xlsx")
	if err != nil {
		return unavailable(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return unavailable(err)
	}
	if err := tmp.Close(); err != nil {
		return unavailable(err)
	}
	if err := os.Rename(tmp.Name(), b.Path); err != nil {
		return unavailable(err)
	}
	return nil
}

// ParseS3Location splits "s3://bucket/key" into bucket and key.
func ParseS3Location(location string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
