package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nasahack25/airq/domain"
)

// Local stores image files on the local filesystem and serves them through
// the app's own /uploads route. The returned URL is the absolute path under
// that route.
type Local struct {
	// Dir is the directory that uploaded images are written to.
	Dir string
}

// NewLocal returns a Local backend rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("err creating upload dir %s: %w", dir, err)
	}
	return &Local{Dir: dir}, nil
}

var _ Backend = &Local{}

// store writes the image file to disk under a unique name, so uploads can
// never overwrite each other, and returns its URL.
func (l *Local) store(img *domain.Image) (string, error) {
	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), img.Extension)
	dst, err := os.Create(filepath.Join(l.Dir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, img.File); err != nil {
		return "", err
	}
	return "/uploads/" + filename, nil
}
