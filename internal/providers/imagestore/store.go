package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/smallbiznis/mymart/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.imagestore",
	fx.Provide(NewFromConfig),
)

var (
	ErrNotFound   = errors.New("image_not_found")
	ErrUnreadable = errors.New("image_unreadable")
)

// Image is a product image with the content type sniffed from its bytes.
type Image struct {
	FileName    string
	ContentType string
	Data        []byte
}

// FileStore reads product images from a flat directory.
type FileStore struct {
	dir string
}

func NewFromConfig(cfg config.Config) *FileStore {
	return New(cfg.Store.ImageDir)
}

func New(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Read returns ErrNotFound for missing files and names that would escape the
// image directory, and ErrUnreadable when the file exists but cannot be read.
func (s *FileStore) Read(ctx context.Context, fileName string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(fileName)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, fileName)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, name, err)
	}

	return &Image{
		FileName:    name,
		ContentType: DetectContentType(data),
		Data:        data,
	}, nil
}

// DetectContentType returns the bare media type of data, without parameters.
func DetectContentType(data []byte) string {
	mediaType := mimetype.Detect(data).String()
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType)
}
