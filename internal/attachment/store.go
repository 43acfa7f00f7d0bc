package attachment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/claimflow/internal/common"
)

// MaxReceiptSize is the largest receipt file the upload endpoint accepts.
const MaxReceiptSize = 10 << 20 // 10MB

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
	".gif":  true,
	".webp": true,
}

// Store keeps uploaded receipt files on local disk. Resolving a reference
// back to bytes is the serving layer's job; Store only owns naming and
// placement.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: upload directory is required", common.ErrValidation)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string {
	return s.dir
}

// ValidateUpload checks size and extension constraints before a file is
// accepted.
func ValidateUpload(filename string, size int64) error {
	if size > MaxReceiptSize {
		return fmt.Errorf("%w: file exceeds %dMB limit", common.ErrValidation, MaxReceiptSize>>20)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: file type %q not allowed (jpg, jpeg, png, pdf, gif, webp)", common.ErrValidation, ext)
	}
	return nil
}

// NewFileName produces a unique stored name for an upload, keeping its
// extension: <timestamp>-<uuid8><ext>.
func NewFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%s%s",
		time.Now().Format("20060102-150405"),
		uuid.New().String()[:8],
		ext)
}

// Path returns the on-disk location for a stored file name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Reference returns the opaque reference handed back to clients and
// consumed verbatim by claim creation.
func Reference(name string) string {
	return ReferencePrefix + name
}
