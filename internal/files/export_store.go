package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ExportStore saves exported QR files into a directory.
type ExportStore struct {
	dir string
	mu  sync.Mutex
}

// NewExportStore creates dir if needed and returns a store writing into it.
func NewExportStore(dir string) (*ExportStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &ExportStore{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *ExportStore) Dir() string {
	return s.dir
}

// Save writes data under name and returns the path written. An existing file
// is never replaced; a short unique suffix is added before the extension.
func (s *ExportStore) Save(name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", errors.New("export store: empty file name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		path = filepath.Join(s.dir, base+"-"+uuid.NewString()[:8]+ext)
	}

	tmp, err := os.CreateTemp(s.dir, ".qrpay-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("save export: %w", err)
	}
	return path, nil
}
