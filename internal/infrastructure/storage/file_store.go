package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/ports"
)

// FileStore keeps every artifact as <dir>/<key>.json. Writes go to a temporary
// file in the same directory and are published with a rename, so readers only
// ever see a complete document.
type FileStore struct {
	dir string
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore roots the store at dir, creating it if necessary.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("artifact directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create artifact dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file that backs key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read decodes the artifact stored under key into v.
func (s *FileStore) Read(ctx context.Context, key string, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(ErrNotFound, "read %s", key)
		}
		return errors.Wrapf(err, "read %s", key)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "decode %s", key)
	}
	return nil
}

// Write encodes v and atomically replaces the artifact stored under key.
func (s *FileStore) Write(ctx context.Context, key string, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := encode(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", key)
	}
	tmpName := tmp.Name()
	published := false
	defer func() {
		if !published {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write %s", key)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "sync %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", key)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return errors.Wrapf(err, "publish %s", key)
	}
	published = true
	return nil
}

// Exists reports whether key has been written.
func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.Path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrapf(err, "stat %s", key)
}

// Delete removes the artifact stored under key, if any.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
