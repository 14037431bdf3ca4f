package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalStorage guarda las imágenes en disco; se sirven como estáticos bajo urlPrefix.
type LocalStorage struct {
	baseDir   string
	urlPrefix string
}

func NewLocalStorage(baseDir, urlPrefix string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

func (s *LocalStorage) Save(_ context.Context, key string, data io.Reader, _ string) (*Object, error) {
	dest, key, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, errors.Wrap(err, "storage: mkdir")
	}

	f, err := os.Create(dest)
	if err != nil {
		return nil, errors.Wrap(err, "storage: create")
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		_ = os.Remove(dest)
		return nil, errors.Wrap(err, "storage: write")
	}

	return &Object{Key: key, URL: s.urlPrefix + "/" + key}, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	dest, _, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return errors.Wrap(err, "storage: remove")
	}
	return nil
}

// resolve impide que una clave salga del directorio base y devuelve
// la ruta en disco junto con la clave normalizada.
func (s *LocalStorage) resolve(key string) (string, string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	if clean == string(filepath.Separator) {
		return "", "", errors.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(s.baseDir, clean), strings.TrimPrefix(filepath.ToSlash(clean), "/"), nil
}
