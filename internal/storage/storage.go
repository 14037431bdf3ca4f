package storage

import (
	"context"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrObjectNotFound se devuelve al borrar un objeto que ya no existe.
var ErrObjectNotFound = errors.New("storage: object not found")

// Object es un archivo almacenado y su URL pública.
type Object struct {
	Key string
	URL string
}

// Storage abstrae dónde viven las imágenes de producto: disco local o un
// servicio de hosting de imágenes.
type Storage interface {
	// Save guarda el contenido bajo key y devuelve el objeto con su URL pública.
	Save(ctx context.Context, key string, data io.Reader, contentType string) (*Object, error)

	// Delete elimina el objeto; devuelve ErrObjectNotFound si no existe.
	Delete(ctx context.Context, key string) error
}

// NewKey genera una clave única dentro de prefix conservando la extensión.
func NewKey(prefix, ext string) string {
	return path.Join(prefix, uuid.NewString()+ext)
}
