package repository

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound se devuelve cuando el documento pedido no existe.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID se devuelve cuando el id no es un ObjectID hexadecimal válido.
	ErrInvalidID = errors.New("invalid id")
)

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return objID, nil
}
