package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spacekit-api/internal/models"
)

type ContactRepository struct {
	collection *mongo.Collection
}

func NewContactRepository(collection *mongo.Collection) *ContactRepository {
	return &ContactRepository{collection: collection}
}

// Create guarda el mensaje con la hora del servidor.
func (r *ContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, msg)
	return errors.Wrap(err, "insert contact")
}

// FindAll devuelve los mensajes del más reciente al más antiguo.
func (r *ContactRepository) FindAll(ctx context.Context) ([]*models.ContactMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find contacts")
	}
	defer cursor.Close(ctx)

	messages := make([]*models.ContactMessage, 0)
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, errors.Wrap(err, "decode contacts")
	}
	return messages, nil
}
