package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spacekit-api/internal/models"
)

type BuyNowRepository struct {
	collection *mongo.Collection
}

func NewBuyNowRepository(collection *mongo.Collection) *BuyNowRepository {
	return &BuyNowRepository{collection: collection}
}

// Stage crea el registro con cantidad 1 o, si ya existe uno con el mismo nombre,
// incrementa su cantidad. Es un único upsert atómico; el índice único sobre name
// garantiza un registro por nombre. created indica si el documento es nuevo.
func (r *BuyNowRepository) Stage(ctx context.Context, in models.BuyNowInput) (item *models.BuyNowItem, created bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	item, err = r.upsert(ctx, in)
	if mongo.IsDuplicateKeyError(err) {
		// dos altas simultáneas del mismo nombre: la otra ya insertó, ahora incrementa
		item, err = r.upsert(ctx, in)
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "stage buynow item")
	}
	return item, item.Quantity == 1, nil
}

func (r *BuyNowRepository) upsert(ctx context.Context, in models.BuyNowInput) (*models.BuyNowItem, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$inc": bson.M{"quantity": 1},
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"price":     in.Price,
			"image":     in.Image,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var item models.BuyNowItem
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"name": in.Name}, update, opts).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindAll devuelve todos los registros preparados.
func (r *BuyNowRepository) FindAll(ctx context.Context) ([]*models.BuyNowItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find buynow items")
	}
	defer cursor.Close(ctx)

	items := make([]*models.BuyNowItem, 0)
	if err = cursor.All(ctx, &items); err != nil {
		return nil, errors.Wrap(err, "decode buynow items")
	}
	return items, nil
}
