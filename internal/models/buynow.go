package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuyNowItem es una compra preparada desde el botón "buy now".
// Hay como mucho un registro por nombre; repetir el alta incrementa Quantity.
type BuyNowItem struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Image     string             `json:"image" bson:"image"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type BuyNowInput struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"required,gt=0"`
	Image string  `json:"image" binding:"required"`
}
