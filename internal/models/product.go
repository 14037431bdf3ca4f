package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product representa un producto del catálogo.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductName string             `json:"productName" bson:"productName"`
	Color       string             `json:"color,omitempty" bson:"color,omitempty"`
	Title       string             `json:"title,omitempty" bson:"title,omitempty"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64            `json:"price" bson:"price"`
	Image       string             `json:"image" bson:"image"`
	Images      []string           `json:"images" bson:"images"`
	ImageKey    string             `json:"-" bson:"imageKey,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// ProductInput son los campos del formulario multipart de alta de producto.
// productName es el nombre de campo histórico; name se acepta como alias.
type ProductInput struct {
	ProductName string   `form:"productName"`
	Name        string   `form:"name"`
	Color       string   `form:"color"`
	Title       string   `form:"title"`
	Description string   `form:"description"`
	Price       *float64 `form:"price" binding:"required,gte=0"`
}

// DisplayName devuelve el nombre del producto, sea cual sea el campo usado.
func (in ProductInput) DisplayName() string {
	if in.ProductName != "" {
		return in.ProductName
	}
	return in.Name
}
