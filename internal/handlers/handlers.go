package handlers

import (
	"context"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"spacekit-api/internal/models"
)

// Interfaces de persistencia que usan los handlers; las implementa el paquete repository.

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindAll(ctx context.Context) ([]*models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)
}

type ContactStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	FindAll(ctx context.Context) ([]*models.ContactMessage, error)
}

type BuyNowStore interface {
	Stage(ctx context.Context, in models.BuyNowInput) (*models.BuyNowItem, bool, error)
	FindAll(ctx context.Context) ([]*models.BuyNowItem, error)
}

// validationMessage traduce los errores de binding a un mensaje legible.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "gt":
			msgs = append(msgs, field+" must be greater than "+fe.Param())
		case "gte":
			msgs = append(msgs, field+" must be at least "+fe.Param())
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
