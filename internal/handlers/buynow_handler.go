package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spacekit-api/internal/events"
	"spacekit-api/internal/models"
)

type BuyNowHandler struct {
	repo   BuyNowStore
	events events.Publisher
}

func NewBuyNowHandler(repo BuyNowStore, pub events.Publisher) *BuyNowHandler {
	return &BuyNowHandler{repo: repo, events: pub}
}

// Add prepara una compra: crea el registro (201) o incrementa su cantidad (200).
// POST /api/buynow/add
func (h *BuyNowHandler) Add(c *gin.Context) {
	var in models.BuyNowInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	if in.Name == "" || in.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all fields are required"})
		return
	}

	item, created, err := h.repo.Stage(c.Request.Context(), in)
	if err != nil {
		zap.L().Error("stage buy now item failed", zap.Error(err), zap.String("name", in.Name))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save product"})
		return
	}

	if err := h.events.Publish(c.Request.Context(), events.New(events.BuyNowStaged, item.Name, item)); err != nil {
		zap.L().Warn("publish event failed", zap.String("type", events.BuyNowStaged), zap.Error(err))
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "product added successfully", "product": item})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quantity updated", "product": item})
}

// List devuelve los productos preparados.
// GET /api/buynow/get-selected
func (h *BuyNowHandler) List(c *gin.Context) {
	items, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		zap.L().Error("list buy now items failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, items)
}
