package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spacekit-api/internal/models"
)

type ContactHandler struct {
	repo ContactStore
}

func NewContactHandler(repo ContactStore) *ContactHandler {
	return &ContactHandler{repo: repo}
}

// Submit guarda un mensaje del formulario de contacto.
// POST /api/contact/submitcontact
func (h *ContactHandler) Submit(c *gin.Context) {
	var in models.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all fields are required"})
		return
	}

	if err := h.repo.Create(c.Request.Context(), msg); err != nil {
		zap.L().Error("submit contact failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "message submitted successfully",
		"contact": msg,
	})
}

// List devuelve los mensajes, los más recientes primero.
// GET /api/contact/getcontacts
func (h *ContactHandler) List(c *gin.Context) {
	messages, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		zap.L().Error("list contacts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}
