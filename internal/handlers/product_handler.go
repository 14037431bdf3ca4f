package handlers

import (
	"context"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"spacekit-api/internal/auth"
	"spacekit-api/internal/cache"
	"spacekit-api/internal/events"
	"spacekit-api/internal/models"
	"spacekit-api/internal/repository"
	"spacekit-api/internal/storage"
)

const (
	productListCacheKey = "products:list"
	productCachePrefix  = "product:"
)

// Tipos de imagen aceptados y la extensión con la que se guardan.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type ProductHandler struct {
	repo           ProductStore
	storage        storage.Storage
	cache          *cache.Cache
	events         events.Publisher
	maxUploadBytes int64

	// listMu y listGen evitan que un listado leído antes de una
	// invalidación vuelva a quedar en caché después de ella.
	listMu  sync.Mutex
	listGen uint64
}

func NewProductHandler(repo ProductStore, store storage.Storage, c *cache.Cache, pub events.Publisher, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{
		repo:           repo,
		storage:        store,
		cache:          c,
		events:         pub,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateProduct sube la imagen y después crea el producto.
// POST /api/products/add (multipart)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	defer func() {
		// archivos temporales que el parser multipart haya volcado a disco
		if c.Request.MultipartForm != nil {
			_ = c.Request.MultipartForm.RemoveAll()
		}
	}()

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	// el binding de formularios convierte "" en 0
	if strings.TrimSpace(c.PostForm("price")) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price is required"})
		return
	}

	var in models.ProductInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}
	if math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a finite number"})
		return
	}
	name := strings.TrimSpace(in.DisplayName())
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productName is required"})
		return
	}

	obj, status, err := h.storeImage(c.Request.Context(), fileHeader)
	if err != nil {
		if status == http.StatusInternalServerError {
			zap.L().Error("image upload failed", zap.Error(err), zap.String("filename", fileHeader.Filename))
			c.JSON(status, gin.H{"error": "failed to upload image"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	product := &models.Product{
		ProductName: name,
		Color:       strings.TrimSpace(in.Color),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       *in.Price,
		Image:       obj.URL,
		Images:      []string{obj.URL},
		ImageKey:    obj.Key,
	}

	if err := h.repo.Create(c.Request.Context(), product); err != nil {
		zap.L().Error("create product failed", zap.Error(err), zap.String("product", name))
		// el registro no existe: la imagen quedaría huérfana
		h.discardImage(c.Request.Context(), obj.Key)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	h.invalidateList()
	h.publish(c.Request.Context(), events.New(events.ProductCreated, product.ID.Hex(), product))

	c.JSON(http.StatusCreated, gin.H{
		"message": "product added successfully",
		"product": product,
	})
}

// storeImage valida el tipo real del archivo y lo guarda.
// Devuelve el status HTTP que corresponde al error.
func (h *ProductHandler) storeImage(ctx context.Context, fh *multipart.FileHeader) (*storage.Object, int, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("image could not be read")
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("image could not be read")
	}
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, http.StatusBadRequest, errors.Errorf("unsupported image type %s", contentType)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, http.StatusInternalServerError, errors.Wrap(err, "rewind upload")
	}

	obj, err := h.storage.Save(ctx, storage.NewKey("products", ext), file, contentType)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return obj, http.StatusOK, nil
}

// GetProduct obtiene un producto por ID (con caché)
// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")
	cacheKey := productCacheKey(productID)

	if cached, found := h.cache.GetValue(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	product, err := h.repo.FindByID(c.Request.Context(), productID)
	if err != nil {
		h.respondLookupError(c, err, "failed to get product")
		return
	}

	h.cache.Set(cacheKey, product)
	c.JSON(http.StatusOK, product)
}

// ListProducts devuelve todos los productos (con caché)
// GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	if cached, found := h.cache.GetValue(productListCacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	h.listMu.Lock()
	gen := h.listGen
	h.listMu.Unlock()

	products, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		zap.L().Error("list products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	h.listMu.Lock()
	if gen == h.listGen {
		h.cache.Set(productListCacheKey, products)
	}
	h.listMu.Unlock()
	c.JSON(http.StatusOK, products)
}

// DeleteProduct borra el producto y su imagen.
// DELETE /api/products/delete/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	product, err := h.repo.Delete(c.Request.Context(), productID)
	if err != nil {
		h.respondLookupError(c, err, "failed to delete product")
		return
	}

	id := product.ID.Hex()
	h.cache.Delete(productCacheKey(id))
	h.invalidateList()

	fields := []zap.Field{zap.String("id", id), zap.String("product", product.ProductName)}
	if claims, ok := auth.ClaimsFrom(c); ok {
		fields = append(fields, zap.String("admin", claims.Subject))
	}
	zap.L().Info("product deleted", fields...)

	if product.ImageKey != "" {
		h.discardImage(c.Request.Context(), product.ImageKey)
	}
	h.publish(c.Request.Context(), events.New(events.ProductDeleted, id, nil))

	c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully", "id": id})
}

// productCacheKey normaliza el id: ObjectIDFromHex acepta hex en mayúsculas.
func productCacheKey(id string) string {
	return productCachePrefix + strings.ToLower(id)
}

func (h *ProductHandler) invalidateList() {
	h.listMu.Lock()
	defer h.listMu.Unlock()
	h.listGen++
	h.cache.DeleteByPrefix(productListCacheKey)
}

func (h *ProductHandler) respondLookupError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	default:
		zap.L().Error(msg, zap.Error(err), zap.String("id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// discardImage borra un objeto del storage sin fallar la petición.
func (h *ProductHandler) discardImage(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	err := h.storage.Delete(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrObjectNotFound):
		zap.L().Debug("stored image already gone", zap.String("key", key))
	default:
		zap.L().Warn("failed to delete stored image", zap.String("key", key), zap.Error(err))
	}
}

func (h *ProductHandler) publish(ctx context.Context, e events.Event) {
	if err := h.events.Publish(ctx, e); err != nil {
		zap.L().Warn("publish event failed", zap.String("type", e.Type), zap.String("key", e.Key), zap.Error(err))
	}
}
