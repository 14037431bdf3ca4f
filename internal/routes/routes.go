package routes

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"spacekit-api/internal/handlers"
)

// Handlers agrupa los handlers de cada recurso. Auth es nil si no hay administrador configurado.
type Handlers struct {
	Products *handlers.ProductHandler
	Contacts *handlers.ContactHandler
	BuyNow   *handlers.BuyNowHandler
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
}

type Options struct {
	UploadDir   string
	CorsOrigins []string
	// Admin protege las rutas de administración; nil las deja abiertas.
	Admin gin.HandlerFunc
}

func RegisterRoutes(router *gin.Engine, h Handlers, opts Options) {
	router.Use(corsMiddleware(opts.CorsOrigins))

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	admin := opts.Admin
	if admin == nil {
		admin = func(c *gin.Context) { c.Next() }
	}

	api := router.Group("/api")
	{
		api.GET("/health", h.Health.Health)

		products := api.Group("/products")
		products.POST("/add", admin, h.Products.CreateProduct)
		products.GET("", h.Products.ListProducts)
		products.GET("/:id", h.Products.GetProduct)
		products.DELETE("/delete/:id", admin, h.Products.DeleteProduct)

		// /api/contact y /api/contacts: el cliente usó ambos prefijos
		for _, prefix := range []string{"/contact", "/contacts"} {
			contacts := api.Group(prefix)
			contacts.POST("/submitcontact", h.Contacts.Submit)
			contacts.GET("/getcontacts", admin, h.Contacts.List)
		}

		buynow := api.Group("/buynow")
		buynow.POST("/add", h.BuyNow.Add)
		buynow.GET("/get-selected", h.BuyNow.List)

		if h.Auth != nil {
			api.POST("/auth/login", h.Auth.Login)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
