package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"spacekit-api/internal/auth"
	"spacekit-api/internal/cache"
	"spacekit-api/internal/config"
	"spacekit-api/internal/database"
	"spacekit-api/internal/events"
	"spacekit-api/internal/handlers"
	"spacekit-api/internal/logger"
	"spacekit-api/internal/repository"
	"spacekit-api/internal/routes"
	"spacekit-api/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogMode, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.EnvFile {
		zlog.Info("📄 loaded .env file")
	} else {
		zlog.Info("using system environment variables")
	}

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := database.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			zlog.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()
	zlog.Info("✅ connected to MongoDB", zap.String("db", cfg.MongoDB))

	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(connectCtx, db); err != nil {
		return err
	}

	store, err := newStorage(cfg)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zlog.Warn("close event publisher failed", zap.Error(err))
		}
	}()

	productCache := cache.New(cfg.CacheTTL)
	defer productCache.Stop()

	h := routes.Handlers{
		Products: handlers.NewProductHandler(
			repository.NewProductRepository(db.Collection(database.ProductsCollection)),
			store, productCache, publisher, cfg.MaxUploadBytes),
		Contacts: handlers.NewContactHandler(repository.NewContactRepository(db.Collection(database.ContactsCollection))),
		BuyNow: handlers.NewBuyNowHandler(
			repository.NewBuyNowRepository(db.Collection(database.BuyNowCollection)), publisher),
		Health: handlers.NewHealthHandler(database.Pinger{Client: client}),
	}
	opts := routes.Options{CorsOrigins: cfg.CorsOrigins}
	if cfg.CloudinaryURL == "" {
		opts.UploadDir = cfg.UploadDir
	}

	if cfg.AdminEmail != "" {
		authenticator, err := auth.NewAuthenticator(cfg.AdminEmail, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTTTL)
		if err != nil {
			return err
		}
		h.Auth = handlers.NewAuthHandler(authenticator)
		if cfg.AuthRequired {
			opts.Admin = authenticator.RequireAdmin()
		}
	}

	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(handlers.RequestLogger(zlog), handlers.Recovery(zlog))
	routes.RegisterRoutes(router, h, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("🚀 server running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newStorage usa Cloudinary si hay credenciales y disco local en otro caso.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.CloudinaryURL != "" {
		zap.L().Info("☁️ storing images in Cloudinary", zap.String("folder", cfg.CloudinaryFolder))
		cld, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			return nil, err
		}
		return cld, nil
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	zap.L().Info("storing images on disk", zap.String("dir", cfg.UploadDir))
	return storage.NewLocalStorage(cfg.UploadDir, "/uploads"), nil
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Nop{}, nil
	}
	zap.L().Info("publishing catalog events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, err
	}
	return pub, nil
}
