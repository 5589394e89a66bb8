package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldstone/crm-system/internal/api"
	"github.com/fieldstone/crm-system/internal/core/crypto"
	"github.com/fieldstone/crm-system/internal/core/service"
	"github.com/fieldstone/crm-system/internal/infrastructure/audit"
	"github.com/fieldstone/crm-system/internal/infrastructure/config"
	mongodb "github.com/fieldstone/crm-system/internal/infrastructure/db/mongo"
	redisdb "github.com/fieldstone/crm-system/internal/infrastructure/db/redis"
	"github.com/fieldstone/crm-system/internal/infrastructure/storage"
	"github.com/fieldstone/crm-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; stderr is all we have.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	blobs, err := storage.NewMinioStore(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("minio connection failed")
	}

	cipher, err := crypto.New(cfg.SecuriaKey)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid encryption key")
	}

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	counterRepo := mongodb.NewCounterRepository(db)
	clientRepo := mongodb.NewClientRepository(db)
	consultantRepo := mongodb.NewConsultantRepository(db)
	securiaRepo := mongodb.NewSecuriaRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	permissionRepo := mongodb.NewPermissionRepository(db)
	attachmentRepo := mongodb.NewAttachmentRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":       userRepo.EnsureIndexes,
		"clients":     clientRepo.EnsureIndexes,
		"consultants": consultantRepo.EnsureIndexes,
		"audit":       auditRepo.EnsureIndexes,
		"permissions": permissionRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	txRunner := mongodb.NewTxRunner(mongoClient)
	sessions := redisdb.NewSessionStore(rdb)

	auditWriter := audit.NewWriter(cfg.AuditWorkers, auditRepo, log)
	auditWriter.Start(ctx)

	// --- Services ---
	authService := service.NewAuthService(userRepo, counterRepo, cfg.JWTSecret, cfg.JWTTTL, cfg.BcryptCost, log)
	userService := service.NewUserService(userRepo, counterRepo, cfg.BcryptCost, log)
	clientService := service.NewClientService(clientRepo, txRunner, counterRepo, log)
	consultantService := service.NewConsultantService(consultantRepo, counterRepo, log)
	securiaService := service.NewSecuriaService(securiaRepo, userRepo, sessions, auditWriter, auditRepo, cipher, log)
	permissionService := service.NewPermissionService(permissionRepo, log)
	attachmentService := service.NewAttachmentService(attachmentRepo, blobs, log)

	e := api.NewRouter(api.Dependencies{
		Mongo:       db,
		Redis:       rdb,
		JWTSecret:   cfg.JWTSecret,
		RateLimit:   cfg.RateLimit,
		Users:       userRepo,
		Auth:        authService,
		UserService: userService,
		Clients:     clientService,
		Consultants: consultantService,
		Securia:     securiaService,
		Permissions: permissionService,
		Attachments: attachmentService,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
