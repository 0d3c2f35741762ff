package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/auth"
	"github.com/ashmara/imagevault/internal/conf"
	imagebiz "github.com/ashmara/imagevault/internal/image/biz"
	imagedata "github.com/ashmara/imagevault/internal/image/data"
	imageservice "github.com/ashmara/imagevault/internal/image/service"
	"github.com/ashmara/imagevault/internal/pkg/blobstore"
	"github.com/ashmara/imagevault/internal/pkg/database"
	"github.com/ashmara/imagevault/internal/pkg/logger"
	"github.com/ashmara/imagevault/internal/pkg/redis"
	platformbiz "github.com/ashmara/imagevault/internal/platform/biz"
	platformdata "github.com/ashmara/imagevault/internal/platform/data"
	"github.com/ashmara/imagevault/internal/platform/pixiv"
	platformservice "github.com/ashmara/imagevault/internal/platform/service"
	"github.com/ashmara/imagevault/internal/server"
	"github.com/ashmara/imagevault/internal/tagger"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	log, err := logger.New(&logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully")

	// Initialize database
	dbConfig := database.DefaultConfig()
	dbConfig.Host = config.Database.Host
	dbConfig.Port = config.Database.Port
	dbConfig.User = config.Database.User
	dbConfig.Password = config.Database.Password
	dbConfig.DBName = config.Database.DBName
	dbConfig.SSLMode = config.Database.SSLMode

	db, err := database.New(dbConfig, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	models := append(imagedata.Models(), platformdata.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Initialize redis
	redisClient, err := redis.New(&redis.Config{
		Addr:     fmt.Sprintf("%s:%d", config.Redis.Host, config.Redis.Port),
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	}, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize blob store
	blobs, err := blobstore.New(context.Background(), &blobstore.Config{
		Endpoint:  config.MinIO.Endpoint,
		AccessKey: config.MinIO.AccessKey,
		SecretKey: config.MinIO.SecretKey,
		UseSSL:    config.MinIO.UseSSL,
		Bucket:    config.MinIO.Bucket,
	}, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize blob store", zap.Error(err))
	}

	// Initialize outbound clients
	taggerClient, err := tagger.New(&tagger.Config{
		BaseURL: config.Tagger.BaseURL,
		Timeout: config.Tagger.Timeout,
	}, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize tagger client", zap.Error(err))
	}

	pixivClient, err := pixiv.New(&pixiv.Config{
		BaseURL: config.Pixiv.BaseURL,
		Timeout: config.Pixiv.Timeout,
	}, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize pixiv client", zap.Error(err))
	}

	// Initialize repositories
	imageRepo := imagedata.NewImageRepo(db, log.Logger)
	ownershipRepo := imagedata.NewOwnershipRepo(db, log.Logger)
	shareTokenRepo := imagedata.NewShareTokenRepo(db, log.Logger)
	tagRepo := imagedata.NewTagRepo(db, log.Logger)
	characterRepo := imagedata.NewCharacterRepo(db, log.Logger)
	classifier := imagedata.NewClassifier(taggerClient)
	credentialRepo := platformdata.NewCredentialRepo(db, log.Logger)
	ledgerRepo := platformdata.NewLedgerRepo(db, log.Logger)

	// Initialize use cases
	importUseCase := imagebiz.NewImportUseCase(
		db, imageRepo, ownershipRepo, tagRepo, characterRepo, blobs, classifier, log.Logger,
	)
	queryUseCase := imagebiz.NewQueryUseCase(
		imageRepo, ownershipRepo, shareTokenRepo, blobs, log.Logger,
	)
	deleteUseCase := imagebiz.NewDeleteUseCase(
		db, imageRepo, ownershipRepo, shareTokenRepo, blobs, log.Logger,
	)
	shareUseCase := imagebiz.NewShareTokenUseCase(ownershipRepo, shareTokenRepo)
	vocabUseCase := imagebiz.NewVocabUseCase(tagRepo, characterRepo)
	credentialUseCase := platformbiz.NewCredentialUseCase(credentialRepo, log.Logger)

	// Initialize sync loop
	reconciler := platformbiz.NewPixivReconciler(
		pixivClient, ledgerRepo, importUseCase, db, log.Logger,
	)
	syncLoop := platformbiz.NewSyncLoop(
		platformbiz.SyncLoopConfig{
			Interval: config.Sync.Interval,
			LockTTL:  config.Sync.LockTTL,
		},
		credentialRepo,
		[]platformbiz.Reconciler{reconciler},
		redisClient,
		log.Logger,
	)
	if err := syncLoop.Start(); err != nil {
		log.Fatal("failed to start sync loop", zap.Error(err))
	}

	// Initialize services
	jwtManager := auth.NewManager(config.Auth.JWTSecret, config.Auth.JWTIssuer)
	imageService := imageservice.NewImageService(
		importUseCase, queryUseCase, deleteUseCase, shareUseCase, log.Logger,
	)
	vocabService := imageservice.NewVocabService(vocabUseCase, log.Logger)
	credentialService := platformservice.NewCredentialService(credentialUseCase, log.Logger)

	httpServer := server.NewHTTPServer(
		config, log.Logger, jwtManager, imageService, vocabService, credentialService,
	)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	syncLoop.Stop()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
