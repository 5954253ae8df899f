package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/survivehub/internal/bootstrap"
	"anoa.com/survivehub/internal/config"
	searchService "anoa.com/survivehub/internal/modules/search/service"
	"anoa.com/survivehub/internal/scheduler"
	"anoa.com/survivehub/internal/server"
	"anoa.com/survivehub/pkg/database"
	"anoa.com/survivehub/pkg/logger"
	"anoa.com/survivehub/pkg/mail"
	"anoa.com/survivehub/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{Development: cfg.IsDevelopment()})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(database.Config{
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		Debug:    cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalw("database unavailable", "error", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalw("migration failed", "error", err)
	}
	if cfg.IsDevelopment() {
		seed := bootstrap.AdminSeed{Email: cfg.AdminEmail, Username: cfg.AdminUsername, Password: cfg.AdminPassword}
		if err := bootstrap.SeedAdminUser(db, seed, log); err != nil {
			log.Fatalw("failed to seed admin user", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	redisClient := connectRedis(ctx, cfg, log)
	mongoDB, mongoClient := connectMongo(ctx, cfg, log)

	deps := server.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Mongo:  mongoDB,
		Meili:  connectMeili(cfg, log),
		Media:  connectMedia(cfg, log),
		Files:  connectFiles(ctx, cfg, log),
		Mailer: connectMail(cfg, log),
		Log:    log,
	}

	srv := server.NewServer(deps)

	sched := scheduler.New(log)
	for _, job := range srv.Jobs() {
		if err := sched.Register(job); err != nil {
			log.Fatalw("failed to register job", "error", err)
		}
	}
	sched.Start()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("http server listening", "addr", httpServer.Addr, "env", cfg.AppEnv)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server exited with error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("http shutdown failed", "error", err)
	}
	sched.Stop()
	if mongoClient != nil {
		_ = mongoClient.Disconnect(shutdownCtx)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

func connectRedis(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) *redis.Client {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set: realtime notifications, online presence and rate limits are off")
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalw("invalid REDIS_URL", "error", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalw("redis ping failed", "error", err)
	}
	return client
}

func connectMongo(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*mongo.Database, *mongo.Client) {
	if cfg.MongoURI == "" {
		log.Warn("MONGO_URI not set: chat is off")
		return nil, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalw("mongo connect failed", "error", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalw("mongo ping failed", "error", err)
	}
	return client.Database(cfg.MongoDB), client
}

func connectMeili(cfg *config.Config, log *zap.SugaredLogger) searchService.MeiliSearchService {
	if cfg.MeiliMasterKey == "" {
		log.Warn("MEILI_MASTER_KEY not set: user search falls back to the database")
		return nil
	}
	client := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return searchService.NewMeiliSearchService(client, log)
}

func connectMedia(cfg *config.Config, log *zap.SugaredLogger) storage.MediaStorage {
	if cfg.CloudinaryURL == "" {
		log.Warn("CLOUDINARY_URL not set: image and video uploads are off")
		return nil
	}
	media, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName)
	if err != nil {
		log.Fatalw("cloudinary init failed", "error", err)
	}
	return media
}

func connectFiles(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) storage.FileStore {
	if cfg.S3Bucket == "" {
		log.Warn("S3_BUCKET not set: downloads are off")
		return nil
	}
	store, err := storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
	if err != nil {
		log.Fatalw("s3 init failed", "error", err)
	}
	return store
}

func connectMail(cfg *config.Config, log *zap.SugaredLogger) mail.Sender {
	if cfg.BrevoAPIKey == "" {
		log.Warn("BREVO_API_KEY not set: mail is logged instead of sent")
		sender, err := mail.NewLogSender(log)
		if err != nil {
			log.Fatalw("mail templates invalid", "error", err)
		}
		return sender
	}
	sender, err := mail.NewBrevoSender(cfg.BrevoAPIKey, cfg.MailSenderEmail, cfg.MailSenderName, log)
	if err != nil {
		log.Fatalw("brevo init failed", "error", err)
	}
	return sender
}
