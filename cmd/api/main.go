package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/config"
	"github.com/choreboardhq/choreboard-api/internal/database"
	"github.com/choreboardhq/choreboard-api/internal/handler"
	"github.com/choreboardhq/choreboard-api/internal/middleware"
	"github.com/choreboardhq/choreboard-api/internal/repository"
	"github.com/choreboardhq/choreboard-api/internal/router"
	"github.com/choreboardhq/choreboard-api/internal/service"
	"github.com/choreboardhq/choreboard-api/pkg/ai"
	cloud "github.com/choreboardhq/choreboard-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Warn().Err(err).Msg("postgres unavailable, falling back to sqlite")
		db, err = database.ConnectSQLite("")
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSUrl != "" {
		natsConn, err = nats.Connect(cfg.NATSUrl)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, notification fan-out limited to redis")
		} else {
			defer natsConn.Close()
		}
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	proofRepo := repository.NewProofRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	signalRepo := repository.NewSignalRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	choreRepo := repository.NewChoreRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	var evaluator service.ProofEvaluator
	if cfg.OpenAIAPIKey != "" {
		vision, err := ai.NewVisionEvaluator(ai.VisionConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create vision evaluator: %v", err)
		}
		evaluator = service.NewProofEvaluator(vision, cfg.EvaluationTimeout, logger)
	} else {
		logger.Warn().Msg("no openai api key configured, all proofs go to human review")
	}

	ruleResolver := service.NewRuleResolver(ruleRepo, logger)
	patternRetriever := service.NewPatternRetriever(signalRepo, 0, logger)
	activityService := service.NewActivityService(activityRepo, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, "choreboard", natsConn, logger)
	rewardService := service.NewRewardService(rewardRepo, redisClient, "choreboard", cfg.BalanceCacheTTL, logger)
	memberService := service.NewMemberService(memberRepo, validate, logger)
	choreService := service.NewChoreService(choreRepo, ruleRepo, validate, logger)
	messageService := service.NewMessageService(messageRepo, memberRepo, validate, logger)
	proofService := service.NewProofService(
		proofRepo, memberRepo, ruleResolver, patternRetriever, evaluator,
		uploader, notificationService, activityService, validate,
		cfg.ImageMaxBytes, cfg.ResubmitNoteMinLength, logger,
	)
	reviewService := service.NewReviewService(
		proofRepo, ruleResolver, signalRepo, rewardService,
		notificationService, activityService, validate, cfg.DefaultRewardPoints, logger,
	)

	proofHandler := handler.NewProofHandler(proofService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, memberService, logger)
	rewardHandler := handler.NewRewardHandler(rewardService, logger)
	choreHandler := handler.NewChoreHandler(choreService, logger)
	memberHandler := handler.NewMemberHandler(memberService, logger)
	messageHandler := handler.NewMessageHandler(messageService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProofHandler:        proofHandler,
		ReviewHandler:       reviewHandler,
		RewardHandler:       rewardHandler,
		ChoreHandler:        choreHandler,
		MemberHandler:       memberHandler,
		MessageHandler:      messageHandler,
		NotificationHandler: notificationHandler,
		ActivityHandler:     activityHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
