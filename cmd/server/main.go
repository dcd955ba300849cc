package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vedicotp/vedicotp/internal/clock"
	"github.com/vedicotp/vedicotp/internal/config"
	"github.com/vedicotp/vedicotp/internal/handlers"
	"github.com/vedicotp/vedicotp/internal/middleware"
	"github.com/vedicotp/vedicotp/internal/otp"
	"github.com/vedicotp/vedicotp/internal/repository"
	"github.com/vedicotp/vedicotp/internal/service"
)

func main() {
	genSecret := flag.Bool("gen-secret", false, "print a random SESSION_SECRET_KEY and exit")
	flag.Parse()

	if *genSecret {
		key, err := service.GenerateSecretKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(key)
		return
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.Log.Level).Warn("Unknown log level, keeping info")
	}

	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var auditRepo *repository.AuditRepository
	var auditWriter service.AuditWriter
	if cfg.DynamoDB.AuditTable != "" {
		dynamoClient, err := initDynamoDB(cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize DynamoDB")
		}
		auditRepo = repository.NewAuditRepository(dynamoClient, cfg.DynamoDB.AuditTable, cfg.DynamoDB.AuditRetention, logger)
		auditWriter = auditRepo
	}

	clk := clock.New()
	codec := otp.NewCodec(cfg.OTP.MixingConstant, cfg.OTP.Validity.Milliseconds())

	statsService := service.NewStatsService(redisClient, logger)
	otpService := service.NewOTPService(codec, clk, statsService, auditWriter, logger)
	sessionService, err := service.NewSessionService(&cfg.Session, clk, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize session service")
	}

	var operatorAuth *middleware.OperatorAuth
	if cfg.Audit.Token != "" {
		operatorAuth = middleware.NewOperatorAuth(cfg.Audit.Token, logger)
	} else if auditRepo != nil {
		logger.Warn("AUDIT_TOKEN not set, audit log is write-only")
	}

	otpHandlers := handlers.NewOTPHandlers(otpService, sessionService, statsService, auditRepo, clk, logger)
	authMiddleware := middleware.NewAuthMiddleware(sessionService, logger)
	router := handlers.NewRouter(otpHandlers, authMiddleware, operatorAuth, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":          cfg.Server.Port,
			"validity":      otpService.ValidityWindow().String(),
			"stats_enabled": statsService.Enabled(),
			"audit_enabled": auditRepo != nil,
			"audit_route":   operatorAuth != nil,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// initRedis returns nil when no endpoint is configured or the server does not
// answer; outcome counters are then disabled.
func initRedis(cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.Redis.Endpoint == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Endpoint,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unavailable, outcome stats disabled")
		client.Close()
		return nil
	}

	logger.Info("Redis client initialized")
	return client
}

func initDynamoDB(cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	var awsCfg aws.Config
	var err error

	if cfg.DynamoDB.Endpoint != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.DynamoDB.Region),
			awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{
						URL:           cfg.DynamoDB.Endpoint,
						SigningRegion: cfg.DynamoDB.Region,
					}, nil
				})),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.DynamoDB.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg)
	logger.Info("DynamoDB client initialized")
	return client, nil
}
