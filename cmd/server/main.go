package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"transcripthub/internal/app"
	"transcripthub/internal/config"
	"transcripthub/internal/server"
	"transcripthub/internal/util"
	"transcripthub/pkg/events"
	"transcripthub/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseDuration(cfg.SessionTTL, 24*time.Hour)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	acquireTimeout, err := config.ParseDuration(cfg.AcquireTimeout, 30*time.Second)
	if err != nil {
		log.Fatalf("failed to parse acquire timeout: %v", err)
	}
	generateTimeout, err := config.ParseDuration(cfg.GenerateTimeout, 60*time.Second)
	if err != nil {
		log.Fatalf("failed to parse generate timeout: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var archive storage.Archive
	if cfg.MinioEndpoint != "" {
		minioArchive, err := storage.NewMinioArchive(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init caption archive: %v", err)
		}
		archive = minioArchive
	}
	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		exchange := cfg.AMQPExchange
		if exchange == "" {
			exchange = "transcripthub.events"
		}
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, exchange)
		if err != nil {
			log.Fatalf("failed to init event publisher: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:       cfg.DatabaseURL,
		SessionStrategy:   cfg.SessionStrategy,
		RedisAddr:         cfg.RedisAddr,
		RedisPassword:     cfg.RedisPassword,
		JWTSecret:         cfg.JWTSecret,
		SessionTTL:        sessionTTL,
		CaptionBaseURL:    cfg.CaptionBaseURL,
		PreferredLanguage: cfg.PreferredLanguage,
		AcquireTimeout:    acquireTimeout,
		MistralBaseURL:    cfg.MistralBaseURL,
		MistralAPIKey:     cfg.MistralAPIKey,
		MistralModel:      cfg.MistralModel,
		GenerateTimeout:   generateTimeout,
		MaxConcurrent:     cfg.MaxConcurrent,
		Archive:           archive,
		Events:            publisher,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                      appCore,
		RedisAddr:                cfg.RedisAddr,
		RedisPassword:            cfg.RedisPassword,
		SignupRateLimitPerMinute: cfg.SignupRateLimitPerMinute,
		LoginRateLimitPerMinute:  cfg.LoginRateLimitPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
