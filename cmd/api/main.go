package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/api/handler"
	"github.com/zaphub/zaphub/internal/api/middleware"
	"github.com/zaphub/zaphub/internal/app"
	"github.com/zaphub/zaphub/internal/config"
	"github.com/zaphub/zaphub/internal/logger"
	"github.com/zaphub/zaphub/internal/provider"
	"github.com/zaphub/zaphub/internal/provider/cloud"
	"github.com/zaphub/zaphub/internal/provider/evolution"
	"github.com/zaphub/zaphub/internal/provider/wuzapi"
	"github.com/zaphub/zaphub/internal/server"
	"github.com/zaphub/zaphub/internal/service/dispatcher"
	"github.com/zaphub/zaphub/internal/service/registry"
	"github.com/zaphub/zaphub/internal/storage"
	"github.com/zaphub/zaphub/internal/storage/model"
	"github.com/zaphub/zaphub/internal/webhook"
	"github.com/zaphub/zaphub/internal/webhook/delivery"
)

func main() {
	cfg := config.Load()

	logr, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logr.Sync()

	logr.Info("iniciando aplicação",
		zap.String("env", cfg.App.Env),
		zap.String("log_level", cfg.Log.Level),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Storage.Driver),
	)

	repos, err := storage.NewRepositories(cfg, logr)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer repos.Close()

	registryService := registry.NewService(repos.Instance, repos.SessionStatus, cfg.Webhook.TokenEncKey, logr)

	httpClient := provider.NewHTTPClient(cfg.Providers.TimeoutSeconds)
	clients := map[model.InstanceType]provider.Client{
		model.TypeEvolution: evolution.New(cfg.Providers, httpClient, logr),
		model.TypeWuzapi:    wuzapi.New(cfg.Providers, httpClient, logr),
		model.TypeCloud:     cloud.New(cfg.Providers, httpClient, logr),
	}

	dispatcherService := dispatcher.NewService(registryService, clients, logr)

	logr.Info("inicializando sistema de webhooks")
	deliveryTimeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	webhookDelivery := delivery.NewDelivery(logr, cfg.Webhook.MaxRetries, deliveryTimeout)
	webhookPool := webhook.NewPool(repos.WebhookQueue, repos.Instance, webhookDelivery, cfg.Webhook.Secret, logr, cfg.Webhook.Workers)
	webhookPool.Start(context.Background())
	logr.Info("webhook pool iniciada", zap.Int("workers", cfg.Webhook.Workers))

	instanceHandler := handler.NewInstanceHandler(dispatcherService, logr)
	messageHandler := handler.NewMessageHandler(dispatcherService, logr)
	webhookHandler := handler.NewWebhookHandler(registryService, repos.WebhookQueue, logr)
	healthHandler := handler.NewHealthHandler()

	rateLimitOpts := middleware.RateLimitOption{
		Enabled:  cfg.RateLimit.Enabled,
		Requests: cfg.RateLimit.Requests,
		Window:   time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		Prefix:   cfg.RateLimit.Prefix,
		Logger:   logr,
		Limiter:  repos.RateLimiter,
	}

	router := server.NewRouter(server.Options{
		Env: cfg.App.Env,
		Auth: middleware.AuthOption{
			JWTSecret:  cfg.JWT.Secret,
			AdminToken: cfg.JWT.AdminToken,
		},
		HealthHandler:   healthHandler,
		InstanceHandler: instanceHandler,
		MessageHandler:  messageHandler,
		WebhookHandler:  webhookHandler,
		RateLimit:       rateLimitOpts,
	})

	application := app.New(cfg, logr, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := application.Run(context.Background()); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logr.Info("sinal de encerramento recebido")
	case err := <-errCh:
		if err != nil {
			logr.Error("servidor finalizado com erro", zap.Error(err))
		}
	}

	logr.Info("iniciando shutdown graceful")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	webhookPool.Stop()
	logr.Info("webhook pool encerrada")

	if err := application.Shutdown(shutdownCtx); err != nil {
		logr.Error("erro ao encerrar servidor", zap.Error(err))
	} else {
		logr.Info("servidor encerrado com sucesso")
	}
}
