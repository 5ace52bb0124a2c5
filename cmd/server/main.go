package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"paperdesk/internal/app"
	"paperdesk/internal/config"
	"paperdesk/internal/ratelimit"
	"paperdesk/internal/server"
	"paperdesk/internal/util"
	"paperdesk/pkg/mail"
	"paperdesk/pkg/outbox"
	"paperdesk/pkg/payments"
	"paperdesk/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tokenTTL, err := config.ParseDurationField("tokenTTL", cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to parse token TTL: %v", err)
	}
	verificationTTL, err := config.ParseDurationField("verificationTTL", cfg.VerificationTTL)
	if err != nil {
		log.Fatalf("failed to parse verification TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	mailer, err := buildMailer(cfg)
	if err != nil {
		log.Fatalf("failed to init mailer: %v", err)
	}

	var gateway payments.Gateway
	if cfg.StripeSecretKey != "" {
		gateway, err = payments.NewStripeGateway(payments.StripeConfig{
			APIKey:        cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.FrontendURL + "/payment/success",
			CancelURL:     cfg.FrontendURL + "/payment/cancel",
		})
		if err != nil {
			log.Fatalf("failed to init stripe gateway: %v", err)
		}
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object store: %v", err)
		}
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:     cfg.DatabaseURL,
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		TokenSecret:     cfg.TokenSecret,
		TokenTTL:        tokenTTL,
		FrontendURL:     cfg.FrontendURL,
		BaseURL:         cfg.BaseURL,
		VerificationTTL: verificationTTL,
		Mailer:          mailer,
		Gateway:         gateway,
		Objects:         objects,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	proxies, err := util.NewTrustedProxies(config.ParseTrustedProxies(cfg.TrustedProxies))
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	httpServer := server.New(server.Config{
		App:             appCore,
		RegisterLimiter: buildLimiter(cfg, "register", cfg.RegisterRateLimitPerMinute),
		LoginLimiter:    buildLimiter(cfg, "login", cfg.LoginRateLimitPerMinute),
		TrustedProxies:  proxies,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("paperdesk server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

// buildMailer selects delivery per mailMode: smtp sends inline, outbox
// stages on the Redis stream with a worker draining it, log only logs.
func buildMailer(cfg config.FileConfig) (mail.Mailer, error) {
	switch cfg.MailMode {
	case "smtp", "outbox":
		smtp, err := mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		if err != nil {
			return nil, err
		}
		if cfg.MailMode == "smtp" {
			return smtp, nil
		}
		ob, err := outbox.NewRedisOutbox(outbox.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, err
		}
		ob.Start(context.Background(), 2, smtp)
		return outbox.QueueMailer{Outbox: ob}, nil
	default:
		return mail.LogMailer{}, nil
	}
}

func buildLimiter(cfg config.FileConfig, prefix string, perMinute int) server.Limiter {
	if perMinute <= 0 {
		return nil
	}
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, perMinute, time.Minute)
	if err != nil {
		log.Fatalf("failed to init %s rate limiter: %v", prefix, err)
	}
	return limiter
}
