package app

import (
	"fmt"
	"strings"
	"time"

	"paperdesk/internal/usertoken"
	"paperdesk/pkg/mail"
	"paperdesk/pkg/payments"
	"paperdesk/pkg/storage"
	"paperdesk/pkg/store"
)

// Page price and deposit ratio used for all server-side amount
// computation. Client-supplied amounts are ignored.
const (
	pricePerPage = 20.0
	depositRatio = 0.5
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL       string
	RedisAddr         string
	RedisPassword     string
	TokenSecret       string
	TokenTTL          time.Duration
	FrontendURL       string
	BaseURL           string
	VerificationTTL   time.Duration
	Store             store.Store
	VerificationStore store.VerificationTokenStore
	Tokens            *usertoken.Manager
	Mailer            mail.Mailer
	Gateway           payments.Gateway
	Objects           storage.ObjectStore
}

// App is the core application service wiring storage, the verification
// cache, mail, and the payment gateway together.
type App struct {
	store           store.Store
	verifications   store.VerificationTokenStore
	tokens          *usertoken.Manager
	mailer          mail.Mailer
	gateway         payments.Gateway
	objects         storage.ObjectStore
	frontendURL     string
	baseURL         string
	verificationTTL time.Duration
}

// New constructs the application. Dependencies not supplied in cfg are
// built from the connection settings.
func New(cfg Config) (*App, error) {
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = store.DefaultVerificationTTL
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	verifications := cfg.VerificationStore
	if verifications == nil {
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("redisAddr is required for the verification cache")
		}
		var err error
		verifications, err = store.NewRedisVerificationTokenStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("init verification cache: %w", err)
		}
	}

	tokens := cfg.Tokens
	if tokens == nil {
		var err error
		tokens, err = usertoken.NewManager(usertoken.Config{
			Secret: cfg.TokenSecret,
			TTL:    cfg.TokenTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("init token manager: %w", err)
		}
	}

	mailer := cfg.Mailer
	if mailer == nil {
		mailer = &mail.LogMailer{}
	}

	return &App{
		store:           dataStore,
		verifications:   verifications,
		tokens:          tokens,
		mailer:          mailer,
		gateway:         cfg.Gateway,
		objects:         cfg.Objects,
		frontendURL:     strings.TrimRight(cfg.FrontendURL, "/"),
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		verificationTTL: cfg.VerificationTTL,
	}, nil
}

// Store exposes the persistence layer for transports that need raw
// lookups (webhook handler, upload endpoint).
func (a *App) Store() store.Store { return a.store }

// Tokens exposes the access-token manager for the bearer middleware.
func (a *App) Tokens() *usertoken.Manager { return a.tokens }

func orderAmounts(numberOfPages int) (total, deposit float64) {
	total = float64(numberOfPages) * pricePerPage
	return total, total * depositRatio
}
