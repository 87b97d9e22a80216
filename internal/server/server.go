// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"authflow-server/internal/api/handler"
	"authflow-server/internal/config"
	"authflow-server/internal/domain/auth"
	"authflow-server/internal/identity"
	"authflow-server/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg    *config.Config
	log    *logrus.Entry
	router *chi.Mux
	auth   *handler.AuthHandler
	ws     *handler.WebSocketHandler

	redis *redis.Client
	db    *pgxpool.Pool
}

// NewLogger builds the process logger from LOG_LEVEL.
func NewLogger(level string) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(lvl)
	return l, nil
}

func initDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(ctx, cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return dbpool, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
}

func providerCredentials(p config.Providers) map[auth.Provider]identity.ProviderCredentials {
	creds := func(c config.OAuthClient) identity.ProviderCredentials {
		return identity.ProviderCredentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret, Scopes: c.Scopes}
	}
	m := map[auth.Provider]identity.ProviderCredentials{
		auth.ProviderGoogle:    creds(p.Google),
		auth.ProviderGitHub:    creds(p.GitHub),
		auth.ProviderFacebook:  creds(p.Facebook),
		auth.ProviderTwitter:   creds(p.Twitter),
		auth.ProviderMicrosoft: creds(p.Microsoft),
		auth.ProviderApple:     creds(p.Apple),
	}
	ms := m[auth.ProviderMicrosoft]
	ms.Tenant = p.MicrosoftTenant
	m[auth.ProviderMicrosoft] = ms
	return m
}

// newAppleSecret returns nil when no signing key is configured, leaving any
// static OAUTH_APPLE_CLIENT_SECRET in place.
func newAppleSecret(p config.Providers) (*identity.AppleClientSecret, error) {
	if p.ApplePrivateKey == "" {
		return nil, nil
	}
	secret, err := identity.NewAppleClientSecret(p.AppleTeamID, p.AppleKeyID, p.Apple.ClientID, []byte(p.ApplePrivateKey))
	if err != nil {
		return nil, fmt.Errorf("apple client secret: %w", err)
	}
	return secret, nil
}

func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	log := logrus.NewEntry(logger)
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	appleSecret, err := newAppleSecret(cfg.Providers)
	if err != nil {
		return nil, err
	}

	// Initialize dependencies
	redisClient := initRedis(cfg)
	validate := validator.New()

	var recorder auth.EventRecorder = auth.NopRecorder{}
	var db *pgxpool.Pool
	if cfg.DBUrl != "" {
		if db, err = initDB(ctx, cfg); err != nil {
			return nil, err
		}
		events := repository.NewAuthEventRepository(db)
		if err := events.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		recorder = events
	} else {
		log.Info("DATABASE_URL not set, auth events are not recorded")
	}

	creds := providerCredentials(cfg.Providers)
	providers := identity.NewProviderConfigs(creds, cfg.CallbackURL())
	for _, p := range auth.Providers() {
		if p == auth.ProviderTwitter {
			if cfg.Providers.Twitter.ClientID == "" {
				log.WithField("provider", p.Key()).Info("provider not configured")
			}
			continue
		}
		if _, ok := providers[p]; !ok {
			log.WithField("provider", p.Key()).Info("provider not configured")
		}
	}

	platform := &identity.Platform{
		Client:      identity.NewClient(cfg.IdentityToolkitURL, cfg.Firebase.APIKey, &http.Client{Timeout: 30 * time.Second}, log),
		Providers:   providers,
		Twitter:     identity.NewTwitterConfig(creds[auth.ProviderTwitter], cfg.CallbackURL()),
		AppleSecret: appleSecret,
		Broker:      identity.NewPopupBroker(identity.NewPopupStore(redisClient), cfg.PopupTimeout, log),
		RedirectURL: cfg.CallbackURL(),
		Log:         log,
	}

	validator := auth.NewValidator(validate) // Use our wrapper
	authHandler := handler.NewAuthHandler(platform.Broker, cfg.Firebase, log)
	wsHandler := handler.NewWebSocketHandler(platform, validator, recorder, log)

	s := &Server{
		cfg:    cfg,
		log:    log,
		router: r,
		auth:   authHandler,
		ws:     wsHandler,
		redis:  redisClient,
		db:     db,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.ServerPort, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.ServerPort).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) close() {
	if err := s.redis.Close(); err != nil {
		s.log.WithError(err).Warn("failed to close redis client")
	}
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.auth.Healthz)
	s.router.Get("/api/config", s.auth.Config)
	s.router.Get("/auth/callback", s.auth.Callback)
	s.router.Post("/auth/callback", s.auth.Callback)
	s.router.Get("/ws", s.ws.HandleConnection)
}
