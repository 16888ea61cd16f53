package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/muhammadowais87/client2-sub000/config"
	httpadapter "github.com/muhammadowais87/client2-sub000/internal/adapters/http"
	apiv1 "github.com/muhammadowais87/client2-sub000/internal/adapters/http/api/v1"
	handlers "github.com/muhammadowais87/client2-sub000/internal/adapters/http/api/v1/handlers"
	authmw "github.com/muhammadowais87/client2-sub000/internal/adapters/http/middleware"
	natsadapter "github.com/muhammadowais87/client2-sub000/internal/adapters/nats"
	repo "github.com/muhammadowais87/client2-sub000/internal/adapters/postgres"
	"github.com/muhammadowais87/client2-sub000/internal/adapters/provider"
	"github.com/muhammadowais87/client2-sub000/internal/domain"
	"github.com/muhammadowais87/client2-sub000/internal/ratelimit"
	"github.com/muhammadowais87/client2-sub000/internal/tokenverify"
	"github.com/muhammadowais87/client2-sub000/internal/usecase"
	pkglog "github.com/muhammadowais87/client2-sub000/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	natsConn *nats.Conn
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	log := pkglog.New(cfg.AppEnv)

	db, err := gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
		Logger:         loggerForGorm(cfg),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.UserRecord{}, &domain.SecurityEvent{}); err != nil {
		return nil, err
	}

	// Referral admission depends on the referral service, so NATS is not
	// optional here.
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	users := repo.NewUserRepository(db)
	events := repo.NewSecurityEventRepository(db)
	idp := provider.NewHTTPClient(cfg.ProviderURL, cfg.ProviderServiceKey, 10*time.Second)
	referrals := natsadapter.NewReferralClient(nc, cfg.NATSReferralSubject)
	limiter := ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)

	service := usecase.NewAuthService(cfg, log, users, events, idp, referrals, limiter)
	verifier := tokenverify.New(cfg.ProviderJWTSecret, cfg.ProviderAudience)

	handler := handlers.NewAuthHandler(service)
	authMW := authmw.NewAuthMiddleware(verifier)
	router := httpadapter.NewRouter(cfg, apiv1.NewRouter(handler, authMW.Handler))

	verifyHandler := natsadapter.NewVerifyHandler(verifier)
	if err := verifyHandler.Subscribe(nc, cfg.NATSVerifySubject, cfg.AppName); err != nil {
		log.Warn().Err(err).Msg("session verify subscription failed")
	}

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: log, db: db, natsConn: nc, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort))
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func loggerForGorm(cfg *config.Config) logger.Interface {
	level := logger.Silent
	switch cfg.AppEnv {
	case "local":
		level = logger.Info
	default:
		level = logger.Warn
	}
	return logger.Default.LogMode(level)
}
