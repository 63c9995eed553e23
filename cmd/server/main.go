// @title Eventify API
// @version 1.0
// @description Event catalog, RSVPs with email confirmation, categories and an admin dashboard.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin JWT.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventify/config"
	_ "eventify/docs"
	"eventify/internal/adapters/auth"
	"eventify/internal/adapters/email"
	"eventify/internal/adapters/messaging"
	"eventify/internal/adapters/storage"
	deliveryhttp "eventify/internal/delivery/http"
	"eventify/internal/delivery/http/controllers"
	"eventify/internal/delivery/http/middleware"
	"eventify/internal/domain"
	"eventify/internal/repository/postgres"
	"eventify/internal/services"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = postgres.Migrate(migrateCtx, db)
	cancel()
	if err != nil {
		return err
	}

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	images, err := storage.NewLocalImageStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)

	notifier := services.NewRSVPNotifier(mailer, email.NewTemplateRenderer(), logger, time.Local)
	catalog := services.NewCatalogService(eventRepo, categoryRepo, images, publisher, logger, cfg.ContextTimeout)
	ledger := services.NewLedgerService(eventRepo, rsvpRepo, notifier, publisher, logger, cfg.ContextTimeout)
	authSvc := services.NewAuthService(
		domain.AdminCredentials{Email: cfg.AdminEmail, PasswordSalt: cfg.AdminPasswordSalt, PasswordHash: cfg.AdminPasswordHash},
		auth.NewBcryptHasher(0),
		auth.NewJWTIssuer(cfg.JWTSecret),
		cfg.JWTExpiry,
	)

	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Events:     controllers.NewEventController(logger, catalog, ledger, time.Local),
		RSVPs:      controllers.NewRSVPController(logger, ledger),
		Categories: controllers.NewCategoryController(logger, catalog),
		Admin:      controllers.NewAdminController(logger, catalog),
		Auth:       controllers.NewAuthController(logger, authSvc),
	}, middleware.RequireAdmin(auth.NewJWTVerifier(cfg.JWTSecret), logger), images.Dir())

	var handler http.Handler = router
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.Recover(logger, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher connects to RabbitMQ when configured; otherwise domain events are only logged.
func newPublisher(cfg *config.Config, logger *slog.Logger) (domain.EventPublisher, func()) {
	if cfg.RabbitMQURL == "" {
		return messaging.NewNoopPublisher(logger), func() {}
	}
	p, err := messaging.NewPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, domain events disabled", "err", err)
		return messaging.NewNoopPublisher(logger), func() {}
	}
	return p, p.Close
}
