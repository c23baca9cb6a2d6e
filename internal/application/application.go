package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/it-helpdesk/helpdesk-service/internal/config"
	"github.com/it-helpdesk/helpdesk-service/internal/database"
	"github.com/it-helpdesk/helpdesk-service/internal/handler"
	"github.com/it-helpdesk/helpdesk-service/internal/kafka"
	"github.com/it-helpdesk/helpdesk-service/internal/middleware"
	"github.com/it-helpdesk/helpdesk-service/internal/notify"
	"github.com/it-helpdesk/helpdesk-service/internal/router"
	"github.com/it-helpdesk/helpdesk-service/internal/service"
	"github.com/rs/zerolog"
)

// API — приложение для режима api: миграции, подключение к базе,
// HTTP-сервер.
type API struct {
	cfg      *config.Config
	log      zerolog.Logger
	httpSrv  *http.Server
	producer *kafka.Producer
}

// NewAPI создаёт приложение для режима api.
func NewAPI(cfg *config.Config, log zerolog.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	problemSvc := service.NewProblemService(db)
	instructionSvc := service.NewInstructionService(db)
	adminSvc := service.NewAdminService(db)
	attachmentSvc := service.NewAttachmentService(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := adminSvc.EnsureDefault(ctx, cfg.DefaultAdminEmail); err != nil {
		return nil, fmt.Errorf("seed default admin: %w", err)
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicEvents)
	notifier := notify.NewTeamsClient(cfg.TeamsWebhookURL, log)

	h := router.New(router.Deps{
		Problems:     handler.NewProblemHandler(problemSvc, producer, notifier),
		Instructions: handler.NewInstructionHandler(instructionSvc, producer),
		Admins:       handler.NewAdminHandler(adminSvc),
		Uploads:      handler.NewUploadHandler(attachmentSvc, cfg.MaxUploadMB),
		AdminGuard:   middleware.RequireAdmin(adminSvc),
		Log:          log,
		CORSOrigins:  cfg.CORSOrigins,
		MaxUploadMB:  cfg.MaxUploadMB,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		log:      log,
		httpSrv:  httpSrv,
		producer: producer,
	}, nil
}

// Run запускает HTTP-сервер, блокируется до отмены ctx.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info().Str("addr", a.httpSrv.Addr).Msg("HTTP server listening")
	a.log.Info().Str("swagger", base+"/swagger").Str("health", base+"/health").Str("api", base+"/api/").Msg("endpoints")

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.producer.Close(); err != nil {
		a.log.Error().Err(err).Msg("kafka close")
	}
	return nil
}
