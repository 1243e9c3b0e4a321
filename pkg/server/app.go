package server

import (
	"context"
	"fmt"
	"time"

	"PatientPulse/internal/usecase"
	"PatientPulse/pkg/config"
	xhttp "PatientPulse/pkg/http"
	pkgkafka "PatientPulse/pkg/kafka"
	applogger "PatientPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// App owns the long-running parts of the service: the HTTP server, the
// forecast scheduler and, when Kafka is enabled, the observations consumer.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	scheduler  *usecase.ForecastScheduler
	consumer   *pkgkafka.Consumer
}

// New creates a new App. consumer may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	scheduler *usecase.ForecastScheduler,
	consumer *pkgkafka.Consumer,
) *App {
	if log == nil {
		log = applogger.NewNop()
	}
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		scheduler:  scheduler,
		consumer:   consumer,
	}
}

// Run starts every component and blocks until ctx is cancelled, then shuts
// down. Callers cancel ctx on SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
	}
	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	if a.scheduler != nil {
		g.Go(func() error {
			return a.scheduler.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutdown signal received")
		return a.shutdown()
	})

	a.log.Info("patientpulse started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Bool("kafka", a.consumer != nil),
	)
	return g.Wait()
}

// shutdown stops the HTTP server first so no new observations arrive, then
// drains the consumer. Clients are closed by the DI cleanup afterwards.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	a.log.RemoveCollector()
	a.log.Info("shutdown complete")
	return firstErr
}
