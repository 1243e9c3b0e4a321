//go:build wireinject
// +build wireinject

package di

import (
	"PatientPulse/internal/domain/repository"
	internalrepo "PatientPulse/internal/repository"
	"PatientPulse/pkg/config"
	"PatientPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// The returned cleanup closes infrastructure clients.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideResponseCache,
		ProvideForecastHub,

		// Repositories
		ProvideObservationArchive,
		ProvideObservationStore,
		wire.Bind(new(repository.ObservationStore), new(*internalrepo.MemoryObservationStore)),
		ProvideForecastPublisher,

		// Forecasting core
		ProvideForecastEngine,
		ProvideClassifier,
		ProvidePredictionService,

		// Delivery
		ProvideRateLimiter,
		ProvideForecastHandler,
		ProvideHTTPServer,
		ProvideForecastScheduler,
		ProvideKafkaConsumer,

		ProvideApp,
	)
	return nil, nil, nil
}
