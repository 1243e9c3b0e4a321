package di

import (
	"context"
	"fmt"
	"time"

	"PatientPulse/internal/domain/models"
	"PatientPulse/internal/domain/repository"
	"PatientPulse/internal/handler/api"
	internalrepo "PatientPulse/internal/repository"
	icache "PatientPulse/internal/service/cache"
	apimetrics "PatientPulse/internal/service/metrics"
	"PatientPulse/internal/service/ratelimit"
	"PatientPulse/internal/service/stream"
	"PatientPulse/internal/services/alert"
	"PatientPulse/internal/services/forecast"
	"PatientPulse/internal/services/synthetic"
	"PatientPulse/internal/usecase"
	pkgch "PatientPulse/pkg/clickhouse"
	"PatientPulse/pkg/config"
	xhttp "PatientPulse/pkg/http"
	"PatientPulse/pkg/http/middleware"
	pkgkafka "PatientPulse/pkg/kafka"
	applogger "PatientPulse/pkg/logger"
	"PatientPulse/pkg/metrics"
	"PatientPulse/pkg/server"

	"github.com/segmentio/kafka-go"
)

const startupTimeout = 10 * time.Second

// ProvideLogger builds the service logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: "patientpulse",
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics registers the domain and API collectors on the default registry.
func ProvideMetrics() repository.Metrics {
	apimetrics.Register()
	return metrics.New(nil)
}

// ProvideClickHouseClient connects to ClickHouse. Returns nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithLogin(cfg.ClickHouse.Database, cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 5*time.Minute),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout, cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideObservationArchive creates the archive table. Returns nil without ClickHouse.
func ProvideObservationArchive(client *pkgch.Client, cfg *config.Config, log *applogger.Logger) (repository.ObservationArchive, error) {
	if client == nil {
		return nil, nil
	}
	db := client.Database()
	archive := internalrepo.NewCHObservationArchive(client.DB(), db+"."+cfg.ClickHouse.Table)
	archive.SetLogger(log)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	stmts := append([]string{"CREATE DATABASE IF NOT EXISTS " + db}, archive.SchemaStatements()...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvideObservationStore seeds the in-memory series from the configured
// history source.
func ProvideObservationStore(cfg *config.Config, archive repository.ObservationArchive, log *applogger.Logger) (*internalrepo.MemoryObservationStore, error) {
	store := internalrepo.NewMemoryObservationStore()

	var (
		history []models.Observation
		err     error
	)
	switch cfg.History.Source {
	case "clickhouse":
		if archive == nil {
			return nil, fmt.Errorf("history source clickhouse requires clickhouse.enabled")
		}
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		// one extra row so the window matches the synthetic Hours+1
		history, err = archive.LoadRecent(ctx, cfg.History.Hours+1)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
	default:
		gen := synthetic.NewGenerator(cfg.History.Hours, cfg.History.Base, cfg.History.NoiseStdDev, cfg.History.Seed)
		history = gen.Generate(time.Now())
	}

	if err := store.Seed(history); err != nil {
		return nil, fmt.Errorf("seed history: %w", err)
	}
	log.Info("history seeded",
		applogger.String("source", cfg.History.Source),
		applogger.Int("observations", store.Len()),
	)
	return store, nil
}

// ProvideForecastEngine loads the model. A load failure is logged and leaves
// the engine without a model; forecasts then report unavailable.
func ProvideForecastEngine(cfg *config.Config, log *applogger.Logger, m repository.Metrics) *forecast.Engine {
	model, err := forecast.LoadModel(cfg.Model, log)
	if err != nil {
		log.Error("model load failed, forecasts unavailable", applogger.Error(err))
		model = nil
	}
	engine := forecast.NewEngine(model)
	engine.SetLogger(log)
	engine.SetMetrics(m)
	return engine
}

func ProvideClassifier(cfg *config.Config) (*alert.Classifier, error) {
	return alert.NewClassifier(models.Thresholds{High: cfg.Alert.High, Medium: cfg.Alert.Medium})
}

func ProvidePredictionService(
	store repository.ObservationStore,
	engine *forecast.Engine,
	classifier *alert.Classifier,
	archive repository.ObservationArchive,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.PredictionService {
	opts := []usecase.Option{usecase.WithMetrics(m), usecase.WithLogger(log)}
	if archive != nil {
		opts = append(opts, usecase.WithArchive(archive))
	}
	return usecase.NewPredictionService(store, engine, classifier, opts...)
}

// ProvideResponseCache returns Redis when configured, else the in-process cache.
func ProvideResponseCache(cfg *config.Config, log *applogger.Logger) (icache.BytesCache, func(), error) {
	if cfg.Cache.Backend != "redis" {
		return icache.NewTTLCache(), func() {}, nil
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("redis cache connected", applogger.String("addr", cfg.Cache.Redis.Addr))
	return rc, func() { _ = rc.Close() }, nil
}

func ProvideRateLimiter(cfg *config.Config) middleware.Allower {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideForecastHub creates the websocket feed. Returns nil when disabled.
func ProvideForecastHub(cfg *config.Config, log *applogger.Logger) (*stream.Hub, func()) {
	if !cfg.Stream.Enabled {
		return nil, func() {}
	}
	hub := stream.NewHub(cfg.Stream.PingInterval, cfg.Stream.SendBuffer, log)
	return hub, func() { _ = hub.Close() }
}

func ProvideForecastHandler(
	cfg *config.Config,
	log *applogger.Logger,
	svc *usecase.PredictionService,
	cache icache.BytesCache,
	limiter middleware.Allower,
	hub *stream.Hub,
) xhttp.Handler {
	opts := []api.HandlerOption{
		api.WithCache(cache, cfg.Forecast.CacheTTL),
		api.WithRateLimit(limiter),
	}
	if hub != nil {
		opts = append(opts, api.WithStream(hub.ServeWS))
	}
	return api.NewForecastEchoHandler(log, svc, opts...)
}

func ProvideHTTPServer(cfg *config.Config, handler xhttp.Handler, log *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(handler, log,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(metricsPath),
	)
}

// ProvideKafkaProducer creates the producer shared by the forecast publisher
// and the log collector. Returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Compression, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger, cfg.Kafka.Producer.Async),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopics(cfg.Kafka.AutoCreateTopics),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	log.Info("kafka producer ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("forecasts_topic", cfg.Kafka.ForecastsTopic),
	)
	log.AddCollector(&applogger.CollectionConfig{
		Topic:     cfg.Kafka.LogsTopic,
		Publisher: producer,
	})
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideForecastPublisher fans scheduled forecasts out to Kafka and the
// websocket feed, whichever are enabled. Returns nil when neither is.
func ProvideForecastPublisher(producer *pkgkafka.Producer, hub *stream.Hub, cfg *config.Config) repository.ForecastPublisher {
	var sinks []repository.ForecastPublisher
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaForecastPublisher(producer, cfg.Kafka.ForecastsTopic))
	}
	if hub != nil {
		sinks = append(sinks, hub)
	}
	if len(sinks) == 0 {
		return nil
	}
	return internalrepo.NewMultiForecastPublisher(sinks...)
}

func ProvideForecastScheduler(
	cfg *config.Config,
	svc *usecase.PredictionService,
	pub repository.ForecastPublisher,
	log *applogger.Logger,
) *usecase.ForecastScheduler {
	return usecase.NewForecastScheduler(svc, pub, cfg.Forecast.Interval, log)
}

// ProvideKafkaConsumer subscribes the observations handler. Returns nil when
// Kafka is disabled.
func ProvideKafkaConsumer(
	cfg *config.Config,
	svc *usecase.PredictionService,
	m repository.Metrics,
	log *applogger.Logger,
) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewKafkaObservationsHandler(cfg.Kafka.ObservationsTopic, svc, m, log))
	consumer.WithConsumerHook(pkgkafka.NewHookChain(latencyHook(m), deadLetterHook(m)))
	return consumer, nil
}

// latencyHook records per-message handling time.
func latencyHook(m repository.Metrics) pkgkafka.ConsumerHook {
	return pkgkafka.HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
			return pkgkafka.WithStartTime(ctx, time.Now()), km, data, nil
		},
		After: func(ctx context.Context, topic string, _ kafka.Message, _ []byte, _ error) {
			if start, ok := pkgkafka.StartTime(ctx); ok {
				m.RecordLatency("consume_"+topic, time.Since(start).Seconds())
			}
		},
	}
}

// deadLetterHook counts messages that failed permanently.
func deadLetterHook(m repository.Metrics) pkgkafka.ConsumerHook {
	return pkgkafka.HookFuncs{
		Err: func(context.Context, string, kafka.Message, []byte, error) {
			m.RecordError("consume_dead_lettered")
		},
	}
}

func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	scheduler *usecase.ForecastScheduler,
	consumer *pkgkafka.Consumer,
) *server.App {
	return server.New(cfg, log, httpServer, scheduler, consumer)
}
