package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/manyminds/slotbooking/libs/config"
	"github.com/manyminds/slotbooking/libs/httpx"
	"github.com/manyminds/slotbooking/libs/kafkax"
	"github.com/manyminds/slotbooking/libs/mail"
	"github.com/manyminds/slotbooking/libs/notice"
	otelx "github.com/manyminds/slotbooking/libs/otel"
	"github.com/manyminds/slotbooking/libs/redisx"
	"github.com/manyminds/slotbooking/libs/runtime"
	"github.com/manyminds/slotbooking/services/booking-service/internal/availability"
	"github.com/manyminds/slotbooking/services/booking-service/internal/dispatch"
	"github.com/manyminds/slotbooking/services/booking-service/internal/handlers"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 64 << 10

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelCfg, err := otelx.ConfigFromEnv(service)
	if err != nil {
		panic(err)
	}
	otelShutdown, err := otelx.Setup(ctx, otelCfg)
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	location, err := config.Location("SLOT_TIMEZONE", "Europe/Berlin")
	if err != nil {
		panic(err)
	}
	catalog, err := availability.OpenCatalog(config.String("CATALOG_FILE", ""))
	if err != nil {
		panic(err)
	}
	logger.Info("slot catalog loaded", "dates", catalog.Len(), "timezone", location.String())

	redisDB, err := config.Int("REDIS_DB", 0)
	if err != nil {
		panic(err)
	}
	rdb, err := redisx.Open(ctx, redisx.Config{
		Addr:     config.String("REDIS_ADDR", ""),
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       redisDB,
	})
	if err != nil {
		logger.Error("redis connection failed; using in-process rate limiting", "err", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	mode := strings.ToLower(config.String("NOTIFY_MODE", "inline"))
	brokers := config.String("KAFKA_BROKERS", "")
	dispatcher, closer, err := newDispatcher(mode, brokers, location, logger)
	if err != nil {
		panic(err)
	}
	defer closer.Close()

	bookingHandler := handlers.NewBookingHandler(catalog, dispatcher, logger, location)
	bookLimit, err := newBookingLimiter(rdb, logger)
	if err != nil {
		panic(err)
	}

	kafkaCheck := kafkax.ReadyCheck("")
	if mode == "kafka" {
		kafkaCheck = kafkax.ReadyCheck(brokers)
	}
	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "redis", Check: redisx.ReadyCheck(rdb)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkaCheck},
	)
	mux.HandleFunc("/api/slots", bookingHandler.Slots)
	mux.Handle("/api/book", bookLimit(http.HandlerFunc(bookingHandler.Book)))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.PublicFormPolicy(config.List("CORS_ALLOWED_ORIGINS"))),
		httpx.WithBodyLimit(maxBodyBytes),
		httpx.WithTimeout(20*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	runtime.Serve(ctx, srv, logger, 10*time.Second)
}

// newDispatcher sends the operator email from this process ("inline") or hands
// the request to notification-service over Kafka ("kafka").
func newDispatcher(mode, brokers string, location *time.Location, logger *slog.Logger) (handlers.Dispatcher, io.Closer, error) {
	switch mode {
	case "kafka":
		writer, err := kafkax.NewWriter(brokers)
		if err != nil {
			return nil, nil, err
		}
		d := dispatch.NewKafkaDispatcher(writer, config.String("BOOKING_TOPIC", notice.EventType))
		logger.Info("booking dispatch via kafka", "brokers", brokers)
		return d, d, nil
	case "inline":
		sender, err := mail.SenderFromEnv(logger)
		if err != nil {
			return nil, nil, err
		}
		settings, err := notice.SettingsFromEnv(location)
		if err != nil {
			return nil, nil, err
		}
		n, err := notice.NewNotifier(sender, settings, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("booking dispatch inline", "provider", sender.ProviderID())
		return n, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("NOTIFY_MODE must be inline or kafka (got %q)", mode)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newBookingLimiter shares the limit across instances through Redis when it
// is available and keeps it per process otherwise.
func newBookingLimiter(rdb *redis.Client, logger *slog.Logger) (httpx.Middleware, error) {
	perMinute, err := config.Int("RATE_LIMIT_PER_MINUTE", 10)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		failOpen, err := config.Bool("RATE_LIMIT_FAIL_OPEN", true)
		if err != nil {
			return nil, err
		}
		return httpx.NewRedisRateLimiter(rdb, perMinute, time.Minute, "book").Middleware(logger, failOpen), nil
	}
	return httpx.NewRateLimiter(perMinute, time.Minute).Middleware(), nil
}
