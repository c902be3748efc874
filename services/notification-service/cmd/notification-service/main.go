package main

import (
	"context"
	"net/http"
	"time"

	"github.com/manyminds/slotbooking/libs/config"
	"github.com/manyminds/slotbooking/libs/httpx"
	"github.com/manyminds/slotbooking/libs/kafkax"
	"github.com/manyminds/slotbooking/libs/mail"
	"github.com/manyminds/slotbooking/libs/notice"
	otelx "github.com/manyminds/slotbooking/libs/otel"
	"github.com/manyminds/slotbooking/libs/redisx"
	"github.com/manyminds/slotbooking/libs/runtime"
	"github.com/manyminds/slotbooking/services/notification-service/internal/consumer"
	"github.com/manyminds/slotbooking/services/notification-service/internal/inbox"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
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
	sender, err := mail.SenderFromEnv(logger)
	if err != nil {
		panic(err)
	}
	settings, err := notice.SettingsFromEnv(location)
	if err != nil {
		panic(err)
	}
	notifier, err := notice.NewNotifier(sender, settings, logger)
	if err != nil {
		panic(err)
	}

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
		logger.Error("redis connection failed", "err", err)
		panic(err)
	}
	var eventInbox consumer.Inbox
	if rdb != nil {
		defer rdb.Close()
		eventInbox = inbox.NewRedis(rdb, "notification-inbox", inbox.DefaultTTL)
	} else {
		logger.Warn("REDIS_ADDR not set; deduplicating in memory only")
		eventInbox = inbox.NewMemory(inbox.DefaultTTL)
	}

	brokers, err := config.RequiredString("KAFKA_BROKERS")
	if err != nil {
		panic(err)
	}
	consumerCfg := consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
		Topic:   config.String("BOOKING_TOPIC", notice.EventType),
	}
	eventConsumer := consumer.New(logger, consumer.NewReader(consumerCfg), eventInbox, consumerCfg,
		consumer.BookingHandler(notifier, logger))
	dlqWriter, err := kafkax.NewWriter(brokers)
	if err != nil {
		panic(err)
	}
	defer dlqWriter.Close()
	eventConsumer.WithDeadLetter(dlqWriter, config.String("BOOKING_DLQ_TOPIC", "booking.request.dlq.v1"))
	go eventConsumer.Run(ctx)
	logger.Info("consuming booking requests", "topic", consumerCfg.Topic, "provider", sender.ProviderID())

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "redis", Check: redisx.ReadyCheck(rdb)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	runtime.Serve(ctx, srv, logger, 10*time.Second)
}
