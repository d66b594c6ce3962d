// Mentor Worker — обрабатывает запросы из очереди.
//
// Worker:
//   - Получает assist.pending из RabbitMQ
//   - Прогоняет запрос через pipeline и сохраняет историю
//   - Публикует ответ в assist.completed
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Mentor/internal/app"
	"github.com/shaiso/Mentor/internal/config"
	"github.com/shaiso/Mentor/internal/mq"
	"github.com/shaiso/Mentor/internal/telemetry"
	"github.com/shaiso/Mentor/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting mentor-worker")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	services, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build services", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	// RabbitMQ обязателен: без очереди worker'у нечего делать
	mqConn, err := mq.NewConnection(cfg.AMQP.URL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	workerCfg := worker.Config{
		Pipeline:    services.Pipeline,
		Publisher:   mq.NewPublisher(mqConn, logger),
		Conn:        mqConn,
		Concurrency: cfg.Worker.Concurrency,
		Prefetch:    cfg.Worker.Prefetch,
		Logger:      logger,
	}
	if services.Requests != nil {
		workerCfg.Records = services.Requests
	}

	w := worker.New(workerCfg)
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	w.Stop()
	logger.Info("mentor-worker stopped")
}
