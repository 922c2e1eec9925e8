package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"garantia/internal/intake"
	"garantia/internal/intake/handler"
	"garantia/internal/notify"
	"garantia/internal/platform/config"
	"garantia/internal/platform/httpserver"
	"garantia/internal/platform/logger"
	"garantia/internal/platform/metrics"
	"garantia/internal/processor"
	"garantia/internal/queue"
	"garantia/internal/ticketstore"
)

// main wires the intake side of the pipeline. With QUEUE_KIND=kafka it only
// publishes and cmd/worker does the processing; the default in-memory mode
// runs the whole pipeline in one process for development.
func main() {
	cfg := config.FromEnv()
	log := logger.New("ticket-intake")
	m := metrics.New(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var publisher queue.Publisher
	var inProcess *processor.Processor

	switch cfg.Queue.Kind {
	case "kafka":
		kp, err := queue.NewKafkaPublisher(ctx, queue.KafkaConfig{
			Brokers: cfg.Queue.Brokers,
			Topic:   cfg.Queue.Topic,
			Group:   cfg.Queue.Group,
		})
		if err != nil {
			log.Error("kafka publisher init failed", "error", err.Error())
			os.Exit(1)
		}
		defer kp.Close()
		publisher = kp
	default:
		mem := queue.NewMemory()
		publisher = mem
		inProcess = processor.New(
			mem,
			ticketstore.NewMemory(),
			notify.NewMemoryMarker(),
			notify.NewLogNotifier(log),
			log,
			m,
		)
	}

	svc := intake.NewService(publisher, log, m)
	h := handler.New(svc, log)
	srv := httpserver.New(cfg.Server.Addr, handler.NewRouter(h, log))

	g, ctx := errgroup.WithContext(ctx)

	if inProcess != nil {
		g.Go(func() error {
			if err := inProcess.RunPool(ctx, cfg.Workers); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info("starting ticket intake", "addr", cfg.Server.Addr, "queue", cfg.Queue.Kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}
