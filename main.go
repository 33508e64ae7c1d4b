package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pos-terminal/internal/config"
	"pos-terminal/internal/gateway"
	httpapi "pos-terminal/internal/http"
	"pos-terminal/internal/logger"
	"pos-terminal/internal/notify"
	"pos-terminal/internal/pos"
	"pos-terminal/internal/push"
	"pos-terminal/internal/queue"
	"pos-terminal/internal/receipt"
	"pos-terminal/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stopSignals := context.WithCancel(context.Background())
	defer stopSignals()

	gw := gateway.New(cfg.BackendBaseURL, cfg.BackendTimeout, log)
	feed := notify.NewFeed(100)
	session := pos.NewSession(gw, feed, log)

	var store *storage.ObjectStore
	if cfg.ReceiptArchiveEnabled() {
		store, err = storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
		})
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("object store init failed", zap.Error(err))
			}
			log.Warn("object store init failed; continuing without receipt archive", zap.Error(err))
			store = nil
		}
	} else {
		log.Info("receipt archive disabled (object store not configured)")
	}
	receipts := receipt.NewService(store, log)

	coalescer := push.NewCoalescer()

	var channel push.Channel
	switch cfg.PushMode {
	case "ws":
		channel = push.NewWebsocketChannel(cfg.PushWSURL, cfg.WSHeartbeatInterval, log)
	case "amqp":
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without push channel", zap.Error(err))
		} else {
			defer qc.Close()
			amqpChannel, err := push.NewAMQPChannel(qc, cfg.TerminalID, log)
			if err != nil {
				if cfg.Env == "production" {
					log.Fatal("rabbitmq topology failed", zap.Error(err))
				}
				log.Warn("rabbitmq topology failed; continuing without push channel", zap.Error(err))
			} else {
				channel = amqpChannel
			}
		}
	case "off":
		log.Info("push channel disabled (PUSH_MODE=off)")
	default:
		log.Warn("unknown push mode; push channel disabled", zap.String("mode", cfg.PushMode))
	}

	if channel != nil {
		go func() {
			if err := channel.Run(ctx, coalescer.Signal); err != nil && ctx.Err() == nil {
				log.Error("push channel stopped", zap.Error(err))
			}
		}()
	}

	// Resync loop: one full refresh per coalesced signal.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-coalescer.Wait():
				refreshCtx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
				_ = session.Refresh(refreshCtx)
				cancel()
			}
		}
	}()

	// Initial load. The terminal still starts when the backend is down; the
	// first push signal or manual refresh recovers.
	initialCtx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
	if err := session.Refresh(initialCtx); err != nil {
		log.Warn("initial data load failed", zap.Error(err))
	} else {
		feed.Notify(pos.NoticeSuccess, "System is online and connected.")
	}
	cancel()

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(session, feed, receipts, log, cfg, coalescer.Signal),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("terminal api ready", zap.String("base", "/api"))
		log.Info("pos terminal listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopSignals()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
