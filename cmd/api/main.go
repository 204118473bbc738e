package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/config"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/database"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/http/handlers"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/integration/sbc"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/logger"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/mail"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/queue"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/worker"
	"github.com/sniperbusiness/ebook-funnel/internal/usecase"
)

var build = "develop"

func main() {
	log, err := logger.New("ebook-funnel")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "error", err)
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	// =========================================================================
	// Configuration

	cfg, help, err := config.Load(build)
	if err != nil {
		return err
	}
	if help != "" {
		fmt.Println(help)
		return nil
	}
	log.Infow("startup", "version", build, "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// Database

	log.Infow("startup", "status", "initializing database support")

	db, err := database.NewDBConnection(ctx, database.Config{
		URL:          cfg.DB.URL,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		ConnLifetime: cfg.DB.ConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Infow("shutdown", "status", "stopping database support")
		db.Close()
	}()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("updating database schema: %w", err)
	}

	// 1. Repositórios
	prospectRepo := database.NewProspectRepository(db)
	ebookRepo := database.NewEbookRepository(db)

	// 2. Gateways
	transport := mail.NewTransport(mail.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		User:       cfg.SMTP.User,
		Password:   cfg.SMTP.Pass,
		Secure:     cfg.SMTP.Secure,
		SkipVerify: cfg.SMTP.SkipVerify,
		From:       cfg.SMTP.From,
	}, log)
	sbcClient := sbc.NewClient(cfg.SBC.URL, cfg.SBC.Timeout, log)

	deliverUC := usecase.NewDeliverEbooksUseCase(ebookRepo, transport, cfg.Uploads.Dir, cfg.SMTP.From, log)

	// Background loops stop on ctx and are drained before the deferred
	// closes above run, including on early returns.
	var workers sync.WaitGroup

	// 3. Entrega: fila quando configurada, senão em processo
	var dispatcher usecase.EbookDispatcher = deliverUC
	var rabbitMQ *queue.RabbitMQ
	if cfg.AMQP.URL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.AMQP.URL)
		if err != nil {
			return fmt.Errorf("connecting to rabbitmq: %w", err)
		}
		defer rabbitMQ.Close()

		dispatcher = queue.NewProducer(rabbitMQ.Ch)

		deliveryWorker := queue.NewWorker(rabbitMQ.Ch, deliverUC, log)
		workers.Go(func() {
			if err := deliveryWorker.Start(ctx, queue.QueueName); err != nil {
				log.Errorw("delivery worker stopped", "error", err)
			}
		})
	}

	// 4. UseCases
	createUC := usecase.NewCreateProspectUseCase(prospectRepo, dispatcher, cfg.Mail.DeliveryTimeout, log)
	listUC := usecase.NewListProspectsUseCase(prospectRepo)
	updateStatusUC := usecase.NewUpdateStatusUseCase(prospectRepo)
	statsUC := usecase.NewProspectStatsUseCase(prospectRepo)
	verifyUC := usecase.NewVerifyMembershipUseCase(prospectRepo, sbcClient, log)

	defer drain(stop, &workers, createUC)

	verificationWorker := worker.NewVerificationWorker(verifyUC, cfg.Verification.BatchSize, cfg.Verification.Interval, log)
	workers.Go(func() { verificationWorker.Start(ctx) })

	// 5. Handlers
	prospectHandler := handlers.NewProspectHandler(createUC, listUC, updateStatusUC, statsUC, verifyUC, log)
	prospectHandler.BatchWriteTimeout = handlers.BatchWriteTimeout(usecase.MaxVerificationBatch, usecase.VerificationDelay, cfg.SBC.Timeout)
	workers.Go(func() { prospectHandler.RateLimiter().Cleanup(ctx, 10*time.Minute) })

	router := newRouter(routerConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		UploadsDir:     cfg.Uploads.Dir,
		Prospects:      prospectHandler,
		Ebooks:         handlers.NewEbookHandler(ebookRepo, log),
		Health:         handlers.NewHealthHandler(db, rabbitConn(rabbitMQ), transport, build),
	})

	// =========================================================================
	// Start API Server

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("startup", "status", "api router started", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Infow("shutdown", "status", "shutdown started")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	log.Infow("shutdown", "status", "shutdown complete")
	return nil
}

// drain cancels the background loops and blocks until they and any pending
// ebook deliveries have returned, so the connections they use can be closed.
func drain(stop context.CancelFunc, workers *sync.WaitGroup, deliveries interface{ Wait() }) {
	stop()
	workers.Wait()
	deliveries.Wait()
}
