package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sniperbusiness/ebook-funnel/internal/infra/http/handlers"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/http/middleware"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/queue"
)

type routerConfig struct {
	AllowedOrigins []string
	UploadsDir     string

	Prospects *handlers.ProspectHandler
	Ebooks    *handlers.EbookHandler
	Health    *handlers.HealthHandler
}

func newRouter(cfg routerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.AdminIDHeader, middleware.AdminRoleHeader},
	}))

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))

	r.Route("/prospects", func(r chi.Router) {
		r.Post("/", cfg.Prospects.Create)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", cfg.Prospects.List)
			r.Get("/stats", cfg.Prospects.Stats)
			r.Get("/verification-stats", cfg.Prospects.VerificationStats)
			r.Put("/{id}/status", cfg.Prospects.UpdateStatus)
			r.Post("/verify/{id}", cfg.Prospects.VerifyOne)
			r.Post("/verify-batch", cfg.Prospects.VerifyBatch)
		})
	})

	r.Route("/ebooks", func(r chi.Router) {
		r.Get("/public", cfg.Ebooks.ListVisible)
		r.Get("/public/{id}", cfg.Ebooks.GetPublic)
		r.With(middleware.RequireAdmin).Get("/", cfg.Ebooks.List)
	})

	return r
}

func rabbitConn(r *queue.RabbitMQ) *amqp.Connection {
	if r == nil {
		return nil
	}
	return r.Conn
}
