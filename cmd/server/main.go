package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"github.com/ayang/library-lending/internal/auth"
	"github.com/ayang/library-lending/internal/books"
	"github.com/ayang/library-lending/internal/config"
	"github.com/ayang/library-lending/internal/middleware"
	"github.com/ayang/library-lending/internal/notify"
	"github.com/ayang/library-lending/internal/scanner"
	"github.com/ayang/library-lending/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── Redis (optional, backs the scanner's alert dedupe) ───
	var alertLog scanner.AlertLog
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		defer rdb.Close()
		alertLog = scanner.NewRedisAlertLog(rdb)
	}

	// ── Mailer ───────────────────────────────────────────────
	mailer, err := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailAddr, cfg.EmailPass, cfg.SMTPSSL)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	bookHandler := books.NewHandler(pgStore)
	authHandler := auth.NewHandler(pgStore, tokens)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Ledger routes
	r.Get("/getLendoutTimes", bookHandler.GetLendoutTimes)
	r.Post("/borrow", bookHandler.Borrow)
	r.Post("/return", bookHandler.Return)
	r.Get("/get_overdue", bookHandler.GetOverdue)
	r.Get("/books", bookHandler.ListBooks)

	// Manager routes
	r.Post("/signup", authHandler.Signup)
	r.Post("/login", authHandler.Login)
	r.With(middleware.RequireAuth(tokens)).Get("/me", authHandler.Me)

	// ── Overdue scanner ──────────────────────────────────────
	sweep := scanner.New(pgStore, mailer, alertLog, cfg.AlertRecipient)
	sched := cron.New()
	if _, err := sched.AddFunc("0 0 * * *", func() {
		scanCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		sweep.Scan(scanCtx)
	}); err != nil {
		log.Fatalf("schedule overdue scan: %v", err)
	}
	sched.Start()

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	<-sched.Stop().Done()
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
