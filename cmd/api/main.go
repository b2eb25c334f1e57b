package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"kimlik.org/internal/authz"
	"kimlik.org/internal/directory"
	"kimlik.org/internal/httpapi"
	"kimlik.org/internal/obs"
	"kimlik.org/internal/store/pg"
	"kimlik.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	// Инициализация observability (регистрация метрик, JSON-логгер и т.п.)
	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Хранилище: PostgreSQL при заданном DSN, иначе in-memory для разработки
	var (
		store directory.Store
		db    *sql.DB
	)
	if dsn := os.Getenv("KIMLIK_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		store = pgStore
		db = pgStore.DB()
	} else {
		log.Println("KIMLIK_PG_DSN is not set, using in-memory store")
		store = directory.NewInMemory()
	}

	dir, err := directory.NewService(store)
	if err != nil {
		log.Fatalf("directory service: %v", err)
	}
	auth, err := authz.NewService(dir)
	if err != nil {
		log.Fatalf("authz service: %v", err)
	}

	// HTTP API
	api := httpapi.New(dir, auth, stream.New(), httpapi.ReadyProbe{DB: db}, version)

	addr := os.Getenv("KIMLIK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(), // уже обёрнут метриками в httpapi
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting kimlik-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
