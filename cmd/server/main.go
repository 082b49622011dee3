package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/jaminalder/codex-minimax/internal/app"
    "github.com/jaminalder/codex-minimax/internal/config"
    "github.com/jaminalder/codex-minimax/internal/store"
    "github.com/jaminalder/codex-minimax/internal/web"
)

func main() {
    cfg, err := config.Load(os.Args[0], os.Args[1:], os.Getenv)
    if err != nil {
        log.Fatal("Failed to load configuration: ", err)
    }
    logger := log.New(os.Stderr, "", log.LstdFlags)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    var scores app.Scoreboard = store.NewMemory()
    if cfg.DatabaseURL != "" {
        pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
        if err != nil {
            log.Fatal("Failed to initialize database: ", err)
        }
        defer pg.Close()
        scores = pg
    }

    delay := cfg.Delay
    if delay == 0 {
        delay = -1 // reply at once
    }
    svc := app.NewServiceWithOptions(app.Options{
        MaxSize: cfg.MaxSize,
        Delay:   delay,
        Scores:  scores,
        Logger:  logger,
    })
    defer svc.Close()

    srv := &http.Server{
        Addr:              cfg.Addr,
        Handler:           web.NewServerWithConfig(svc, web.Config{DefaultSize: cfg.BoardSize, Logger: logger}),
        ReadHeaderTimeout: 5 * time.Second,
    }
    go func() {
        <-ctx.Done()
        shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        svc.Close()
        if err := srv.Shutdown(shutdownCtx); err != nil {
            logger.Printf("shutdown: %v", err)
        }
    }()

    logger.Printf("Server started on %s", cfg.Addr)
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
        logger.Fatal(err)
    }
    logger.Println("Server stopped")
}
