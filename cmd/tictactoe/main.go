package main

import (
    "context"
    "log"
    "os"
    "os/signal"

    "github.com/jaminalder/codex-minimax/internal/config"
    "github.com/jaminalder/codex-minimax/internal/term"
)

func main() {
    cfg, err := config.Load(os.Args[0], os.Args[1:], os.Getenv)
    if err != nil {
        log.Fatal(err)
    }
    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
    defer stop()

    s := term.NewSession(os.Stdin, os.Stdout, term.NewRenderer(os.Stdout), term.Options{
        Size:  cfg.BoardSize,
        Delay: cfg.Delay,
    })
    if err := s.Run(ctx); err != nil && ctx.Err() == nil {
        log.Fatal(err)
    }
}
