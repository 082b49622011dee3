package web

import (
    "log"
    "net/http"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/jaminalder/codex-minimax/internal/app"
)

// Config tunes the HTTP surface.
type Config struct {
    DefaultSize int
    // Logger receives request and error logs; nil keeps request logging off.
    Logger *log.Logger
}

// NewServer wires routes with default settings and returns an http.Handler.
func NewServer(s *app.Service) http.Handler { return NewServerWithConfig(s, Config{}) }

// NewServerWithConfig wires routes, installs the board renderer on s for
// broadcasts and returns an http.Handler.
func NewServerWithConfig(s *app.Service, cfg Config) http.Handler {
    if cfg.DefaultSize < 1 || cfg.DefaultSize > s.MaxSize() {
        cfg.DefaultSize = s.MaxSize()
    }
    logger := cfg.Logger
    if logger == nil {
        logger = log.Default()
    }
    h := &handlers{svc: s, tpl: loadTemplates(), log: logger, defaultSize: cfg.DefaultSize}
    s.SetRenderer(h.fragment)

    r := chi.NewRouter()
    if cfg.Logger != nil {
        r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: cfg.Logger, NoColor: true}))
    }
    r.Use(middleware.Recoverer)
    r.Get("/", h.index)
    r.Post("/game", h.create)
    r.Get("/stats", h.stats)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Get("/state", h.state)
        r.Post("/play", h.play)
        r.Post("/restart", h.restart)
        r.Get("/events", h.events)
        r.Get("/ws", h.socket)
    })
    return r
}
