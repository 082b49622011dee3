// Package config reads settings from flags, falling back to environment
// variables and then to defaults.
package config

import (
    "errors"
    "flag"
    "fmt"
    "os"
    "strconv"
    "time"
)

// Config holds runtime settings shared by the server and terminal entrypoints.
type Config struct {
    Addr        string
    BoardSize   int
    MaxSize     int
    Delay       time.Duration
    DatabaseURL string
}

// Defaults.
const (
    DefaultAddr      = ":8080"
    DefaultBoardSize = 3
    DefaultMaxSize   = 3
    DefaultDelay     = time.Second
)

var ErrInvalid = errors.New("invalid configuration")

// Load parses args (without the program name) against env lookups.
func Load(name string, args []string, getenv func(string) string) (Config, error) {
    if getenv == nil {
        getenv = os.Getenv
    }
    def := Config{
        Addr:        DefaultAddr,
        BoardSize:   DefaultBoardSize,
        MaxSize:     DefaultMaxSize,
        Delay:       DefaultDelay,
        DatabaseURL: getenv("DATABASE_URL"),
    }
    if v := getenv("TTT_ADDR"); v != "" {
        def.Addr = v
    }
    var err error
    if def.BoardSize, err = envInt(getenv, "TTT_BOARD_SIZE", def.BoardSize); err != nil {
        return Config{}, err
    }
    if def.MaxSize, err = envInt(getenv, "TTT_MAX_SIZE", def.MaxSize); err != nil {
        return Config{}, err
    }
    if v := getenv("TTT_COMPUTER_DELAY"); v != "" {
        d, err := time.ParseDuration(v)
        if err != nil {
            return Config{}, fmt.Errorf("%w: TTT_COMPUTER_DELAY=%q: %v", ErrInvalid, v, err)
        }
        def.Delay = d
    }

    cfg := def
    fs := flag.NewFlagSet(name, flag.ContinueOnError)
    fs.StringVar(&cfg.Addr, "addr", def.Addr, "HTTP listen address")
    fs.IntVar(&cfg.BoardSize, "size", def.BoardSize, "default board size")
    fs.IntVar(&cfg.MaxSize, "max-size", def.MaxSize, "largest board size accepted")
    fs.DurationVar(&cfg.Delay, "delay", def.Delay, "pause before the computer replies")
    fs.StringVar(&cfg.DatabaseURL, "db", def.DatabaseURL, "postgres DSN for the scoreboard (memory when empty)")
    if err := fs.Parse(args); err != nil {
        return Config{}, err
    }
    return cfg, cfg.Validate()
}

// Validate checks ranges.
func (c Config) Validate() error {
    if c.MaxSize < 1 {
        return fmt.Errorf("%w: max size %d", ErrInvalid, c.MaxSize)
    }
    if c.BoardSize < 1 || c.BoardSize > c.MaxSize {
        return fmt.Errorf("%w: board size %d not in 1..%d", ErrInvalid, c.BoardSize, c.MaxSize)
    }
    if c.Delay < 0 {
        return fmt.Errorf("%w: negative delay %v", ErrInvalid, c.Delay)
    }
    return nil
}

func envInt(getenv func(string) string, key string, def int) (int, error) {
    v := getenv(key)
    if v == "" {
        return def, nil
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        return 0, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
    }
    return n, nil
}
