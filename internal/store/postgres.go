package store

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "github.com/jaminalder/codex-minimax/internal/domain"
    _ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
    id SERIAL PRIMARY KEY,
    game_id VARCHAR(64) NOT NULL,
    size INT NOT NULL,
    outcome VARCHAR(16) NOT NULL,
    finished_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Postgres stores one row per finished game.
type Postgres struct {
    db *sql.DB
}

// OpenPostgres connects to dsn and creates the results table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
    db, err := sql.Open("postgres", dsn)
    if err != nil {
        return nil, fmt.Errorf("error opening database: %w", err)
    }
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, fmt.Errorf("error connecting to the database: %w", err)
    }
    if _, err := db.ExecContext(ctx, schema); err != nil {
        db.Close()
        return nil, fmt.Errorf("error creating results table: %w", err)
    }
    return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

// Record inserts a finished game.
func (p *Postgres) Record(ctx context.Context, r Record) error {
    if r.Outcome == domain.InProgress {
        return ErrUnfinished
    }
    if r.Finished.IsZero() {
        r.Finished = time.Now()
    }
    _, err := p.db.ExecContext(ctx,
        "INSERT INTO results (game_id, size, outcome, finished_at) VALUES ($1, $2, $3, $4)",
        r.GameID, r.Size, r.Outcome.String(), r.Finished.UTC(),
    )
    if err != nil {
        return fmt.Errorf("insert result: %w", err)
    }
    return nil
}

// Totals aggregates every stored result.
func (p *Postgres) Totals(ctx context.Context) (Tally, error) {
    var t Tally
    err := p.db.QueryRowContext(ctx, `
SELECT
    COUNT(*) FILTER (WHERE outcome = $1),
    COUNT(*) FILTER (WHERE outcome = $2),
    COUNT(*) FILTER (WHERE outcome = $3)
FROM results`,
        domain.HumanWin.String(), domain.ComputerWin.String(), domain.Tie.String(),
    ).Scan(&t.Wins, &t.Losses, &t.Ties)
    if err != nil {
        return Tally{}, fmt.Errorf("query totals: %w", err)
    }
    return t, nil
}
