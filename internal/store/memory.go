package store

import (
    "context"
    "errors"
    "sync"

    "github.com/jaminalder/codex-minimax/internal/domain"
)

// ErrUnfinished is returned when recording a game that has no outcome yet.
var ErrUnfinished = errors.New("game not finished")

// Memory is an in-process scoreboard.
type Memory struct {
    mu      sync.Mutex
    tally   Tally
    records []Record
}

func NewMemory() *Memory { return &Memory{} }

// Record adds a finished game.
func (m *Memory) Record(ctx context.Context, r Record) error {
    if r.Outcome == domain.InProgress {
        return ErrUnfinished
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    m.tally.add(r.Outcome)
    m.records = append(m.records, r)
    return nil
}

// Totals returns the current tally.
func (m *Memory) Totals(ctx context.Context) (Tally, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.tally, nil
}

// Records returns a copy of every recorded game, oldest first.
func (m *Memory) Records() []Record {
    m.mu.Lock()
    defer m.mu.Unlock()
    return append([]Record(nil), m.records...)
}
