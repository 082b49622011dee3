// Package store keeps the tally of finished games.
package store

import (
    "time"

    "github.com/jaminalder/codex-minimax/internal/domain"
)

// Record is one finished game.
type Record struct {
    GameID   string
    Size     int
    Outcome  domain.Outcome
    Finished time.Time
}

// Tally counts finished games from the human's point of view.
type Tally struct {
    Wins   int `json:"wins"`
    Losses int `json:"losses"`
    Ties   int `json:"ties"`
}

// Games is the number of finished games counted.
func (t Tally) Games() int { return t.Wins + t.Losses + t.Ties }

func (t *Tally) add(o domain.Outcome) {
    switch o {
    case domain.HumanWin:
        t.Wins++
    case domain.ComputerWin:
        t.Losses++
    case domain.Tie:
        t.Ties++
    }
}
