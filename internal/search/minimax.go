// Package search picks moves by exhaustive minimax over a domain.Board.
// Every remaining line of play is explored; there is no pruning, no cache and
// no depth limit, so anything past a 3x3 board is out of reach.
package search

import (
    "errors"
    "math"

    "github.com/jaminalder/codex-minimax/internal/domain"
)

// ErrInvalidSearchState is returned when asked for a move on a finished board.
var ErrInvalidSearchState = errors.New("no move to search: game is over or board is full")

// Stats counts the positions visited by one search.
type Stats struct {
    Nodes int
}

// Minimax returns the game value of b with toMove to play. Computer maximizes
// and Human minimizes the outcome score.
func Minimax(b *domain.Board, toMove domain.Side) int {
    var st Stats
    return minimax(b, toMove, &st)
}

func minimax(b *domain.Board, toMove domain.Side, st *Stats) int {
    st.Nodes++
    if out := b.EvaluateTerminal(); out != domain.InProgress {
        return out.Score()
    }
    maximizing := toMove == domain.Computer
    best := math.MaxInt
    if maximizing {
        best = math.MinInt
    }
    for _, p := range b.EmptyCells() {
        score := trial(b, p, toMove, st)
        if maximizing && score > best || !maximizing && score < best {
            best = score
        }
    }
    return best
}

// trial scores p for side with the speculative mark released on return.
func trial(b *domain.Board, p domain.Position, side domain.Side, st *Stats) int {
    release := b.Trial(p, side)
    defer release()
    return minimax(b, side.Opponent(), st)
}

// BestMove scores every empty cell for side, assuming optimal replies, and
// returns the best one with its score. Equal scores keep the first cell in
// row-major order.
func BestMove(b *domain.Board, side domain.Side) (domain.Position, int, Stats, error) {
    var st Stats
    if side != domain.Human && side != domain.Computer {
        return domain.Position{}, 0, st, ErrInvalidSearchState
    }
    if b.EvaluateTerminal() != domain.InProgress {
        return domain.Position{}, 0, st, ErrInvalidSearchState
    }
    var (
        best      domain.Position
        bestScore int
        found     bool
    )
    for _, p := range b.EmptyCells() {
        score := trial(b, p, side, &st)
        if !found || better(side, score, bestScore) {
            best, bestScore, found = p, score, true
        }
    }
    if !found {
        return domain.Position{}, 0, st, ErrInvalidSearchState
    }
    return best, bestScore, st, nil
}

func better(side domain.Side, score, than int) bool {
    if side == domain.Computer {
        return score > than
    }
    return score < than
}

// ChooseBestMove returns the position BestMove settles on.
func ChooseBestMove(b *domain.Board, side domain.Side) (domain.Position, error) {
    p, _, _, err := BestMove(b, side)
    return p, err
}
