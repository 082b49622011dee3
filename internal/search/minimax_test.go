package search

import (
    "testing"

    "github.com/jaminalder/codex-minimax/internal/domain"
)

// setup builds a board from rows of 'H', 'C' and '.' by replaying the marks
// as speculative trials that are never released.
func setup(t *testing.T, toMove domain.Side, rows ...string) *domain.Board {
    t.Helper()
    b, err := domain.New(len(rows), toMove)
    if err != nil {
        t.Fatalf("domain.New: %v", err)
    }
    for r, line := range rows {
        for c, ch := range line {
            switch ch {
            case 'H':
                b.Trial(domain.Position{Row: r, Col: c}, domain.Human)
            case 'C':
                b.Trial(domain.Position{Row: r, Col: c}, domain.Computer)
            }
        }
    }
    b.EvaluateTerminal()
    return b
}

func occupancy(b *domain.Board) []domain.Side {
    var out []domain.Side
    for r := 0; r < b.Size(); r++ {
        for c := 0; c < b.Size(); c++ {
            cell, _ := b.CellAt(domain.Position{Row: r, Col: c})
            out = append(out, cell.Occupant)
        }
    }
    return out
}

func TestMinimaxEmptyBoardIsDraw(t *testing.T) {
    for _, side := range []domain.Side{domain.Computer, domain.Human} {
        b := setup(t, side, "...", "...", "...")
        if got := Minimax(b, side); got != domain.Tie.Score() {
            t.Fatalf("empty board with %v to move: expected %d, got %d", side, domain.Tie.Score(), got)
        }
    }
}

func TestOpeningMoveIsCornerOrCenter(t *testing.T) {
    b := setup(t, domain.Computer, "...", "...", "...")
    p, score, st, err := BestMove(b, domain.Computer)
    if err != nil {
        t.Fatalf("BestMove: %v", err)
    }
    corner := (p.Row == 0 || p.Row == 2) && (p.Col == 0 || p.Col == 2)
    center := p.Row == 1 && p.Col == 1
    if !corner && !center {
        t.Fatalf("expected a corner or the center, got %v", p)
    }
    if score != 0 {
        t.Fatalf("expected drawn opening, got score %d", score)
    }
    if st.Nodes == 0 {
        t.Fatalf("expected visited nodes to be counted")
    }
    // row-major tie-break lands on the first corner
    if p != (domain.Position{Row: 0, Col: 0}) {
        t.Fatalf("expected (0,0) from row-major tie-break, got %v", p)
    }
}

func TestComputerTakesImmediateWin(t *testing.T) {
    b := setup(t, domain.Computer,
        "CC.",
        "HH.",
        "...",
    )
    p, score, _, err := BestMove(b, domain.Computer)
    if err != nil {
        t.Fatalf("BestMove: %v", err)
    }
    if p != (domain.Position{Row: 0, Col: 2}) || score != 1 {
        t.Fatalf("expected winning cell (0,2) with score 1, got %v score %d", p, score)
    }
}

func TestHumanSideMinimizes(t *testing.T) {
    b := setup(t, domain.Human,
        "HH.",
        "CC.",
        "...",
    )
    p, score, _, err := BestMove(b, domain.Human)
    if err != nil {
        t.Fatalf("BestMove: %v", err)
    }
    if p != (domain.Position{Row: 0, Col: 2}) || score != -1 {
        t.Fatalf("expected winning cell (0,2) with score -1, got %v score %d", p, score)
    }
}

func TestComputerBlocksThreat(t *testing.T) {
    b := setup(t, domain.Computer,
        "HH.",
        ".C.",
        "...",
    )
    p, err := ChooseBestMove(b, domain.Computer)
    if err != nil {
        t.Fatalf("ChooseBestMove: %v", err)
    }
    if p != (domain.Position{Row: 0, Col: 2}) {
        t.Fatalf("expected block at (0,2), got %v", p)
    }
}

func TestTieBreakIsFirstInRowMajorOrder(t *testing.T) {
    // (0,1) and (1,0) both win for Computer
    b := setup(t, domain.Computer,
        "C.C",
        ".HH",
        "CH.",
    )
    for _, p := range []domain.Position{{Row: 0, Col: 1}, {Row: 1, Col: 0}} {
        release := b.Trial(p, domain.Computer)
        out := b.EvaluateTerminal()
        release()
        if out != domain.ComputerWin {
            t.Fatalf("expected %v to win outright, got %v", p, out)
        }
    }
    p, score, _, err := BestMove(b, domain.Computer)
    if err != nil {
        t.Fatalf("BestMove: %v", err)
    }
    if p != (domain.Position{Row: 0, Col: 1}) || score != 1 {
        t.Fatalf("expected (0,1) with score 1, got %v score %d", p, score)
    }
}

func TestSearchLeavesBoardUntouched(t *testing.T) {
    b := setup(t, domain.Computer,
        "H..",
        ".C.",
        "..H",
    )
    before, res, turn := occupancy(b), b.Result(), b.Turn()
    if _, err := ChooseBestMove(b, domain.Computer); err != nil {
        t.Fatalf("ChooseBestMove: %v", err)
    }
    after := occupancy(b)
    for i := range before {
        if before[i] != after[i] {
            t.Fatalf("cell %d changed from %v to %v", i, before[i], after[i])
        }
    }
    if b.Result() != res || b.Turn() != turn {
        t.Fatalf("search changed result or turn")
    }
}

func TestBestMoveRejectsFinishedBoards(t *testing.T) {
    full := setup(t, domain.Computer,
        "HCH",
        "HCC",
        "CHH",
    )
    if _, err := ChooseBestMove(full, domain.Computer); err != ErrInvalidSearchState {
        t.Fatalf("expected ErrInvalidSearchState on full board, got %v", err)
    }
    won := setup(t, domain.Computer,
        "HHH",
        "CC.",
        "...",
    )
    if _, err := ChooseBestMove(won, domain.Computer); err != ErrInvalidSearchState {
        t.Fatalf("expected ErrInvalidSearchState on won board, got %v", err)
    }
    open := setup(t, domain.Computer, "...", "...", "...")
    if _, err := ChooseBestMove(open, domain.Nobody); err != ErrInvalidSearchState {
        t.Fatalf("expected ErrInvalidSearchState for Nobody, got %v", err)
    }
}

func TestMinimaxTerminalReturnsOutcomeScore(t *testing.T) {
    won := setup(t, domain.Human,
        "CCC",
        "HH.",
        "...",
    )
    if got := Minimax(won, domain.Human); got != 1 {
        t.Fatalf("expected 1 for computer line, got %d", got)
    }
}

func TestSingleCellBoard(t *testing.T) {
    b := setup(t, domain.Computer, ".")
    p, score, _, err := BestMove(b, domain.Computer)
    if err != nil {
        t.Fatalf("BestMove: %v", err)
    }
    if p != (domain.Position{}) || score != 1 {
        t.Fatalf("expected (0,0) with score 1, got %v score %d", p, score)
    }
}
