package domain

import (
    "math/rand"
    "testing"
)

// helper to apply a sequence of moves for whichever side holds the turn
func playMoves(t *testing.T, b *Board, moves [][2]int) {
    t.Helper()
    for i, m := range moves {
        if !b.Place(Position{m[0], m[1]}, b.Turn()) {
            t.Fatalf("move %d (%v) rejected: %v", i, m, b.CanPlace(Position{m[0], m[1]}))
        }
    }
}

// fill sets occupants from rows of 'H', 'C' and '.' and runs a terminal check.
func fill(t *testing.T, b *Board, rows ...string) {
    t.Helper()
    if len(rows) != b.size {
        t.Fatalf("need %d rows, got %d", b.size, len(rows))
    }
    for r, line := range rows {
        for c, ch := range line {
            switch ch {
            case 'H':
                b.grid[r][c].Occupant = Human
            case 'C':
                b.grid[r][c].Occupant = Computer
            default:
                b.grid[r][c].Occupant = Nobody
            }
        }
    }
    b.EvaluateTerminal()
}

func mustNew(t *testing.T, size int, first Side) *Board {
    t.Helper()
    b, err := New(size, first)
    if err != nil {
        t.Fatalf("New(%d, %v): %v", size, first, err)
    }
    return b
}

func occupants(b *Board) [][]Side {
    out := make([][]Side, b.size)
    for r, row := range b.grid {
        for _, c := range row {
            out[r] = append(out[r], c.Occupant)
        }
    }
    return out
}

func TestNewBoardInitialState(t *testing.T) {
    b := mustNew(t, 3, Human)
    if b.Turn() != Human {
        t.Fatalf("expected Human to move, got %v", b.Turn())
    }
    if b.Result().Over || b.Result().Outcome != InProgress {
        t.Fatalf("expected game in progress, got %+v", b.Result())
    }
    if b.IsFull() {
        t.Fatalf("empty board reported full")
    }
    if n := len(b.EmptyCells()); n != 9 {
        t.Fatalf("expected 9 empty cells, got %d", n)
    }
    for r := 0; r < 3; r++ {
        for c := 0; c < 3; c++ {
            cell, err := b.CellAt(Position{r, c})
            if err != nil {
                t.Fatalf("CellAt(%d,%d): %v", r, c, err)
            }
            if cell.Pos != (Position{r, c}) || cell.Occupant != Nobody {
                t.Fatalf("unexpected cell %+v", cell)
            }
            want := Point{X: 50 + float64(c)*100, Y: 50 + float64(r)*100}
            if cell.Center != want {
                t.Fatalf("cell (%d,%d) center %v, want %v", r, c, cell.Center, want)
            }
        }
    }
}

func TestNewRejectsInvalidArguments(t *testing.T) {
    if _, err := New(0, Human); err != ErrInvalidSize {
        t.Fatalf("expected ErrInvalidSize, got %v", err)
    }
    if _, err := New(-2, Computer); err != ErrInvalidSize {
        t.Fatalf("expected ErrInvalidSize, got %v", err)
    }
    if _, err := New(3, Nobody); err != ErrInvalidSide {
        t.Fatalf("expected ErrInvalidSide, got %v", err)
    }
}

func TestNewRandomPicksBothSides(t *testing.T) {
    rnd := rand.New(rand.NewSource(7))
    seen := map[Side]bool{}
    for i := 0; i < 64; i++ {
        b, err := NewRandom(3, rnd)
        if err != nil {
            t.Fatalf("NewRandom: %v", err)
        }
        seen[b.Turn()] = true
    }
    if !seen[Human] || !seen[Computer] {
        t.Fatalf("expected both sides to start at least once, saw %v", seen)
    }
}

func TestCellAtOutOfBounds(t *testing.T) {
    b := mustNew(t, 3, Human)
    cases := []Position{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {5, 5}}
    for _, p := range cases {
        if _, err := b.CellAt(p); err != ErrOutOfBounds {
            t.Fatalf("expected ErrOutOfBounds for %v, got %v", p, err)
        }
    }
}

func TestPlaceRejectsInvalidAndOccupied(t *testing.T) {
    b := mustNew(t, 3, Human)
    if b.Place(Position{3, 0}, Human) {
        t.Fatalf("placement out of range accepted")
    }
    if err := b.CanPlace(Position{3, 0}); err != ErrOutOfBounds {
        t.Fatalf("expected ErrOutOfBounds, got %v", err)
    }
    if b.Place(Position{0, 0}, Nobody) {
        t.Fatalf("placement for Nobody accepted")
    }
    if !b.Place(Position{0, 0}, Human) {
        t.Fatalf("first move rejected")
    }
    before := occupants(b)
    turn := b.Turn()
    if b.Place(Position{0, 0}, Computer) {
        t.Fatalf("placement on occupied cell accepted")
    }
    if err := b.CanPlace(Position{0, 0}); err != ErrOccupied {
        t.Fatalf("expected ErrOccupied, got %v", err)
    }
    after := occupants(b)
    if after[0][0] != before[0][0] || b.Turn() != turn {
        t.Fatalf("rejected placement changed state")
    }
}

func TestTurnAlternatesAfterPlacement(t *testing.T) {
    b := mustNew(t, 3, Computer)
    if !b.Place(Position{1, 1}, Computer) {
        t.Fatalf("move rejected")
    }
    if b.Turn() != Human {
        t.Fatalf("expected Human to move, got %v", b.Turn())
    }
    if !b.Place(Position{0, 0}, Human) {
        t.Fatalf("move rejected")
    }
    if b.Turn() != Computer {
        t.Fatalf("expected Computer to move, got %v", b.Turn())
    }
}

func TestWinningLines(t *testing.T) {
    lines := map[string][]string{
        "row 0":    {"HHH", "...", "..."},
        "row 1":    {"...", "HHH", "..."},
        "row 2":    {"...", "...", "HHH"},
        "col 0":    {"H..", "H..", "H.."},
        "col 1":    {".H.", ".H.", ".H."},
        "col 2":    {"..H", "..H", "..H"},
        "diagonal": {"H..", ".H.", "..H"},
        "anti":     {"..H", ".H.", "H.."},
    }
    for name, rows := range lines {
        for _, side := range []Side{Human, Computer} {
            b := mustNew(t, 3, Human)
            marked := make([]string, len(rows))
            for i, r := range rows {
                if side == Computer {
                    r = replaceAll(r, 'H', 'C')
                }
                marked[i] = r
            }
            fill(t, b, marked...)
            want := winFor(side)
            if got := b.EvaluateTerminal(); got != want {
                t.Fatalf("%s for %v: expected %v, got %v", name, side, want, got)
            }
            if !b.Result().Over || b.Result().Winner() != side {
                t.Fatalf("%s for %v: unexpected result %+v", name, side, b.Result())
            }
        }
    }
}

func replaceAll(s string, from, to rune) string {
    out := []rune(s)
    for i, r := range out {
        if r == from {
            out[i] = to
        }
    }
    return string(out)
}

func TestHumanCompletesTopRow(t *testing.T) {
    b := mustNew(t, 3, Human)
    fill(t, b,
        "HH.",
        "CC.",
        "...",
    )
    if b.Result().Over {
        t.Fatalf("game should still be running")
    }
    if !b.Place(Position{0, 2}, Human) {
        t.Fatalf("winning move rejected")
    }
    r := b.Result()
    if !r.Over || r.Winner() != Human || r.Outcome != HumanWin {
        t.Fatalf("expected human win, got %+v", r)
    }
    if b.Turn() != Human {
        t.Fatalf("turn must freeze once the game is over, got %v", b.Turn())
    }
}

func TestFullBoardWithoutLineIsTie(t *testing.T) {
    b := mustNew(t, 3, Human)
    fill(t, b,
        "HCH",
        "HCC",
        "CHH",
    )
    if !b.IsFull() {
        t.Fatalf("expected full board")
    }
    if got := b.EvaluateTerminal(); got != Tie {
        t.Fatalf("expected Tie, got %v", got)
    }
    if !b.Result().Over || b.Result().Winner() != Nobody {
        t.Fatalf("unexpected result %+v", b.Result())
    }
}

func TestDrawByPlay(t *testing.T) {
    b := mustNew(t, 3, Human)
    playMoves(t, b, [][2]int{
        {0, 0}, {0, 1}, {0, 2},
        {1, 1}, {1, 0}, {1, 2},
        {2, 1}, {2, 0}, {2, 2},
    })
    if !b.Result().Over || b.Result().Outcome != Tie {
        t.Fatalf("expected tie, got %+v", b.Result())
    }
}

func TestGameOverBlocksFurtherMoves(t *testing.T) {
    b := mustNew(t, 3, Human)
    // Human takes the top row
    playMoves(t, b, [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}})
    if !b.Result().Over || b.Result().Winner() != Human {
        t.Fatalf("expected human win before extra move")
    }
    if b.Place(Position{2, 2}, Computer) {
        t.Fatalf("placement after game over accepted")
    }
    if err := b.CanPlace(Position{2, 2}); err != ErrGameOver {
        t.Fatalf("expected ErrGameOver, got %v", err)
    }
}

func TestIsFullOnlyWhenNoEmptyCell(t *testing.T) {
    b := mustNew(t, 2, Human)
    fill(t, b, "HC", "C.")
    if b.IsFull() {
        t.Fatalf("board with an empty cell reported full")
    }
    fill(t, b, "HC", "CH")
    if !b.IsFull() {
        t.Fatalf("expected full board")
    }
}

func TestPlaceThenRemoveRestoresBoard(t *testing.T) {
    b := mustNew(t, 3, Human)
    fill(t, b,
        "HH.",
        "CC.",
        "...",
    )
    for _, p := range b.EmptyCells() {
        for _, side := range []Side{Human, Computer} {
            before, res := occupants(b), b.Result()
            if !b.Place(p, side) {
                t.Fatalf("place %v rejected", p)
            }
            b.Remove(p)
            after := occupants(b)
            for r := range before {
                for c := range before[r] {
                    if before[r][c] != after[r][c] {
                        t.Fatalf("cell (%d,%d) changed after place/remove of %v", r, c, p)
                    }
                }
            }
            if b.Result() != res {
                t.Fatalf("result changed after place/remove of %v: %+v != %+v", p, b.Result(), res)
            }
        }
    }
}

func TestTrialReleaseRestoresCell(t *testing.T) {
    b := mustNew(t, 3, Computer)
    fill(t, b,
        "CC.",
        "HH.",
        "...",
    )
    release := b.Trial(Position{0, 2}, Computer)
    if b.EvaluateTerminal() != ComputerWin {
        t.Fatalf("expected speculative computer win")
    }
    release()
    if b.Result().Over {
        t.Fatalf("release must restore an unfinished result, got %+v", b.Result())
    }
    if c, _ := b.CellAt(Position{0, 2}); c.Occupant != Nobody {
        t.Fatalf("release left %v in the cell", c.Occupant)
    }
    if b.Turn() != Computer {
        t.Fatalf("trial must not touch the turn")
    }

    // occupied cells are never overwritten by a trial
    noop := b.Trial(Position{0, 0}, Human)
    noop()
    if c, _ := b.CellAt(Position{0, 0}); c.Occupant != Computer {
        t.Fatalf("trial on occupied cell cleared a real move")
    }
}

func TestAtMostOneWinnerAcrossRandomGames(t *testing.T) {
    rnd := rand.New(rand.NewSource(42))
    for game := 0; game < 500; game++ {
        size := 2 + rnd.Intn(3)
        b := mustNew(t, size, RandomSide(rnd))
        for !b.Result().Over {
            empty := b.EmptyCells()
            p := empty[rnd.Intn(len(empty))]
            if !b.Place(p, b.Turn()) {
                t.Fatalf("legal move %v rejected", p)
            }
            if b.hasLine(Human) && b.hasLine(Computer) {
                t.Fatalf("both sides hold a line on size %d", size)
            }
        }
        r := b.Result()
        if r.Outcome == Tie && !b.IsFull() {
            t.Fatalf("tie reported on a board with empty cells")
        }
    }
}

func TestLargerBoardAntiDiagonal(t *testing.T) {
    b := mustNew(t, 4, Computer)
    fill(t, b,
        "H..C",
        "H.C.",
        ".C.H",
        "C..H",
    )
    if got := b.EvaluateTerminal(); got != ComputerWin {
        t.Fatalf("expected ComputerWin, got %v", got)
    }
    fill(t, b,
        "HHHC",
        "C.C.",
        ".C.H",
        "...H",
    )
    if got := b.EvaluateTerminal(); got != InProgress {
        t.Fatalf("expected InProgress, got %v", got)
    }
}

func TestNearestCellTo(t *testing.T) {
    b := mustNew(t, 3, Human)
    cases := []struct {
        pt   Point
        want Position
    }{
        {Point{10, 10}, Position{0, 0}},
        {Point{250, 60}, Position{0, 2}},
        {Point{150, 150}, Position{1, 1}},
        {Point{299, 299}, Position{2, 2}},
        {Point{-40, 260}, Position{2, 0}},
        {Point{900, -900}, Position{0, 2}},
        // equidistant from (0,0) and (0,1): first in row-major order
        {Point{100, 50}, Position{0, 0}},
    }
    for _, tc := range cases {
        if got := b.NearestCellTo(tc.pt).Pos; got != tc.want {
            t.Fatalf("NearestCellTo(%v) = %v, want %v", tc.pt, got, tc.want)
        }
    }
}

func TestSnapshotIsDetached(t *testing.T) {
    b := mustNew(t, 3, Human)
    snap := b.Snapshot()
    if !b.Place(Position{1, 1}, Human) {
        t.Fatalf("move rejected")
    }
    if snap.Cells[1][1].Occupant != Nobody {
        t.Fatalf("snapshot shares cells with the board")
    }
    if snap.Turn != Human || snap.Size != 3 {
        t.Fatalf("unexpected snapshot %+v", snap)
    }
}

func TestOutcomeScores(t *testing.T) {
    if HumanWin.Score() != -1 || Tie.Score() != 0 || ComputerWin.Score() != 1 || InProgress.Score() != 0 {
        t.Fatalf("unexpected score mapping")
    }
    if Human.Opponent() != Computer || Computer.Opponent() != Human || Nobody.Opponent() != Nobody {
        t.Fatalf("unexpected opponent mapping")
    }
}
