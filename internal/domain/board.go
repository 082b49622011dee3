package domain

import (
    "errors"
    "math"
    "math/rand"
)

// Side identifies who owns a mark. Nobody is the occupant of an empty cell.
type Side uint8

const (
    Nobody Side = iota
    Human
    Computer
)

// Opponent returns the other playing side; Nobody has no opponent.
func (s Side) Opponent() Side {
    switch s {
    case Human:
        return Computer
    case Computer:
        return Human
    default:
        return Nobody
    }
}

func (s Side) String() string {
    switch s {
    case Human:
        return "Human"
    case Computer:
        return "Computer"
    default:
        return "Nobody"
    }
}

// Outcome of a board configuration.
type Outcome uint8

const (
    InProgress Outcome = iota
    HumanWin
    ComputerWin
    Tie
)

// Score maps an outcome onto the value the search compares:
// Human -1, Tie 0, Computer +1.
func (o Outcome) Score() int {
    switch o {
    case HumanWin:
        return -1
    case ComputerWin:
        return 1
    default:
        return 0
    }
}

// Winner returns the side that completed a line, or Nobody.
func (o Outcome) Winner() Side {
    switch o {
    case HumanWin:
        return Human
    case ComputerWin:
        return Computer
    default:
        return Nobody
    }
}

func (o Outcome) String() string {
    switch o {
    case HumanWin:
        return "human_win"
    case ComputerWin:
        return "computer_win"
    case Tie:
        return "tie"
    default:
        return "in_progress"
    }
}

func winFor(s Side) Outcome {
    if s == Human {
        return HumanWin
    }
    return ComputerWin
}

// CellSize is the rendered edge length of one cell, in pixels.
const CellSize = 100.0

// Position is a cell's (row, col) identity.
type Position struct {
    Row int
    Col int
}

// Point is an arbitrary 2-D coordinate in rendered pixel space.
type Point struct {
    X float64
    Y float64
}

// Cell is one grid position and its current occupant.
type Cell struct {
    Pos      Position
    Center   Point
    Occupant Side
}

// Result caches the last terminal check.
type Result struct {
    Over    bool
    Outcome Outcome
}

// Winner is the winning side, Nobody for a tie or a running game.
func (r Result) Winner() Side { return r.Outcome.Winner() }

// Errors returned by domain operations.
var (
    ErrInvalidSize = errors.New("invalid board size")
    ErrInvalidSide = errors.New("invalid side")
    ErrOutOfBounds = errors.New("out of bounds")
    ErrOccupied    = errors.New("cell occupied")
    ErrGameOver    = errors.New("game over")
)

// Board is a size x size grid with turn and result state. A Board is owned by
// a single caller; it does no locking.
type Board struct {
    size   int
    grid   [][]Cell
    turn   Side
    result Result
}

// New returns an empty board with first to move.
func New(size int, first Side) (*Board, error) {
    if size < 1 {
        return nil, ErrInvalidSize
    }
    if first != Human && first != Computer {
        return nil, ErrInvalidSide
    }
    b := &Board{size: size, turn: first}
    b.grid = make([][]Cell, size)
    for r := range b.grid {
        row := make([]Cell, size)
        for c := range row {
            row[c] = Cell{
                Pos:    Position{Row: r, Col: c},
                Center: Point{X: CellSize/2 + float64(c)*CellSize, Y: CellSize/2 + float64(r)*CellSize},
            }
        }
        b.grid[r] = row
    }
    return b, nil
}

// NewRandom returns an empty board whose starting side is picked by rnd.
func NewRandom(size int, rnd *rand.Rand) (*Board, error) {
    return New(size, RandomSide(rnd))
}

// RandomSide picks Human or Computer with equal odds.
func RandomSide(rnd *rand.Rand) Side {
    if rnd.Intn(2) == 0 {
        return Human
    }
    return Computer
}

func (b *Board) Size() int      { return b.size }
func (b *Board) Turn() Side     { return b.turn }
func (b *Board) Result() Result { return b.result }

func (b *Board) inRange(p Position) bool {
    return p.Row >= 0 && p.Row < b.size && p.Col >= 0 && p.Col < b.size
}

// CellAt returns a copy of the cell at p.
func (b *Board) CellAt(p Position) (Cell, error) {
    if !b.inRange(p) {
        return Cell{}, ErrOutOfBounds
    }
    return b.grid[p.Row][p.Col], nil
}

// CanPlace reports why a placement at p would be rejected, or nil.
func (b *Board) CanPlace(p Position) error {
    if b.result.Over {
        return ErrGameOver
    }
    if !b.inRange(p) {
        return ErrOutOfBounds
    }
    if b.grid[p.Row][p.Col].Occupant != Nobody {
        return ErrOccupied
    }
    return nil
}

// Place puts side's mark at p and runs terminal detection. Unless the game
// ended, the turn passes to side's opponent. It returns false and leaves the
// board untouched if the cell is taken, p is invalid, side is Nobody or the
// game is already over.
func (b *Board) Place(p Position, side Side) bool {
    if side != Human && side != Computer {
        return false
    }
    if b.CanPlace(p) != nil {
        return false
    }
    b.grid[p.Row][p.Col].Occupant = side
    if b.EvaluateTerminal() == InProgress {
        b.turn = side.Opponent()
    }
    return true
}

// Remove clears the cell at p and recomputes the result. It backs out
// speculative placements only.
func (b *Board) Remove(p Position) {
    if !b.inRange(p) {
        return
    }
    b.grid[p.Row][p.Col].Occupant = Nobody
    b.EvaluateTerminal()
}

// Trial speculatively marks p for side without touching the turn and returns
// the func that restores the cell. Occupied or invalid cells are left alone
// and get a no-op release.
func (b *Board) Trial(p Position, side Side) (release func()) {
    if !b.inRange(p) || b.grid[p.Row][p.Col].Occupant != Nobody {
        return func() {}
    }
    b.grid[p.Row][p.Col].Occupant = side
    return func() { b.Remove(p) }
}

// IsFull reports whether every cell is occupied.
func (b *Board) IsFull() bool {
    for _, row := range b.grid {
        for _, c := range row {
            if c.Occupant == Nobody {
                return false
            }
        }
    }
    return true
}

// EmptyCells lists unoccupied positions in row-major order.
func (b *Board) EmptyCells() []Position {
    var out []Position
    for _, row := range b.grid {
        for _, c := range row {
            if c.Occupant == Nobody {
                out = append(out, c.Pos)
            }
        }
    }
    return out
}

// EvaluateTerminal scans every row, column and both diagonals, recomputes the
// cached result from the grid and returns the outcome.
func (b *Board) EvaluateTerminal() Outcome {
    out := InProgress
    for _, s := range [2]Side{Human, Computer} {
        if b.hasLine(s) {
            out = winFor(s)
            break
        }
    }
    if out == InProgress && b.IsFull() {
        out = Tie
    }
    b.result = Result{Over: out != InProgress, Outcome: out}
    return out
}

func (b *Board) hasLine(s Side) bool {
    n := b.size
    diag, anti := true, true
    for i := 0; i < n; i++ {
        row, col := true, true
        for j := 0; j < n; j++ {
            row = row && b.grid[i][j].Occupant == s
            col = col && b.grid[j][i].Occupant == s
        }
        if row || col {
            return true
        }
        diag = diag && b.grid[i][i].Occupant == s
        anti = anti && b.grid[i][n-1-i].Occupant == s
    }
    return diag || anti
}

// NearestCellTo returns the cell whose rendered center is closest to pt.
// Equidistant cells resolve to the first in row-major order.
func (b *Board) NearestCellTo(pt Point) Cell {
    var best Cell
    bestDist := math.Inf(1)
    for _, row := range b.grid {
        for _, c := range row {
            d := math.Hypot(pt.X-c.Center.X, pt.Y-c.Center.Y)
            if d < bestDist {
                bestDist = d
                best = c
            }
        }
    }
    return best
}

// Snapshot is a detached copy of a board for readers outside the owner.
type Snapshot struct {
    Size   int
    Cells  [][]Cell
    Turn   Side
    Result Result
}

// Snapshot deep-copies the board state.
func (b *Board) Snapshot() Snapshot {
    cells := make([][]Cell, b.size)
    for r, row := range b.grid {
        cells[r] = append([]Cell(nil), row...)
    }
    return Snapshot{Size: b.size, Cells: cells, Turn: b.turn, Result: b.result}
}
