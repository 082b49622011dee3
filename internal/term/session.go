package term

import (
    "bufio"
    "context"
    "errors"
    "fmt"
    "io"
    "math/rand"
    "strconv"
    "strings"
    "time"

    "github.com/jaminalder/codex-minimax/internal/domain"
    "github.com/jaminalder/codex-minimax/internal/search"
    "github.com/jaminalder/codex-minimax/internal/store"
)

var errBadInput = errors.New("enter a row and a column, e.g. 2 3")

// Options configures a Session. A zero First draws the starting side from Rand.
type Options struct {
    Size   int
    Delay  time.Duration
    First  domain.Side
    Rand   *rand.Rand
    Scores *store.Memory
}

// Session reads moves from in and writes boards and messages to out.
type Session struct {
    in   *bufio.Scanner
    out  io.Writer
    r    *Renderer
    opts Options
}

func NewSession(in io.Reader, out io.Writer, r *Renderer, o Options) *Session {
    if o.Size <= 0 {
        o.Size = 3
    }
    if o.Rand == nil {
        o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
    }
    if o.Scores == nil {
        o.Scores = store.NewMemory()
    }
    return &Session{in: bufio.NewScanner(in), out: out, r: r, opts: o}
}

// Run plays games until the input ends, the player quits or ctx is done.
func (s *Session) Run(ctx context.Context) error {
    for {
        quit, err := s.play(ctx)
        if err != nil || quit {
            return err
        }
        fmt.Fprint(s.out, "Play again? [y/N] ")
        line, ok := s.readLine()
        if !ok || !strings.HasPrefix(strings.ToLower(line), "y") {
            return nil
        }
    }
}

func (s *Session) play(ctx context.Context) (quit bool, err error) {
    first := s.opts.First
    if first == domain.Nobody {
        first = domain.RandomSide(s.opts.Rand)
    }
    b, err := domain.New(s.opts.Size, first)
    if err != nil {
        return true, err
    }
    fmt.Fprintf(s.out, "%s moves first. You are O.\n", first)
    for !b.Result().Over {
        if err := ctx.Err(); err != nil {
            return true, err
        }
        if b.Turn() == domain.Computer {
            if err := s.computer(ctx, b); err != nil {
                return true, err
            }
            continue
        }
        fmt.Fprint(s.out, s.r.Board(b.Snapshot()))
        fmt.Fprint(s.out, "row col> ")
        line, ok := s.readLine()
        if !ok {
            return true, nil
        }
        if line == "q" || line == "quit" {
            return true, nil
        }
        pos, err := parseMove(line)
        if err == nil {
            err = b.CanPlace(pos)
        }
        if err != nil {
            fmt.Fprintln(s.out, err)
            continue
        }
        b.Place(pos, domain.Human)
    }
    fmt.Fprint(s.out, s.r.Board(b.Snapshot()))
    fmt.Fprintln(s.out, s.r.Banner(b.Result()))
    rec := store.Record{Size: b.Size(), Outcome: b.Result().Outcome, Finished: time.Now()}
    if err := s.opts.Scores.Record(ctx, rec); err != nil {
        return true, err
    }
    t, _ := s.opts.Scores.Totals(ctx)
    fmt.Fprintf(s.out, "You %d, computer %d, ties %d\n", t.Wins, t.Losses, t.Ties)
    return false, nil
}

// computer waits out the reply delay, then plays the best move.
func (s *Session) computer(ctx context.Context, b *domain.Board) error {
    if s.opts.Delay > 0 {
        fmt.Fprintln(s.out, "Computer is thinking...")
        t := time.NewTimer(s.opts.Delay)
        select {
        case <-ctx.Done():
            t.Stop()
            return ctx.Err()
        case <-t.C:
        }
    }
    pos, err := search.ChooseBestMove(b, domain.Computer)
    if err != nil {
        return err
    }
    b.Place(pos, domain.Computer)
    fmt.Fprintf(s.out, "Computer plays %d %d\n", pos.Row+1, pos.Col+1)
    return nil
}

func (s *Session) readLine() (string, bool) {
    if !s.in.Scan() {
        return "", false
    }
    return strings.TrimSpace(s.in.Text()), true
}

// parseMove reads a 1-based "row col" pair; a comma works as separator too.
func parseMove(line string) (domain.Position, error) {
    f := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
    if len(f) != 2 {
        return domain.Position{}, errBadInput
    }
    r, errR := strconv.Atoi(f[0])
    c, errC := strconv.Atoi(f[1])
    if errR != nil || errC != nil {
        return domain.Position{}, errBadInput
    }
    return domain.Position{Row: r - 1, Col: c - 1}, nil
}
