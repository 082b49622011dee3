package app

import (
    "context"
    "errors"
    "fmt"
    "log"
    "math/rand"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/jaminalder/codex-minimax/internal/domain"
    "github.com/jaminalder/codex-minimax/internal/search"
    "github.com/jaminalder/codex-minimax/internal/store"
)

// Errors exposed by the service layer.
var (
    ErrNotFound    = errors.New("game not found")
    ErrNotYourTurn = errors.New("not your turn")
    ErrNotAPlayer  = errors.New("not a player")
    ErrClosed      = errors.New("service closed")
)

// Defaults used when Options leaves a field zero.
const (
    DefaultMaxSize = 3
    DefaultDelay   = time.Second
)

// Scoreboard records finished games.
type Scoreboard interface {
    Record(ctx context.Context, r store.Record) error
    Totals(ctx context.Context) (store.Tally, error)
}

// GameState is a detached view of one game.
type GameState struct {
    ID      string
    Owner   string
    Board   domain.Snapshot
    Moves   int
    Pending bool // computer reply scheduled
    Created time.Time
    Updated time.Time
}

// Options configures a Service.
type Options struct {
    MaxSize  int
    Delay    time.Duration
    Scores   Scoreboard
    Logger   *log.Logger
    Rand     *rand.Rand
    Renderer func(GameState) []byte
}

type game struct {
    id      string
    owner   string
    board   *domain.Board
    moves   int
    timer   *time.Timer
    gen     int
    created time.Time
    updated time.Time
}

func (g *game) state() GameState {
    return GameState{
        ID:      g.id,
        Owner:   g.owner,
        Board:   g.board.Snapshot(),
        Moves:   g.moves,
        Pending: g.timer != nil,
        Created: g.created,
        Updated: g.updated,
    }
}

// cancel drops a scheduled computer reply; a reply already waiting on the
// lock sees the bumped generation and gives up.
func (g *game) cancel() {
    if g.timer != nil {
        g.timer.Stop()
        g.timer = nil
    }
    g.gen++
}

type subscriber struct {
    mu     sync.Mutex
    ch     chan []byte
    closed bool
}

func (s *subscriber) close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.closed {
        s.closed = true
        close(s.ch)
    }
}

// send delivers without blocking and reports whether the payload was taken.
func (s *subscriber) send(b []byte) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return true
    }
    select {
    case s.ch <- b:
        return true
    default:
        return false
    }
}

// Service runs human-vs-computer games and fans out board updates.
type Service struct {
    mu      sync.Mutex
    games   map[string]*game
    subs    map[string]map[*subscriber]struct{}
    render  func(GameState) []byte
    scores  Scoreboard
    log     *log.Logger
    rnd     *rand.Rand
    maxSize int
    delay   time.Duration
    closed  bool
}

// NewService creates a service with default options.
func NewService() *Service { return NewServiceWithOptions(Options{}) }

// NewServiceWithOptions fills zero fields of o with defaults.
func NewServiceWithOptions(o Options) *Service {
    if o.MaxSize <= 0 {
        o.MaxSize = DefaultMaxSize
    }
    // negative delay replies without a pause
    if o.Delay < 0 {
        o.Delay = 0
    } else if o.Delay == 0 {
        o.Delay = DefaultDelay
    }
    if o.Scores == nil {
        o.Scores = store.NewMemory()
    }
    if o.Logger == nil {
        o.Logger = log.Default()
    }
    if o.Rand == nil {
        o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
    }
    if o.Renderer == nil {
        o.Renderer = func(gs GameState) []byte { return nil }
    }
    return &Service{
        games:   make(map[string]*game),
        subs:    make(map[string]map[*subscriber]struct{}),
        render:  o.Renderer,
        scores:  o.Scores,
        log:     o.Logger,
        rnd:     o.Rand,
        maxSize: o.MaxSize,
        delay:   o.Delay,
    }
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(gs GameState) []byte { return nil }
        return
    }
    s.render = renderer
}

// MaxSize is the largest board the service accepts.
func (s *Service) MaxSize() int { return s.maxSize }

func (s *Service) newBoardLocked(size int) (*domain.Board, error) {
    if size < 1 || size > s.maxSize {
        return nil, fmt.Errorf("%w: %d not in 1..%d", domain.ErrInvalidSize, size, s.maxSize)
    }
    return domain.NewRandom(size, s.rnd)
}

// CreateGame registers a new game for owner. A computer that wins the coin
// toss plays its opening move before CreateGame returns.
func (s *Service) CreateGame(owner string, size int) (*GameState, error) {
    s.mu.Lock()
    if s.closed {
        s.mu.Unlock()
        return nil, ErrClosed
    }
    b, err := s.newBoardLocked(size)
    if err != nil {
        s.mu.Unlock()
        return nil, err
    }
    now := time.Now()
    g := &game{id: uuid.NewString(), owner: owner, board: b, created: now, updated: now}
    s.games[g.id] = g
    s.log.Printf("game %s created: size=%d first=%v", g.id, size, b.Turn())
    fin := s.openLocked(g)
    cp := g.state()
    s.mu.Unlock()

    s.record(fin)
    return &cp, nil
}

// openLocked plays the computer's opening move when it starts.
func (s *Service) openLocked(g *game) *store.Record {
    if g.board.Turn() != domain.Computer {
        return nil
    }
    return s.computerMoveLocked(g)
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    g, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := g.state()
    return &cp, true
}

// Play validates owner and turn, applies the human move, schedules the
// computer's reply and broadcasts.
func (s *Service) Play(id, playerID string, pos domain.Position) (*GameState, error) {
    s.mu.Lock()
    g, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if g.owner != playerID {
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    if g.board.Result().Over {
        s.mu.Unlock()
        return nil, domain.ErrGameOver
    }
    if g.board.Turn() != domain.Human {
        s.mu.Unlock()
        return nil, ErrNotYourTurn
    }
    if err := g.board.CanPlace(pos); err != nil {
        s.mu.Unlock()
        return nil, err
    }
    g.board.Place(pos, domain.Human)
    g.moves++
    g.updated = time.Now()

    var fin *store.Record
    if g.board.Result().Over {
        fin = s.finishLocked(g)
    } else if g.board.Turn() == domain.Computer {
        s.scheduleLocked(g)
    }
    cp := g.state()
    subs := s.copySubsLocked(id)
    payload := s.render(cp)
    s.mu.Unlock()

    s.fanout(id, subs, payload)
    s.record(fin)
    return &cp, nil
}

// Click maps a rendered point onto the nearest cell and plays there.
func (s *Service) Click(id, playerID string, pt domain.Point) (*GameState, error) {
    s.mu.Lock()
    g, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    pos := g.board.NearestCellTo(pt).Pos
    s.mu.Unlock()
    return s.Play(id, playerID, pos)
}

// Restart discards the current board and starts a new one under the same id.
// A pending computer reply for the old board never fires.
func (s *Service) Restart(id, playerID string, size int) (*GameState, error) {
    s.mu.Lock()
    g, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if g.owner != playerID {
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    if size == 0 {
        size = g.board.Size()
    }
    b, err := s.newBoardLocked(size)
    if err != nil {
        s.mu.Unlock()
        return nil, err
    }
    g.cancel()
    g.board = b
    g.moves = 0
    g.updated = time.Now()
    s.log.Printf("game %s restarted: size=%d first=%v", g.id, size, b.Turn())
    fin := s.openLocked(g)
    cp := g.state()
    subs := s.copySubsLocked(id)
    payload := s.render(cp)
    s.mu.Unlock()

    s.fanout(id, subs, payload)
    s.record(fin)
    return &cp, nil
}

// Stats returns the scoreboard tally.
func (s *Service) Stats(ctx context.Context) (store.Tally, error) {
    return s.scores.Totals(ctx)
}

// Close cancels every pending computer reply and closes all subscribers.
func (s *Service) Close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.closed = true
    for _, g := range s.games {
        g.cancel()
    }
    for id, set := range s.subs {
        for sub := range set {
            sub.close()
        }
        delete(s.subs, id)
    }
}

func (s *Service) scheduleLocked(g *game) {
    g.cancel()
    gen, id := g.gen, g.id
    g.timer = time.AfterFunc(s.delay, func() { s.reply(id, gen) })
}

// reply is the deferred computer move.
func (s *Service) reply(id string, gen int) {
    s.mu.Lock()
    g, ok := s.games[id]
    if !ok || s.closed || g.gen != gen {
        s.mu.Unlock()
        return
    }
    g.timer = nil
    if g.board.Result().Over || g.board.Turn() != domain.Computer {
        s.mu.Unlock()
        return
    }
    fin := s.computerMoveLocked(g)
    cp := g.state()
    subs := s.copySubsLocked(id)
    payload := s.render(cp)
    s.mu.Unlock()

    s.fanout(id, subs, payload)
    s.record(fin)
}

func (s *Service) computerMoveLocked(g *game) *store.Record {
    pos, score, st, err := search.BestMove(g.board, domain.Computer)
    if err != nil {
        s.log.Printf("game %s: computer move: %v", g.id, err)
        return nil
    }
    if !g.board.Place(pos, domain.Computer) {
        s.log.Printf("game %s: computer move %v rejected", g.id, pos)
        return nil
    }
    g.moves++
    g.updated = time.Now()
    s.log.Printf("game %s: computer plays (%d,%d) score=%d nodes=%d", g.id, pos.Row, pos.Col, score, st.Nodes)
    if g.board.Result().Over {
        return s.finishLocked(g)
    }
    return nil
}

func (s *Service) finishLocked(g *game) *store.Record {
    res := g.board.Result()
    s.log.Printf("game %s over: %v", g.id, res.Outcome)
    return &store.Record{GameID: g.id, Size: g.board.Size(), Outcome: res.Outcome, Finished: g.updated}
}

func (s *Service) record(r *store.Record) {
    if r == nil {
        return
    }
    if err := s.scores.Record(context.Background(), *r); err != nil {
        s.log.Printf("game %s: record result: %v", r.GameID, err)
    }
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sub := &subscriber{ch: make(chan []byte, 1)}
    if s.closed {
        sub.close()
        return sub.ch, func() {}
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub
}

// fanout delivers payload without blocking; slow subscribers are dropped.
func (s *Service) fanout(id string, subs map[*subscriber]struct{}, payload []byte) {
    var toDrop []*subscriber
    for sub := range subs {
        if !sub.send(payload) {
            sub.close()
            toDrop = append(toDrop, sub)
        }
    }
    if len(toDrop) > 0 {
        s.mu.Lock()
        for _, sub := range toDrop {
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
        }
        s.mu.Unlock()
    }
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}
