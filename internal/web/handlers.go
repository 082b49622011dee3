package web

import (
    "bytes"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/jaminalder/codex-minimax/internal/app"
    "github.com/jaminalder/codex-minimax/internal/domain"
)

type handlers struct {
    svc         *app.Service
    tpl         *templates
    log         *log.Logger
    defaultSize int
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
    return renderTemplate(h.tpl.board, "", newBoardData(gs, errMsg))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    data := struct{ Size, MaxSize int }{Size: h.defaultSize, MaxSize: h.svc.MaxSize()}
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.index, "", data))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    pid := ensurePlayerCookie(w, r)
    size := h.defaultSize
    if v := r.FormValue("size"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil {
            http.Error(w, "invalid size", http.StatusBadRequest)
            return
        }
        size = n
    }
    gs, err := h.svc.CreateGame(pid, size)
    if err != nil {
        if errors.Is(err, domain.ErrInvalidSize) {
            http.Error(w, err.Error(), http.StatusBadRequest)
            return
        }
        h.log.Printf("create game: %v", err)
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    ensurePlayerCookie(w, r)
    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    data := newBoardData(*gs, "")
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    // Render page with embedded board container
    _, _ = w.Write(renderTemplate(h.tpl.game, "", data))
}

// errorMessage turns a play error into the text shown above the board.
func errorMessage(err error) string {
    switch {
    case errors.Is(err, app.ErrNotYourTurn):
        return "Not your turn"
    case errors.Is(err, app.ErrNotAPlayer):
        return "You are a spectator"
    case errors.Is(err, domain.ErrOccupied):
        return "Cell is occupied"
    case errors.Is(err, domain.ErrOutOfBounds):
        return "Out of bounds"
    case errors.Is(err, domain.ErrGameOver):
        return "Game is over"
    case errors.Is(err, domain.ErrInvalidSize):
        return "Invalid board size"
    default:
        return "Invalid move"
    }
}

// play accepts either a cell (r, c) or a pointer position (x, y) in board
// pixels.
func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    _ = r.ParseForm()
    var (
        gs  *app.GameState
        err error
    )
    if xs, ys := r.Form.Get("x"), r.Form.Get("y"); xs != "" && ys != "" {
        x, errX := strconv.ParseFloat(xs, 64)
        y, errY := strconv.ParseFloat(ys, 64)
        if errX != nil || errY != nil {
            http.Error(w, "invalid point", http.StatusBadRequest)
            return
        }
        gs, err = h.svc.Click(id, pid, domain.Point{X: x, Y: y})
    } else {
        ri, errR := strconv.Atoi(r.Form.Get("r"))
        ci, errC := strconv.Atoi(r.Form.Get("c"))
        if errR != nil || errC != nil {
            ri, ci = -1, -1
        }
        gs, err = h.svc.Play(id, pid, domain.Position{Row: ri, Col: ci})
    }
    h.writeBoard(w, r, id, gs, err)
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    size, _ := strconv.Atoi(r.FormValue("size"))
    gs, err := h.svc.Restart(id, pid, size)
    h.writeBoard(w, r, id, gs, err)
}

func (h *handlers) writeBoard(w http.ResponseWriter, r *http.Request, id string, gs *app.GameState, err error) {
    var errMsg string
    if err != nil {
        if errors.Is(err, app.ErrNotFound) {
            http.NotFound(w, r)
            return
        }
        errMsg = errorMessage(err)
        if gs == nil {
            if g, ok := h.svc.Get(id); ok { gs = g }
        }
    }
    if gs == nil {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    _, _ = w.Write(h.renderBoard(*gs, errMsg))
}

// stateView is the JSON form of a game used by /state and the websocket.
type stateView struct {
    Type    string     `json:"type"`
    ID      string     `json:"id"`
    Size    int        `json:"size"`
    Cells   [][]string `json:"cells"`
    Turn    string     `json:"turn"`
    Over    bool       `json:"over"`
    Outcome string     `json:"outcome"`
    Winner  string     `json:"winner,omitempty"`
    Banner  string     `json:"banner,omitempty"`
    Pending bool       `json:"pending"`
    Moves   int        `json:"moves"`
}

func occupantName(s domain.Side) string {
    switch s {
    case domain.Human:
        return "human"
    case domain.Computer:
        return "computer"
    default:
        return ""
    }
}

func newStateView(gs app.GameState) stateView {
    cells := make([][]string, len(gs.Board.Cells))
    for r, row := range gs.Board.Cells {
        cells[r] = make([]string, len(row))
        for c, cell := range row {
            cells[r][c] = occupantName(cell.Occupant)
        }
    }
    return stateView{
        Type:    "state",
        ID:      gs.ID,
        Size:    gs.Board.Size,
        Cells:   cells,
        Turn:    occupantName(gs.Board.Turn),
        Over:    gs.Board.Result.Over,
        Outcome: gs.Board.Result.Outcome.String(),
        Winner:  occupantName(gs.Board.Result.Winner()),
        Banner:  app.Banner(gs.Board.Result),
        Pending: gs.Pending,
        Moves:   gs.Moves,
    }
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    writeJSON(w, http.StatusOK, newStateView(*gs))
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
    tally, err := h.svc.Stats(r.Context())
    if err != nil {
        h.log.Printf("stats: %v", err)
        writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
        return
    }
    writeJSON(w, http.StatusOK, struct {
        Wins   int `json:"wins"`
        Losses int `json:"losses"`
        Ties   int `json:"ties"`
        Games  int `json:"games"`
    }{tally.Wins, tally.Losses, tally.Ties, tally.Games()})
}

var heartbeatInterval = 15 * time.Second

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub := h.svc.Subscribe(ctx, id)
    defer unsub()
    ticker := time.NewTicker(heartbeatInterval)
    defer ticker.Stop()
    // Initial flush of headers
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case b, ok := <-ch:
            if !ok { return }
            writeEvent(w, "board", b)
            flusher.Flush()
        }
    }
}

// writeEvent emits one SSE event; every payload line gets its own data field.
func writeEvent(w io.Writer, event string, payload []byte) {
    _, _ = fmt.Fprintf(w, "event: %s\n", event)
    for _, line := range bytes.Split(payload, []byte("\n")) {
        _, _ = fmt.Fprintf(w, "data: %s\n", line)
    }
    _, _ = io.WriteString(w, "\n")
}

// fragment is the broadcast renderer installed on the service.
func (h *handlers) fragment(gs app.GameState) []byte {
    return bytes.TrimSpace(h.renderBoard(gs, ""))
}
